// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff. AIFF stores big-endian PCM;
// go-audio hands back native ints, which are narrowed to int16.
//
// Only 16-bit PCM is accepted. Other depths fail with
// ErrOnlyPCM16bitSupported rather than being converted, because the sample
// bank stores files verbatim and never rescales.
//
//	file, _ := os.Open("cowbell.aif")
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrOnlyPCM16bitSupported) {
//	    // re-export the file
//	}
//
// Non-seekable readers are buffered into memory first since go-audio needs
// an io.ReadSeeker.
package aiff
