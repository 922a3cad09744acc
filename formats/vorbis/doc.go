// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files. The library decodes to float32; samples are scaled to int16 with
// pcm.FromFloat before they leave the package.
//
// # Output Format
//
//   - Sample format: int16, interleaved
//   - Channels: depends on file (mono or stereo typically)
//   - Sample rate: depends on file (commonly 44.1kHz or 48kHz)
//
// ReadPCM only returns whole frames. A destination shorter than one frame
// reads nothing.
//
// Vorbis is used for streamed background music:
//
//	file, _ := os.Open("theme.ogg")
//	src, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	producer := stream.NewProducer(src, q)
package vorbis
