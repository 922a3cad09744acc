// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding uses github.com/go-audio/wav, which walks the RIFF chunk list, so
// files with LIST/INFO or other extra chunks before the data chunk are
// handled.
//
// # Supported Formats
//
// Currently supported:
//   - PCM 16-bit (most common WAV format)
//   - Any channel count
//   - Any sample rate
//
// # Decoding WAV Files
//
//	file, _ := os.Open("808-bassdrum.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadPCM(buf)
//
// # Writing WAV Files
//
// WriteWAV16 streams a complete file to any io.Writer:
//
//	samples := []int16{100, -100, 200, -200}
//	err := wav.WriteWAV16(os.Stdout, 44100, 2, samples)
//
// # Error Handling
//
//   - ErrNotWavFile: The input is not a valid WAV file
//   - ErrOnlyPCM16bitSupported: Only 16-bit integer PCM is supported
//   - ErrUnsupportedWavLayout: The fmt or data chunk could not be used
package wav
