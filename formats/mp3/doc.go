// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files into
// 16-bit PCM. go-mp3 already produces little-endian int16 samples, so the
// source only reassembles bytes into samples.
//
// # Output Format
//
//   - Sample format: int16
//   - Channels: 2 (go-mp3 always outputs stereo)
//   - Sample rate: depends on the file (typically 44.1kHz or 48kHz)
//
// MP3 files are streamed media, not one-shot sounds: they go through the
// stream producer, which resamples them to the device rate before chunking
// them into blocks.
//
//	file, _ := os.Open("track.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	producer := stream.NewProducer(src, q)
package mp3
