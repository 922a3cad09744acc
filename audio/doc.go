// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoder boundary and the stream conversion
// stages used before decoded media reaches the block queue.
//
// This package contains:
//   - Source interface for decoded 16-bit PCM
//   - Decoder interface and a Registry keyed by file extension
//   - ChannelMapper for mono/stereo conversion
//   - Resampler for sample rate conversion of streamed media
//   - ReadAll for loading a whole Source into memory
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadPCM(dst []int16) (int, error)
//	    Close() error
//	}
//
// Every format decoder under formats/ returns a Source, and the stages in
// this package wrap one Source in another:
//
//	src, _ := mp3.Decoder{}.Decode(file)
//	stereo := audio.NewChannelMapper(audio.NewResampler(src, 44100), 2)
//	buf := make([]int16, 4096)
//	n, err := stereo.ReadPCM(buf)
//
// # Format Registry
//
// The registry allows dynamic decoder registration:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.DecoderFor("sounds/kick.wav")
//
// # Sample Format
//
// Samples are signed 16-bit integers, interleaved by channel. A Source may
// return fewer samples than requested; callers loop until io.EOF.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available. Other errors
// indicate problems with the input:
//
//	for {
//	    n, err := source.ReadPCM(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
