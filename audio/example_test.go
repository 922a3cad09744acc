// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/internal/audiotest"
)

// Example_resampler demonstrates how to use the Resampler to change sample rates.
func Example_resampler() {
	// Create a test audio source at 22.05kHz
	source := audiotest.NewSineSource(22050, 1, 22050, 440.0, 10000) // 1 second, 440Hz tone

	// Bring it to the device rate
	resampler := audio.NewResampler(source, 44100)

	fmt.Printf("Output sample rate: %d Hz\n", resampler.SampleRate())
	fmt.Printf("Channels: %d\n", resampler.Channels())

	buf := make([]int16, 4096)
	total := 0

	for {
		n, err := resampler.ReadPCM(buf)
		total += n

		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	fmt.Printf("Total samples read: %d\n", total)
	// Output:
	// Output sample rate: 44100 Hz
	// Channels: 1
	// Total samples read: 44100
}

// Example_channelMapper demonstrates widening mono to the stereo device layout.
func Example_channelMapper() {
	source := audiotest.NewConstantSource(44100, 1, 4, 1000)
	stereo := audio.NewChannelMapper(source, 2)

	buf := make([]int16, 8)
	n, _ := stereo.ReadPCM(buf)

	fmt.Printf("Input channels: %d\n", source.Channels())
	fmt.Printf("Output channels: %d\n", stereo.Channels())
	fmt.Println(buf[:n])
	// Output:
	// Input channels: 1
	// Output channels: 2
	// [1000 1000 1000 1000 1000 1000 1000 1000]
}

type silenceDecoder struct{}

func (silenceDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.NewSilentSource(44100, 1, 10), nil
}

// Example_registry demonstrates looking a decoder up by file extension.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("wav", silenceDecoder{})

	if _, err := registry.DecoderFor("808-bassdrum.wav"); err == nil {
		fmt.Println("wav: found")
	}

	_, err := registry.DecoderFor("808-bassdrum.flac")
	fmt.Println("flac:", errors.Is(err, audio.ErrUnknownFormat))
	// Output:
	// wav: found
	// flac: true
}

// Example_readAll demonstrates loading a whole source into memory.
func Example_readAll() {
	source := audiotest.NewRampSource(44100, 1, 6)

	samples, err := audio.ReadAll(source)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(samples)
	// Output:
	// [0 1 2 3 4 5]
}
