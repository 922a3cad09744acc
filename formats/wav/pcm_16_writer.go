// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize = 44

	// writeChunk is the number of samples encoded per Write.
	writeChunk = 4096
)

// WriteWAV16 writes samples, interleaved over channels, as a complete
// 16-bit PCM WAV file. Sizes are known up front, so unlike the go-audio
// encoder it never seeks and w may be a pipe or a socket.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 {
		return ErrInvalidChannelCount
	}

	const bytesPerSample = 2
	dataSize := uint32(len(samples) * bytesPerSample)
	blockAlign := uint16(channels * bytesPerSample)

	h := make([]byte, 0, headerSize)
	h = append(h, "RIFF"...)
	h = binary.LittleEndian.AppendUint32(h, headerSize-8+dataSize)
	h = append(h, "WAVEfmt "...)
	h = binary.LittleEndian.AppendUint32(h, 16)
	h = binary.LittleEndian.AppendUint16(h, wavFormatPCM)
	h = binary.LittleEndian.AppendUint16(h, uint16(channels))
	h = binary.LittleEndian.AppendUint32(h, uint32(sampleRate))
	h = binary.LittleEndian.AppendUint32(h, uint32(sampleRate)*uint32(blockAlign))
	h = binary.LittleEndian.AppendUint16(h, blockAlign)
	h = binary.LittleEndian.AppendUint16(h, 16)
	h = append(h, "data"...)
	h = binary.LittleEndian.AppendUint32(h, dataSize)

	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	buf := make([]byte, 0, min(len(samples), writeChunk)*bytesPerSample)
	for len(samples) > 0 {
		n := min(len(samples), writeChunk)
		buf = buf[:0]
		for _, s := range samples[:n] {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("wav: write samples: %w", err)
		}
		samples = samples[n:]
	}
	return nil
}
