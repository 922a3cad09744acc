// SPDX-License-Identifier: EPL-2.0

package pcmmix

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/pcmmix/pcm"
)

// WAVWriter encodes the stereo S16LE byte stream written to it as a 16-bit
// PCM WAV file. The header sizes are patched on Close, so the target has to
// be seekable.
type WAVWriter struct {
	enc *gowav.Encoder
	buf *goaudio.IntBuffer
}

func NewWAVWriter(ws io.WriteSeeker, rate int) *WAVWriter {
	return &WAVWriter{
		enc: gowav.NewEncoder(ws, rate, 16, pcm.Channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: pcm.Channels, SampleRate: rate},
			SourceBitDepth: 16,
		},
	}
}

// Write encodes p. A trailing odd byte is dropped.
func (w *WAVWriter) Write(p []byte) (int, error) {
	n := len(p) / pcm.BytesPerSample
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]

	for i := range n {
		w.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(p[i*pcm.BytesPerSample:])))
	}
	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("pcmmix: encode wav: %w", err)
	}
	return len(p), nil
}

// Close finishes the file. It does not close the underlying writer.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("pcmmix: finish wav: %w", err)
	}
	return nil
}

// renderChunk is the number of frames pulled per read by RenderToWAV.
const renderChunk = 1024

// RenderToWAV pulls frames stereo frames at rate from cb and writes them
// to ws as a WAV file. A callback that ends early with io.EOF ends the file
// there.
func RenderToWAV(ws io.WriteSeeker, cb io.Reader, rate, frames int) error {
	if rate <= 0 {
		return fmt.Errorf("pcmmix: invalid rate %d", rate)
	}

	w := NewWAVWriter(ws, rate)
	buf := make([]byte, renderChunk*pcm.BytesPerFrame)

	for frames > 0 {
		chunk := buf[:min(frames, renderChunk)*pcm.BytesPerFrame]
		n, err := io.ReadFull(cb, chunk)
		n -= n % pcm.BytesPerFrame
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return werr
			}
			frames -= n / pcm.BytesPerFrame
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("pcmmix: read callback: %w", err)
		}
	}

	return w.Close()
}
