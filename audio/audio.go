// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadPCM fills dst with interleaved signed 16-bit samples.
	// Returns number of int16 values written (not frames). A call may return
	// n > 0 together with io.EOF; when n == 0 with err == io.EOF the stream is finished.
	ReadPCM(dst []int16) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// DecoderFor picks a decoder from the extension of path.
func (r *Registry) DecoderFor(path string) (Decoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return d, nil
}

// maxEmptyReads bounds how many (0, nil) reads ReadAll tolerates in a row.
const maxEmptyReads = 100

// ReadAll drains src and returns every sample it produced.
// The source is not closed.
func ReadAll(src Source) ([]int16, error) {
	buf := make([]int16, 4096-4096%max(src.Channels(), 1))
	var out []int16
	empty := 0

	for {
		n, err := src.ReadPCM(buf)
		out = append(out, buf[:n]...)

		if n == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				return out, io.ErrNoProgress
			}
			continue
		}
		empty = 0

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
	}
}
