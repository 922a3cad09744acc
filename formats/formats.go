// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/formats/aiff"
	"github.com/ik5/pcmmix/formats/mp3"
	"github.com/ik5/pcmmix/formats/vorbis"
	"github.com/ik5/pcmmix/formats/wav"
)

// NewRegistry returns a registry that knows wav, mp3, ogg and aiff files.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	return r
}
