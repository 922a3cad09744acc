// SPDX-License-Identifier: EPL-2.0

package sequencer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPattern is returned for a pattern with an unknown step symbol.
var ErrInvalidPattern = errors.New("invalid pattern")

// Hit is what a track does on one step.
type Hit byte

const (
	Rest   Hit = '.'
	Accent Hit = '#'
	Soft   Hit = '*'
)

// Pattern is one bar of hits, played in a loop.
type Pattern []Hit

// ParsePattern reads a pattern written with '#' for an accented hit, '*' for
// a soft hit and '.' for a rest.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPattern)
	}

	p := make(Pattern, len(s))
	for i := range len(s) {
		switch h := Hit(s[i]); h {
		case Rest, Accent, Soft:
			p[i] = h
		default:
			return nil, fmt.Errorf("%w: %q at step %d", ErrInvalidPattern, s[i], i)
		}
	}
	return p, nil
}

// MustParsePattern is ParsePattern that panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// At returns the hit on step, wrapping around the pattern length.
func (p Pattern) At(step int) Hit {
	if len(p) == 0 {
		return Rest
	}
	return p[step%len(p)]
}

func (p Pattern) String() string {
	var sb strings.Builder
	for _, h := range p {
		sb.WriteByte(byte(h))
	}
	return sb.String()
}
