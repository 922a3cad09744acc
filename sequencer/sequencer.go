// SPDX-License-Identifier: EPL-2.0

package sequencer

import (
	"context"
	"sync"
	"time"
)

// Trigger starts a sound on a voice. *mixer.Mixer satisfies it.
type Trigger interface {
	Trigger(voice, sound int, gainLeft, gainRight float32)
}

// Gain is a left/right gain pair.
type Gain struct {
	Left  float32
	Right float32
}

// Track plays one sound on one voice following a pattern. A zero Soft gain
// makes soft hits silent, the same as rests.
type Track struct {
	Voice   int
	Sound   int
	Pattern Pattern
	Accent  Gain
	Soft    Gain
}

// Sequencer steps through its tracks and triggers their hits.
type Sequencer struct {
	mu     sync.Mutex
	tracks []Track
	out    Trigger
	step   int
}

func New(out Trigger, tracks ...Track) *Sequencer {
	return &Sequencer{
		tracks: tracks,
		out:    out,
	}
}

// Step plays the current step of every track and moves to the next one. It
// returns the step that was played.
func (s *Sequencer) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	played := s.step
	for _, t := range s.tracks {
		switch t.Pattern.At(played) {
		case Accent:
			s.out.Trigger(t.Voice, t.Sound, t.Accent.Left, t.Accent.Right)
		case Soft:
			if t.Soft != (Gain{}) {
				s.out.Trigger(t.Voice, t.Sound, t.Soft.Left, t.Soft.Right)
			}
		}
	}
	s.step++

	return played
}

// Reset moves back to the first step.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = 0
}

// Run calls Step every interval until ctx is done. Timing follows a
// time.Ticker and is only as steady as the scheduler allows.
func (s *Sequencer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}

// DefaultStepInterval is the step length of the 808 demo beat.
const DefaultStepInterval = 120 * time.Millisecond

// DefaultTracks is a 32-step 808 beat for four voices: bass drum, clap,
// cowbell and hi-hat on sounds 0 to 3.
func DefaultTracks() []Track {
	return []Track{
		{
			Voice:   0,
			Sound:   0,
			Pattern: MustParsePattern("#...#...#...#..##...#...#...#.##"),
			Accent:  Gain{1.0, 1.0},
		},
		{
			Voice:   1,
			Sound:   1,
			Pattern: MustParsePattern("....#..*....#....*..#....*..#.**"),
			Accent:  Gain{0.6, 0.5},
			Soft:    Gain{0.2, 0.3},
		},
		{
			Voice:   2,
			Sound:   2,
			Pattern: MustParsePattern("#...*..#..*...#.#...*..#..*..*#*"),
			Accent:  Gain{0.3, 0.2},
			Soft:    Gain{0.1, 0.2},
		},
		{
			Voice:   3,
			Sound:   3,
			Pattern: MustParsePattern("..#...#...#...#...#...#...#...#."),
			Accent:  Gain{0.3, 0.4},
		},
	}
}
