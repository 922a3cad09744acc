// SPDX-License-Identifier: EPL-2.0

// Package mixer overlays one-shot sounds on a fixed number of voices.
//
// A voice is either idle or playing one sound from a SoundSource. Trigger
// assigns a sound and a left/right gain to a voice, replacing whatever it
// played. Mix renders every playing voice into a frame buffer and retires
// voices that reach the end of their sound.
//
// # Numeric Contract
//
// Gains are Q8 fixed point: GainQ8(g) is round(g*256). A voice contributes
// sample*gain>>8 to each channel, which floors, and contributions are added
// with int16 wraparound. No clipping is done on this path.
//
// # Concurrency
//
// Each voice is a single atomic pointer. Trigger publishes a fully built
// program in one store and Mix retires a voice with a compare-and-swap, so
// the audio goroutine never sees a half-written voice and never waits on
// the trigger goroutine.
package mixer
