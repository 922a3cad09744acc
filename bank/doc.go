// SPDX-License-Identifier: EPL-2.0

// Package bank holds the one-shot sounds the voice mixer plays.
//
// Every slot stores mono 16-bit PCM at the rate it was recorded. Sounds are
// loaded before playback starts and only read afterwards:
//
//	b := bank.New(4)
//	if err := b.LoadFile(0, "808-bassdrum.wav"); err != nil {
//	    var le *bank.LoadError
//	    errors.As(err, &le)
//	}
//
// Load errors carry a kind that errors.Is understands: ErrFormatUnsupported,
// ErrIO, ErrIndexOutOfRange or ErrEmptySample.
package bank
