// SPDX-License-Identifier: EPL-2.0

// Package queue passes decoded blocks from a producer goroutine to the
// goroutine feeding the audio device.
//
// Two backends share the Queue interface:
//
//   - FIFO: blocks are removed as they are popped. Optionally bounded.
//   - List: every block is kept and a cursor walks over them, so a fully
//     pre-decoded stream can be replayed with Rewind.
//
// Pop(true) waits indefinitely and exists for compatibility with callers
// that block the audio callback on data. Device code should use Pop(false)
// or PopContext with a short deadline and play silence on ErrEmpty.
//
// Close is final. Waiters wake up with ErrClosed and blocks still queued are
// never returned.
package queue
