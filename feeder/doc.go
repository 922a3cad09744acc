// SPDX-License-Identifier: EPL-2.0

// Package feeder plays a queue of decoded blocks into device buffers.
//
// The device asks for a fixed number of bytes per callback while blocks
// arrive in whatever size the decoder produced. Feeder keeps the block it
// is in the middle of and its offset, pulls the next block when one runs
// out, and always fills the whole buffer.
//
// Audio is mixed with pcm.MixSaturate, so a stream can be layered over the
// voice mixer's output with MixInto. A missing block is never an error:
// the rest of the buffer stays silent and the underrun is counted.
//
//	q := queue.NewFIFO(queue.WithCapacity(32))
//	f := feeder.New(q, feeder.WithPolicy(feeder.Bounded))
//	dev, _ := speaker.New(44100, 1024, f)
package feeder
