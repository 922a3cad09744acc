// SPDX-License-Identifier: EPL-2.0

// Package stream turns decoded media into queued device-format blocks.
//
// A Producer resamples its source to the device rate, widens or narrows it
// to stereo and cuts it into blocks. It runs on its own goroutine and is the
// only writer of its queue:
//
//	q := queue.NewFIFO(queue.WithCapacity(32))
//	p := stream.NewProducer(src, q, stream.WithRate(48000))
//	go p.Run(ctx)
//
// Prebuffer decodes a whole source into a queue.List instead, for sources
// short enough to hold in memory.
package stream
