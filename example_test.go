// SPDX-License-Identifier: EPL-2.0

package pcmmix_test

import (
	"context"
	"fmt"

	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/feeder"
	"github.com/ik5/pcmmix/internal/audiotest"
	"github.com/ik5/pcmmix/queue"
	"github.com/ik5/pcmmix/stream"
)

// Example_stream decodes a source into a queue ahead of time and plays it
// through an offline device.
func Example_stream() {
	src := audiotest.NewConstantSource(44100, 1, 256, 1000)

	q := queue.NewFIFO()
	p := stream.NewProducer(src, q, stream.WithBlockFrames(64))
	if err := p.Run(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("blocks queued:", q.Len())

	f := feeder.New(q, feeder.WithVolume(64))
	dev := device.NewOffline(44100, 64, f, nil)
	// one period per block, then one more with nothing queued
	_ = dev.Pump(5)
	fmt.Println("underruns:", f.Stats().Underruns)

	q.Close()
	_ = dev.Pump(1)
	fmt.Println("done:", f.Done())
	// Output:
	// blocks queued: 4
	// underruns: 1
	// done: true
}
