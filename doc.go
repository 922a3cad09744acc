// SPDX-License-Identifier: EPL-2.0

// Package pcmmix is a small real-time audio engine for 16-bit stereo PCM.
//
// It has two tiers that can share one output device.
//
// The voice tier plays short, fully decoded sounds. A [bank.Bank] holds the
// sounds, loaded from WAV, AIFF, MP3 or Ogg Vorbis files. A [mixer.Mixer]
// owns a fixed number of voices; any goroutine may trigger a sound on a
// voice with a left and right gain while the device callback mixes all
// playing voices into each buffer. The callback never blocks or allocates.
//
//	b := bank.New(4)
//	_ = b.LoadFile(0, "808-bassdrum.wav")
//	mx := mixer.New(4, b)
//	dev, _ := speaker.New(44100, 1024, mx)
//	_ = dev.Start()
//	mx.Trigger(0, 0, 1.0, 1.0)
//
// The stream tier plays long media. A [stream.Producer] decodes a file into
// byte blocks and pushes them to a [queue.Queue]; a [feeder.Feeder] pops the
// blocks inside the callback and mixes them at a volume. By default the
// feeder never waits: when no block is ready it plays silence and counts an
// underrun.
//
//	q := queue.NewFIFO(queue.WithCapacity(32))
//	go stream.NewProducer(src, q).Run(ctx)
//	dev, _ := speaker.New(44100, 1024, feeder.New(q))
//
// # Sample Format
//
// Device buffers are interleaved stereo, signed 16-bit little endian. The
// voice tier sums with two's complement wraparound; the stream tier
// saturates.
//
// # Offline Rendering
//
// [RenderToWAV] pulls any callback for a number of frames and writes the
// result as a WAV file, and [WAVWriter] can be used as the sink of a
// [device.Offline]. Both are useful for tests and for machines without an
// audio output.
package pcmmix
