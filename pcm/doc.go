// SPDX-License-Identifier: EPL-2.0

// Package pcm holds the sample and frame types shared by the mixer, the block
// queue and the stream feeder, together with the two combine policies used
// when audio is summed.
//
// # Sample Format
//
// All audio handed to the device is interleaved stereo, signed 16-bit little
// endian (S16LE). One Frame is a left/right pair; BytesPerFrame is 4.
//
// # Combine Policies
//
// Two tiers mix audio, and each picks its own policy:
//
//   - AddWrap: plain int16 addition with wraparound. The voice mixer uses it
//     because it is the cheapest possible inner loop. Loud overlapping voices
//     overflow and wrap; that is expected behavior, not a bug.
//   - MixSaturate / AddClamp: the sum is clamped to [-32768, 32767]. The
//     stream feeder uses it so streamed audio can be layered over other sound
//     without wrapping.
package pcm
