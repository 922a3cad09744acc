// SPDX-License-Identifier: EPL-2.0

package pcm

import "encoding/binary"

// Block is one decoded unit of S16LE audio handed from a producer to a
// consumer. A Block is never modified after it is created; the producer gives
// up its reference when the block is queued.
type Block []byte

// NewBlock encodes samples into a fresh Block.
func NewBlock(samples []int16) Block {
	b := make(Block, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*BytesPerSample:], uint16(s))
	}
	return b
}

// Len returns the size of the block in bytes.
func (b Block) Len() int { return len(b) }

// Samples returns the number of int16 samples in the block.
func (b Block) Samples() int { return len(b) / BytesPerSample }

// Sample returns the i-th sample.
func (b Block) Sample(i int) int16 {
	return int16(binary.LittleEndian.Uint16(b[i*BytesPerSample:]))
}
