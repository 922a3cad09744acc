// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts the channel layout of a Source.
//
//   - same count: pass-through
//   - N -> 1: channels are averaged
//   - 1 -> N: the mono sample is duplicated into every output channel
//   - N -> M otherwise: output channel c takes input channel c % N
type ChannelMapper struct {
	src Source
	out int
	tmp []int16
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src: src,
		out: channels,
		tmp: make([]int16, 4096),
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.out }
func (m *ChannelMapper) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMapper) ReadPCM(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadPCM(dst)
	}

	frames := len(dst) / m.out
	need := frames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < need {
		m.tmp = make([]int16, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadPCM(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.out == 1 && in == 2:
		for f := range frames {
			idx := f << 1
			dst[f] = int16((int32(m.tmp[idx]) + int32(m.tmp[idx+1])) >> 1)
		}
	case m.out == 1:
		for f := range frames {
			var sum int32
			base := f * in
			for c := range in {
				sum += int32(m.tmp[base+c])
			}
			dst[f] = int16(sum / int32(in))
		}
	case in == 1:
		for f := range frames {
			s := m.tmp[f]
			base := f * m.out
			for c := range m.out {
				dst[base+c] = s
			}
		}
	default:
		for f := range frames {
			for c := range m.out {
				dst[f*m.out+c] = m.tmp[f*in+c%in]
			}
		}
	}

	return frames * m.out, err
}
