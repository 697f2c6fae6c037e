// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp_test

import (
	"errors"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
	"github.com/q191201771/rtph264/pkg/rtprtcp"
)

func newAvcUnpacker(isAvc bool) *rtprtcp.RtpUnpackerPayloadAvc {
	return rtprtcp.NewRtpUnpackerPayloadAvc(func(option *rtprtcp.RtpUnpackerPayloadAvcOption) {
		option.IsAvc = isAvc
	})
}

func TestRtpUnpackerPayloadAvc_ShortPacket(t *testing.T) {
	u := newAvcUnpacker(false)
	for _, in := range [][]byte{nil, {}, {0x65}, {0x65, 0x01}, {0x7c, 0x85}} {
		out, err := u.Unpack(in)
		assert.Equal(t, nil, out)
		assert.Equal(t, true, errors.Is(err, base.ErrRtpRtcpShortBuffer))
	}
}

func TestRtpUnpackerPayloadAvc_Single(t *testing.T) {
	nal := []byte{0x65, 0x01, 0x02, 0x03}

	out, err := newAvcUnpacker(false).Unpack(nal)
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x01, 0x02, 0x03}, out)

	out, err = newAvcUnpacker(true).Unpack(nal)
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x04, 0x65, 0x01, 0x02, 0x03}, out)
}

func TestRtpUnpackerPayloadAvc_Stapa(t *testing.T) {
	a := []byte{0x67, 0xaa, 0xbb}
	b := []byte{0x68, 0xcc}
	in := []byte{0x18, 0x00, 0x03}
	in = append(in, a...)
	in = append(in, 0x00, 0x02)
	in = append(in, b...)

	out, err := newAvcUnpacker(false).Unpack(in)
	assert.Equal(t, nil, err)
	assert.Equal(t, avc.JoinNaluAnnexb(a, b), out)

	out, err = newAvcUnpacker(true).Unpack(in)
	assert.Equal(t, nil, err)
	assert.Equal(t, avc.JoinNaluAvcc(a, b), out)

	// 声明的长度比剩余字节多1
	bad := []byte{0x18, 0x00, 0x04}
	bad = append(bad, a...)
	out, err = newAvcUnpacker(false).Unpack(bad)
	assert.Equal(t, nil, out)
	assert.Equal(t, true, errors.Is(err, base.ErrStapaUnitTooLarge))
	var e *base.StapaUnitTooLargeError
	assert.Equal(t, true, errors.As(err, &e))
	assert.Equal(t, 4, e.Declared)
	assert.Equal(t, 3, e.Available)

	// 长度字段本身被截断
	out, err = newAvcUnpacker(false).Unpack(append(in, 0x00))
	assert.Equal(t, nil, out)
	assert.Equal(t, true, errors.Is(err, base.ErrRtpRtcpShortBuffer))

	// 长度为0的nalu
	out, err = newAvcUnpacker(true).Unpack([]byte{0x18, 0x00, 0x00})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, out)
}

func TestRtpUnpackerPayloadAvc_Fua(t *testing.T) {
	u := newAvcUnpacker(false)
	assert.Equal(t, false, u.InProgress())

	out, err := u.Unpack([]byte{0x7c, 0x85, 0x01, 0x02})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(out))
	assert.Equal(t, true, u.InProgress())

	out, err = u.Unpack([]byte{0x7c, 0x05, 0x03, 0x04})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(out))

	out, err = u.Unpack([]byte{0x7c, 0x45, 0x05, 0x06})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, out)
	assert.Equal(t, false, u.InProgress())

	// 状态已清空，下一个nalu不受影响；F位不带入还原的nal header
	u = newAvcUnpacker(true)
	_, _ = u.Unpack([]byte{0xbc, 0x81, 0x0a})
	out, err = u.Unpack([]byte{0xbc, 0x41, 0x0b})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x03, 0x21, 0x0a, 0x0b}, out)
	out, err = u.Unpack([]byte{0x7c, 0xc5, 0x0c})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0x65, 0x0c}, out)
}

func TestRtpUnpackerPayloadAvc_InstanceIsolation(t *testing.T) {
	u1 := newAvcUnpacker(false)
	u2 := newAvcUnpacker(false)

	_, _ = u1.Unpack([]byte{0x7c, 0x85, 0x01, 0x02})
	assert.Equal(t, true, u1.InProgress())
	assert.Equal(t, false, u2.InProgress())

	out, err := u2.Unpack([]byte{0x7c, 0x45, 0x03})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x03}, out)

	out, err = u1.Unpack([]byte{0x7c, 0x45, 0x03})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x01, 0x02, 0x03}, out)
}

func TestRtpUnpackerPayloadAvc_Reset(t *testing.T) {
	u := newAvcUnpacker(false)
	_, _ = u.Unpack([]byte{0x7c, 0x85, 0x01, 0x02})
	u.Reset()
	assert.Equal(t, false, u.InProgress())
	out, err := u.Unpack([]byte{0x7c, 0x45, 0x03})
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x03}, out)
}

func TestRtpUnpackerPayloadAvc_NotHandled(t *testing.T) {
	for _, typ := range []uint8{0, 25, 26, 27, 29, 30, 31} {
		u := newAvcUnpacker(false)
		out, err := u.Unpack([]byte{0x60 | typ, 0x85, 0x01})
		assert.Equal(t, nil, out)
		assert.Equal(t, true, errors.Is(err, base.ErrNaluTypeNotHandled))
		var e *base.NaluTypeNotHandledError
		assert.Equal(t, true, errors.As(err, &e))
		assert.Equal(t, typ, e.Type)
	}
}

func TestIsPartitionHeadAvc(t *testing.T) {
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc(nil))
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc([]byte{}))
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc([]byte{0x65}))

	assert.Equal(t, true, rtprtcp.IsPartitionHeadAvc([]byte{0x65, 0x01}))
	assert.Equal(t, true, rtprtcp.IsPartitionHeadAvc([]byte{0x18, 0x00, 0x01, 0x67}))
	assert.Equal(t, true, rtprtcp.IsPartitionHeadAvc([]byte{0x1e, 0x00}))

	assert.Equal(t, true, rtprtcp.IsPartitionHeadAvc([]byte{0x7c, 0x85, 0x01}))
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc([]byte{0x7c, 0x05, 0x01}))
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc([]byte{0x7c, 0x45, 0x01}))

	// FU-B
	assert.Equal(t, true, rtprtcp.IsPartitionHeadAvc([]byte{0x7d, 0x85, 0x00, 0x01}))
	assert.Equal(t, false, rtprtcp.IsPartitionHeadAvc([]byte{0x7d, 0x05, 0x00, 0x01}))

	u := newAvcUnpacker(false)
	assert.Equal(t, true, u.IsPartitionHead([]byte{0x7c, 0x85, 0x01}))
	assert.Equal(t, false, u.InProgress())
}

func TestRtpAvc_RoundTrip(t *testing.T) {
	p := rtprtcp.NewRtpPackerPayloadAvc()

	for _, isAvc := range []bool{false, true} {
		for _, mtu := range []int{3, 16, 100, 1200} {
			for _, nal := range [][]byte{makeNalu(0x67, 3), makeNalu(0x65, 5000), makeNalu(0x41, 1200), makeNalu(0x06, 99)} {
				u := newAvcUnpacker(isAvc)
				payloads := p.Pack(nal, mtu)
				assert.Equal(t, true, len(payloads) > 0)

				var out []byte
				for i, payload := range payloads {
					assert.Equal(t, i == 0, u.IsPartitionHead(payload))
					b, err := u.Unpack(payload)
					assert.Equal(t, nil, err)
					if i != len(payloads)-1 {
						assert.Equal(t, 0, len(b))
					}
					out = b
				}

				if isAvc {
					assert.Equal(t, avc.JoinNaluAvcc(nal), out)
				} else {
					assert.Equal(t, avc.JoinNaluAnnexb(nal), out)
				}
			}
		}
	}
}
