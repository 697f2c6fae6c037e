// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
)

func TestParseNaluType(t *testing.T) {
	assert.Equal(t, avc.NaluTypeSps, avc.ParseNaluType(0x67))
	assert.Equal(t, avc.NaluTypeIdrSlice, avc.ParseNaluType(0x65))
	assert.Equal(t, uint8(28), avc.ParseNaluType(0x7c))
	assert.Equal(t, uint8(0x60), avc.ParseNaluRefIdc(0x65))
	assert.Equal(t, uint8(0x20), avc.ParseNaluRefIdc(0xa1))
	assert.Equal(t, "SPS", avc.ParseNaluTypeReadable(0x67))
	assert.Equal(t, "unknown", avc.ParseNaluTypeReadable(0x1e))
}

func TestIterateNaluStartCode(t *testing.T) {
	golden := []struct {
		in     []byte
		start  int
		pos    int
		length int
	}{
		{nil, 0, -1, -1},
		{[]byte{}, 0, -1, -1},
		{[]byte{0x65, 0x01, 0x02}, 0, -1, -1},
		{[]byte{0x00, 0x01, 0x65}, 0, -1, -1},
		{[]byte{0x00, 0x00, 0x01, 0x65}, 0, 0, 3},
		{[]byte{0x00, 0x00, 0x00, 0x01, 0x65}, 0, 0, 4},
		{[]byte{0x65, 0x00, 0x00, 0x00, 0x00, 0x01, 0x41}, 0, 1, 5},
		{[]byte{0x00, 0x00, 0x01, 0x65, 0x00, 0x00, 0x01, 0x41}, 3, 4, 3},
		{[]byte{0x00, 0x00, 0x01, 0x65, 0x00, 0x00, 0x01, 0x41}, 8, -1, -1},
		{[]byte{0x00, 0x00, 0x02, 0x01}, 0, -1, -1},
	}
	for i, g := range golden {
		pos, length := avc.IterateNaluStartCode(g.in, g.start)
		assert.Equal(t, g.pos, pos, fmt.Sprintf("pos, i=%d", i))
		assert.Equal(t, g.length, length, fmt.Sprintf("length, i=%d", i))
	}
}

func TestSplitNaluAnnexb(t *testing.T) {
	// 没有start code，整块作为一个nalu
	nals := avc.SplitNaluAnnexb([]byte{0x65, 0x01, 0x02})
	assert.Equal(t, 1, len(nals))
	assert.Equal(t, []byte{0x65, 0x01, 0x02}, nals[0])

	// 3字节和4字节start code混用，第一个start code之前的数据被丢弃
	in := []byte{0xff, 0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x00, 0x01, 0x68, 0xce, 0x00, 0x00, 0x00, 0x01, 0x65, 0x88}
	nals = avc.SplitNaluAnnexb(in)
	assert.Equal(t, 3, len(nals))
	assert.Equal(t, []byte{0x67, 0x42}, nals[0])
	assert.Equal(t, []byte{0x68, 0xce}, nals[1])
	assert.Equal(t, []byte{0x65, 0x88}, nals[2])

	// 空nalu被跳过
	nals = avc.SplitNaluAnnexb([]byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0x41})
	assert.Equal(t, 1, len(nals))
	assert.Equal(t, []byte{0x41}, nals[0])

	assert.Equal(t, 0, len(avc.SplitNaluAnnexb(nil)))
}

func TestIterateNaluAnnexb(t *testing.T) {
	var nals [][]byte
	avc.IterateNaluAnnexb([]byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0x41}, func(nal []byte) {
		nals = append(nals, nal)
	})
	assert.Equal(t, 2, len(nals))
	assert.Equal(t, 0, len(nals[0]))
	assert.Equal(t, []byte{0x41}, nals[1])
}

func TestAvcc(t *testing.T) {
	sps := []byte{0x67, 0x42, 0xc0}
	pps := []byte{0x68, 0xce}
	in := avc.JoinNaluAvcc(sps, pps)
	assert.Equal(t, []byte{0, 0, 0, 3, 0x67, 0x42, 0xc0, 0, 0, 0, 2, 0x68, 0xce}, in)

	nals, err := avc.SplitNaluAvcc(in)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(nals))
	assert.Equal(t, sps, nals[0])
	assert.Equal(t, pps, nals[1])

	_, err = avc.SplitNaluAvcc(in[:len(in)-1])
	assert.Equal(t, true, errors.Is(err, base.ErrAvc))
	_, err = avc.SplitNaluAvcc([]byte{0, 0, 0})
	assert.Equal(t, true, errors.Is(err, base.ErrShortBuffer))
	_, err = avc.SplitNaluAvcc(nil)
	assert.Equal(t, true, errors.Is(err, base.ErrShortBuffer))

	assert.Equal(t, nil, avc.JoinNaluAvcc())
}

func TestJoinNaluAnnexb(t *testing.T) {
	out := avc.JoinNaluAnnexb([]byte{0x67, 0x42}, []byte{0x68})
	assert.Equal(t, []byte{0, 0, 0, 1, 0x67, 0x42, 0, 0, 0, 1, 0x68}, out)
	assert.Equal(t, 2, len(avc.SplitNaluAnnexb(out)))
}
