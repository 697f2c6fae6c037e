// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp

import (
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
)

type RtpPackerPayloadAvcType int

const (
	RtpPackerPayloadAvcTypeAnnexb RtpPackerPayloadAvcType = iota + 1
	RtpPackerPayloadAvcTypeAvcc
	RtpPackerPayloadAvcTypeNalu
)

type RtpPackerPayloadAvcOption struct {
	Typ RtpPackerPayloadAvcType
}

var defaultRtpPackerPayloadAvcOption = RtpPackerPayloadAvcOption{
	Typ: RtpPackerPayloadAvcTypeAnnexb,
}

// RtpPackerPayloadAvc 不持有任何状态，可以被多个goroutine共享使用
type RtpPackerPayloadAvc struct {
	option RtpPackerPayloadAvcOption
}

type ModRtpPackerPayloadAvcOption func(option *RtpPackerPayloadAvcOption)

func NewRtpPackerPayloadAvc(modOptions ...ModRtpPackerPayloadAvcOption) *RtpPackerPayloadAvc {
	option := defaultRtpPackerPayloadAvcOption
	for _, fn := range modOptions {
		fn(&option)
	}
	return &RtpPackerPayloadAvc{
		option: option,
	}
}

// Pack
//
// @param in: 默认为Annexb格式，由 RtpPackerPayloadAvcOption.Typ 决定
//            Annexb格式时，如果整块内存中没有start code，则整块内存作为一个nalu
//
// @return out: 内存块为独立新申请；函数返回后，内部不再持有该内存块
//              输入为空或maxSize<=0时返回空
//
func (r *RtpPackerPayloadAvc) Pack(in []byte, maxSize int) (out [][]byte) {
	if len(in) == 0 || maxSize <= 0 {
		return
	}

	switch r.option.Typ {
	case RtpPackerPayloadAvcTypeAvcc:
		err := avc.IterateNaluAvcc(in, func(nal []byte) {
			out = PackNalAvc(out, nal, maxSize)
		})
		if err != nil {
			base.Log.Warnf("iterate avcc nalu failed, drop remaining data. err=%+v, len=%d", err, len(in))
		}
	case RtpPackerPayloadAvcTypeNalu:
		out = PackNalAvc(out, in, maxSize)
	default:
		avc.IterateNaluAnnexb(in, func(nal []byte) {
			out = PackNalAvc(out, nal, maxSize)
		})
	}
	return
}

// PackNalAvc 将一个nalu打包成一个或多个rtp payload，追加到<out>后返回
//
// - 空的nalu，AUD(9)以及FD(12)不打包
// - 长度不超过maxSize的nalu使用Single NAL Unit Packet，内容和nalu相同
// - 其余使用FU-A切片，每片最多maxSize-2字节的nalu payload
//
func PackNalAvc(out [][]byte, nal []byte, maxSize int) [][]byte {
	if len(nal) == 0 {
		return out
	}

	nalType := avc.ParseNaluType(nal[0])
	nri := avc.ParseNaluRefIdc(nal[0])

	if nalType == avc.NaluTypeAud || nalType == avc.NaluTypeFd {
		return out
	}

	// single
	if len(nal) <= maxSize {
		item := make([]byte, len(nal))
		copy(item, nal)
		return append(out, item)
	}

	// FU-A
	//
	// 注意，跳过输入的nal type那个字节，使用FU-A自己的两个字节的头，避免重复
	maxFragmentSize := maxSize - fuaHeaderSize
	bpos := 1
	epos := len(nal)
	if maxFragmentSize <= 0 || epos-bpos <= 0 {
		base.Log.Debugf("mtu too small to fragment nalu, drop it. mtu=%d, len=%d", maxSize, len(nal))
		return out
	}

	for bpos < epos {
		fragmentSize := epos - bpos
		if fragmentSize > maxFragmentSize {
			fragmentSize = maxFragmentSize
		}

		item := make([]byte, fuaHeaderSize+fragmentSize)
		// fuIndicator
		item[0] = NaluTypeAvcFua | nri
		// fuHeader
		item[1] = nalType
		// 当前帧切割后的首个RTP包
		if bpos == 1 {
			item[1] |= fuStartBitmask
		}
		// 最后一包
		if bpos+fragmentSize == epos {
			item[1] |= fuEndBitmask
		}
		copy(item[fuaHeaderSize:], nal[bpos:bpos+fragmentSize])
		out = append(out, item)

		bpos += fragmentSize
	}
	return out
}
