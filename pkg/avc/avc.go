// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/rtph264/pkg/base"
)

// Lal avc包只处理nal header那一个字节，不解析slice header, sps, pps等nal payload的内容

var (
	NaluStartCode3 = []byte{0x0, 0x0, 0x1}
	NaluStartCode4 = []byte{0x0, 0x0, 0x0, 0x1}
)

// H.264-AVC-ISO_IEC_14496-10.pdf
// 7.3.1 NAL unit syntax
//
// +---------------+
// |0|1|2|3|4|5|6|7|
// +-+-+-+-+-+-+-+-+
// |F|NRI|  Type   |
// +---------------+
const (
	NaluTypeBitmask   uint8 = 0x1F
	NaluRefIdcBitmask uint8 = 0x60
)

const (
	NaluTypeSlice    uint8 = 1
	NaluTypeIdrSlice uint8 = 5
	NaluTypeSei      uint8 = 6
	NaluTypeSps      uint8 = 7
	NaluTypePps      uint8 = 8
	NaluTypeAud      uint8 = 9  // Access Unit Delimiter
	NaluTypeFd       uint8 = 12 // Filler Data
)

var NaluTypeMapping = map[uint8]string{
	1:  "SLICE",
	5:  "IDR",
	6:  "SEI",
	7:  "SPS",
	8:  "PPS",
	9:  "AUD",
	12: "FD",
	24: "STAPA",
	28: "FUA",
	29: "FUB",
}

func ParseNaluType(v uint8) uint8 {
	return v & NaluTypeBitmask
}

func ParseNaluRefIdc(v uint8) uint8 {
	return v & NaluRefIdcBitmask
}

func ParseNaluTypeReadable(v uint8) string {
	t := ParseNaluType(v)
	ret, ok := NaluTypeMapping[t]
	if !ok {
		return "unknown"
	}
	return ret
}

// IterateNaluStartCode 从<start>位置开始向后查找start code
//
// 两个及以上的0x00后面跟一个0x01即认为是start code
//
// @return pos:    start code的起始位置（第一个0x00的位置），没找到时返回-1
// @return length: start code的长度，即0x00的个数加1，没找到时返回-1
//
func IterateNaluStartCode(nalu []byte, start int) (pos, length int) {
	if nalu == nil || start >= len(nalu) {
		return -1, -1
	}
	count := 0
	for i, b := range nalu[start:] {
		switch b {
		case 0:
			count++
			continue
		case 1:
			if count >= 2 {
				return start + i - count, count + 1
			}
		}
		count = 0
	}
	return -1, -1
}

// IterateNaluAnnexb 遍历Annexb格式的nalu流
//
// 注意，如果整块内存都没有start code，则整块内存作为一个nalu回调
// 第一个start code之前的数据会被丢弃
// 回调的nal可能为空切片，由业务方决定如何处理
//
func IterateNaluAnnexb(nals []byte, handler func(nal []byte)) {
	if len(nals) == 0 {
		return
	}

	pos, length := IterateNaluStartCode(nals, 0)
	if pos == -1 {
		handler(nals)
		return
	}

	for pos != -1 {
		prev := pos + length
		pos, length = IterateNaluStartCode(nals, prev)
		if pos != -1 {
			handler(nals[prev:pos])
		} else {
			handler(nals[prev:])
		}
	}
}

// SplitNaluAnnexb 和 IterateNaluAnnexb 相同，区别是空的nalu会被跳过，并返回切片
//
// 注意，返回的nalu引用的是<nals>的内存块
//
func SplitNaluAnnexb(nals []byte) [][]byte {
	var ret [][]byte
	IterateNaluAnnexb(nals, func(nal []byte) {
		if len(nal) == 0 {
			return
		}
		ret = append(ret, nal)
	})
	return ret
}

// IterateNaluAvcc 遍历Avcc格式的nalu流，每个nalu前有4字节大端长度
//
func IterateNaluAvcc(nals []byte, handler func(nal []byte)) error {
	if nals == nil {
		return base.ErrShortBuffer
	}
	pos := 0
	for {
		if len(nals[pos:]) < 4 {
			return base.ErrShortBuffer
		}
		length := int(bele.BeUint32(nals[pos:]))
		pos += 4
		if pos+length > len(nals) {
			return base.ErrAvc
		}
		handler(nals[pos : pos+length])
		pos += length

		if pos == len(nals) {
			break
		}
	}
	return nil
}

func SplitNaluAvcc(nals []byte) (nalList [][]byte, err error) {
	err = IterateNaluAvcc(nals, func(nal []byte) {
		nalList = append(nalList, nal)
	})
	return
}

// JoinNaluAvcc 每个nalu前加4字节大端长度，拼接成一块新申请的内存
func JoinNaluAvcc(naluList ...[]byte) []byte {
	n := len(naluList)
	if n == 0 {
		return nil
	}
	n *= 4
	for _, item := range naluList {
		n += len(item)
	}
	ret := make([]byte, n)

	pos := 0
	for _, item := range naluList {
		bele.BePutUint32(ret[pos:], uint32(len(item)))
		pos += 4
		copy(ret[pos:], item)
		pos += len(item)
	}

	return ret
}

// JoinNaluAnnexb 每个nalu前加4字节start code，拼接成一块新申请的内存
func JoinNaluAnnexb(naluList ...[]byte) []byte {
	n := len(naluList)
	if n == 0 {
		return nil
	}
	n *= 4
	for _, item := range naluList {
		n += len(item)
	}
	ret := make([]byte, n)

	pos := 0
	for _, item := range naluList {
		copy(ret[pos:], NaluStartCode4)
		pos += 4
		copy(ret[pos:], item)
		pos += len(item)
	}

	return ret
}
