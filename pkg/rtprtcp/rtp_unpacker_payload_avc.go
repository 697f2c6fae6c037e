// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
)

type RtpUnpackerPayloadAvcOption struct {
	// IsAvc 为true时，输出的每个nalu前加4字节大端长度（Avcc），否则加4字节start code（Annexb）
	IsAvc bool
}

var defaultRtpUnpackerPayloadAvcOption = RtpUnpackerPayloadAvcOption{
	IsAvc: false,
}

// RtpUnpackerPayloadAvc
//
// 一个对象只对应一路流，内部持有FU-A的分片缓存，不能被多个goroutine同时使用。
// 调用方需保证按原始发送顺序喂入，对象内部不检测丢包，丢失分片会导致下一个还原出的nalu损坏，
// 解包出错后也应该调用 Reset 或丢弃该对象。
type RtpUnpackerPayloadAvc struct {
	option RtpUnpackerPayloadAvcOption

	// 长度为0表示当前没有正在还原的FU-A
	fuaBuffer []byte

	logDump base.LogDump
}

type ModRtpUnpackerPayloadAvcOption func(option *RtpUnpackerPayloadAvcOption)

func NewRtpUnpackerPayloadAvc(modOptions ...ModRtpUnpackerPayloadAvcOption) *RtpUnpackerPayloadAvc {
	option := defaultRtpUnpackerPayloadAvcOption
	for _, fn := range modOptions {
		fn(&option)
	}
	return &RtpUnpackerPayloadAvc{
		option:  option,
		logDump: base.NewLogDump(base.Log, base.LogDumpDebugMaxNum),
	}
}

// Unpack
//
// @param in: rtp payload，不包含rtp header
//
// @return out: 一个或多个nalu，每个nalu前有4字节的长度或start code，见 RtpUnpackerPayloadAvcOption.IsAvc
//              STAP-A时可能包含多个nalu
//              FU-A的非最后一片返回空
//              内存块为独立新申请，函数返回后内部不再持有
//
func (r *RtpUnpackerPayloadAvc) Unpack(in []byte) (out []byte, err error) {
	if len(in) <= fuaHeaderSize {
		return nil, base.NewErrRtpRtcpShortBuffer(fuaHeaderSize+1, len(in))
	}

	// rfc6184 5.4.  Packetization Modes
	outerNaluType := avc.ParseNaluType(in[0])

	switch {
	case outerNaluType >= 1 && outerNaluType <= NaluTypeAvcSingleMax:
		out = make([]byte, 0, 4+len(in))
		out = r.appendPrefix(out, len(in))
		out = append(out, in...)
		return out, nil
	case outerNaluType == NaluTypeAvcStapa:
		out, err = r.unpackStapa(in)
	case outerNaluType == NaluTypeAvcFua:
		out, err = r.unpackFua(in)
	default:
		err = &base.NaluTypeNotHandledError{Type: outerNaluType}
	}

	if err != nil && r.logDump.ShouldDump() {
		r.logDump.Outf("unpack avc rtp payload failed. err=%+v, len=%d, hex=%s", err, len(in), base.HexPrefix(in))
	}
	return
}

// unpackStapa
//
// rfc6184 5.7.1.  Single-Time Aggregation Packet (STAP)
//
//  0                   1                   2                   3
//  0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |                          RTP Header                           |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |STAP-A NAL HDR |         NALU 1 Size           | NALU 1 HDR    |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |                         NALU 1 Data                           |
// :                                                               :
// +               +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |               | NALU 2 Size                   | NALU 2 HDR    |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |                         NALU 2 Data                           |
// :                                                               :
// |                               +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |                               :...OPTIONAL RTP padding        |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//
func (r *RtpUnpackerPayloadAvc) unpackStapa(in []byte) ([]byte, error) {
	// 每个nalu的2字节长度替换成4字节的长度或start code，所以最多比输入多出 2*n 字节
	out := make([]byte, 0, len(in)*2)

	pos := stapaHeaderSize
	for pos < len(in) {
		if len(in)-pos < stapaNaluLengthSize {
			return nil, base.NewErrRtpRtcpShortBuffer(stapaNaluLengthSize, len(in)-pos)
		}
		naluSize := int(bele.BeUint16(in[pos:]))
		pos += stapaNaluLengthSize

		if len(in)-pos < naluSize {
			return nil, &base.StapaUnitTooLargeError{
				Declared:  naluSize,
				Available: len(in) - pos,
			}
		}

		out = r.appendPrefix(out, naluSize)
		out = append(out, in[pos:pos+naluSize]...)
		pos += naluSize
	}
	return out, nil
}

// unpackFua
//
// rfc6184 5.8.  Fragmentation Units (FUs)
//
// FU indicator:
// +---------------+
// |0|1|2|3|4|5|6|7|
// +-+-+-+-+-+-+-+-+
// |F|NRI|  Type   |
// +---------------+
//
// FU header:
// +---------------+
// |0|1|2|3|4|5|6|7|
// +-+-+-+-+-+-+-+-+
// |S|E|R|  Type   |
// +---------------+
//
func (r *RtpUnpackerPayloadAvc) unpackFua(in []byte) ([]byte, error) {
	if len(in) < fuaHeaderSize {
		return nil, base.NewErrRtpRtcpShortBuffer(fuaHeaderSize, len(in))
	}

	fuIndicator := in[0]
	fuHeader := in[1]

	r.fuaBuffer = append(r.fuaBuffer, in[fuaHeaderSize:]...)

	if fuHeader&fuEndBitmask == 0 {
		return nil, nil
	}

	naluHeader := avc.ParseNaluRefIdc(fuIndicator) | avc.ParseNaluType(fuHeader)

	out := make([]byte, 0, 4+1+len(r.fuaBuffer))
	out = r.appendPrefix(out, len(r.fuaBuffer)+1)
	out = append(out, naluHeader)
	out = append(out, r.fuaBuffer...)

	r.fuaBuffer = r.fuaBuffer[:0]
	return out, nil
}

func (r *RtpUnpackerPayloadAvc) IsPartitionHead(in []byte) bool {
	return IsPartitionHeadAvc(in)
}

func (r *RtpUnpackerPayloadAvc) Reset() {
	r.fuaBuffer = r.fuaBuffer[:0]
}

// InProgress 是否有正在还原中的FU-A
func (r *RtpUnpackerPayloadAvc) InProgress() bool {
	return len(r.fuaBuffer) != 0
}

func (r *RtpUnpackerPayloadAvc) appendPrefix(out []byte, naluSize int) []byte {
	if r.option.IsAvc {
		var b [4]byte
		bele.BePutUint32(b[:], uint32(naluSize))
		return append(out, b[:]...)
	}
	return append(out, avc.NaluStartCode4...)
}

// IsPartitionHeadAvc 判断rtp payload是否是一个新nalu的开始
//
// FU-A和FU-B只有S位为1的分片是开始，其他类型都认为是开始。
// 注意，解包时并不支持FU-B。
func IsPartitionHeadAvc(in []byte) bool {
	if len(in) < 2 {
		return false
	}

	t := avc.ParseNaluType(in[0])
	if t == NaluTypeAvcFua || t == NaluTypeAvcFub {
		return in[1]&fuStartBitmask != 0
	}
	return true
}
