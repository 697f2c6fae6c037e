// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp

import (
	"math/rand"
	"time"

	"github.com/q191201771/rtph264/pkg/base"
)

// RtpPacker 将一帧h264数据交给 IRtpPackerPayload 切割成多个payload，再逐个加上rtp header
//
// 一路流对应一个对象，seq在多帧之间连续递增，到65535后翻转回0
type RtpPacker struct {
	payloadPacker IRtpPackerPayload
	clockRate     int
	ssrc          uint32
	option        RtpPackerOption

	nextSeq uint16
	stat    RtpPackerStat
}

type RtpPackerOption struct {
	MaxPayloadSize int // 即mtu，单个rtp包payload部分的最大字节数，不含rtp header

	// 第一个rtp包的seq
	// RandomFirstSeq为true时忽略FirstSeq，使用随机值
	FirstSeq       uint16
	RandomFirstSeq bool
}

type RtpPackerStat struct {
	FrameCount  int
	PacketCount int
	PayloadSize int
}

var defaultRtpPackerOption = RtpPackerOption{
	MaxPayloadSize: 1200,
	RandomFirstSeq: true,
}

type ModRtpPackerOption func(option *RtpPackerOption)

func NewRtpPacker(payloadPacker IRtpPackerPayload, clockRate int, ssrc uint32, modOptions ...ModRtpPackerOption) *RtpPacker {
	option := defaultRtpPackerOption
	for _, fn := range modOptions {
		fn(&option)
	}

	firstSeq := option.FirstSeq
	if option.RandomFirstSeq {
		firstSeq = uint16(rand.New(rand.NewSource(time.Now().UnixNano())).Intn(65536))
	}

	return &RtpPacker{
		payloadPacker: payloadPacker,
		clockRate:     clockRate,
		ssrc:          ssrc,
		option:        option,
		nextSeq:       firstSeq,
	}
}

// Pack
//
// @param pkt: pkt.Timestamp   帧的时间戳，单位毫秒，按clockRate换算后写入rtp header
//             pkt.PayloadType rtp header中的payload type
//             pkt.Payload     一帧数据，格式由 IRtpPackerPayload 决定
//
// @return 一帧中所有rtp包共用同一个时间戳，只有最后一个包的mark位为1。
//         帧内没有可发送的nalu时返回nil
//
func (r *RtpPacker) Pack(pkt base.AvPacket) []RtpPacket {
	payloads := r.payloadPacker.Pack(pkt.Payload, r.option.MaxPayloadSize)
	if len(payloads) == 0 {
		return nil
	}

	ts := uint32(pkt.Timestamp * int64(r.clockRate) / 1000)
	out := make([]RtpPacket, len(payloads))
	for i := range payloads {
		h := MakeDefaultRtpHeader()
		h.PacketType = uint8(pkt.PayloadType)
		h.Seq = r.nextSeq
		h.Timestamp = ts
		h.Ssrc = r.ssrc
		if i == len(payloads)-1 {
			h.Mark = 1
		}
		r.nextSeq++

		out[i] = MakeRtpPacket(h, payloads[i])
		r.stat.PayloadSize += len(payloads[i])
	}
	r.stat.FrameCount++
	r.stat.PacketCount += len(out)
	return out
}

// NextSeq 下一个rtp包将使用的seq
func (r *RtpPacker) NextSeq() uint16 {
	return r.nextSeq
}

func (r *RtpPacker) Stat() RtpPackerStat {
	return r.stat
}
