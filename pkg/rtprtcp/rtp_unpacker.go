// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp

import (
	"github.com/q191201771/rtph264/pkg/base"
)

// 传入RTP包，合成帧数据，并回调返回
// 一路音频或一路视频各对应一个对象
//
// 注意，这里不做重排序，调用方需保证按seq顺序喂入。
// 出现丢包、seq跳变或者解包失败时，丢弃正在合成的帧以及 IRtpUnpackerPayload 中未还原完成的数据，
// 并且丢弃后续的包，直到出现新nalu的开始。

// OnAvPacket
//
// @param pkt: pkt.Timestamp   RTP包头中的时间戳经过clockrate换算后的时间戳，单位毫秒
//             pkt.PayloadType base.AvPacketPtXxx
//             pkt.Payload     一帧中所有的nalu，每个nalu前是4字节长度或start code，由 IRtpUnpackerPayload 决定
//                             新申请的内存块，回调结束后，内部不再使用该内存块
type OnAvPacket func(pkt base.AvPacket)

type RtpUnpacker struct {
	payloadType     base.AvPacketPt
	clockRate       int
	payloadUnpacker IRtpUnpackerPayload
	onAvPacket      OnAvPacket

	hasPrevSeq        bool
	prevSeq           uint16
	waitPartitionHead bool

	frame          []byte
	frameTimestamp uint32
	hasFrame       bool

	stat RtpUnpackerStat
}

type RtpUnpackerStat struct {
	PacketCount     int
	LostPacketCount int
	DropPacketCount int // 重复，乱序，或者在等待新nalu开始时被丢弃的包
	ErrorCount      int
	FrameCount      int
	ResyncCount     int // seq跳变超出窗口，重新同步的次数
}

const (
	// seq向前跳变小于rtpMaxDropout时视为丢包，
	// 向后回退小于rtpMaxMisorder时视为重复或乱序包，
	// 超出这两个窗口则视为新的序列
	rtpMaxDropout  = 3000
	rtpMaxMisorder = 100
)

func NewRtpUnpacker(payloadType base.AvPacketPt, clockRate int, payloadUnpacker IRtpUnpackerPayload, onAvPacket OnAvPacket) *RtpUnpacker {
	return &RtpUnpacker{
		payloadType:     payloadType,
		clockRate:       clockRate,
		payloadUnpacker: payloadUnpacker,
		onAvPacket:      onAvPacket,

		// 可能从一个FU-A的中间开始接收
		waitPartitionHead: true,
	}
}

func (r *RtpUnpacker) Feed(pkt RtpPacket) {
	r.stat.PacketCount++

	if r.hasPrevSeq {
		diff := SubSeq(pkt.Header.Seq, r.prevSeq)
		switch {
		case diff == 1:
		case diff > 1 && diff < rtpMaxDropout:
			base.Log.Warnf("rtp packet lost, discard pending data. seq=%d, prev=%d", pkt.Header.Seq, r.prevSeq)
			r.stat.LostPacketCount += diff - 1
			r.discard()
		case diff <= 0 && diff > -rtpMaxMisorder:
			base.Log.Warnf("drop rtp packet. seq=%d, prev=%d", pkt.Header.Seq, r.prevSeq)
			r.stat.DropPacketCount++
			return
		default:
			// 发送端重启或者切换了ssrc，以当前包为新的起点
			base.Log.Warnf("rtp seq jump, resync. seq=%d, prev=%d", pkt.Header.Seq, r.prevSeq)
			r.stat.ResyncCount++
			r.discard()
		}
	}
	r.hasPrevSeq = true
	r.prevSeq = pkt.Header.Seq

	body := pkt.Body()

	if r.waitPartitionHead {
		if !r.payloadUnpacker.IsPartitionHead(body) {
			r.stat.DropPacketCount++
			return
		}
		r.waitPartitionHead = false
	}

	// 上一帧的mark包丢失时，通过时间戳变化以及新nalu的开始，将上一帧先回调出去
	if r.hasFrame && pkt.Header.Timestamp != r.frameTimestamp && r.payloadUnpacker.IsPartitionHead(body) {
		r.flush()
	}

	out, err := r.payloadUnpacker.Unpack(body)
	if err != nil {
		base.Log.Errorf("unpack rtp payload failed. seq=%d, err=%+v", pkt.Header.Seq, err)
		r.stat.ErrorCount++
		r.discard()
		return
	}

	if len(out) != 0 {
		if !r.hasFrame {
			r.hasFrame = true
			r.frameTimestamp = pkt.Header.Timestamp
		}
		r.frame = append(r.frame, out...)
	}

	if pkt.Header.Mark == 1 {
		r.flush()
	}
}

func (r *RtpUnpacker) Stat() RtpUnpackerStat {
	return r.stat
}

func (r *RtpUnpacker) flush() {
	if !r.hasFrame || len(r.frame) == 0 {
		r.hasFrame = false
		return
	}

	var pkt base.AvPacket
	pkt.PayloadType = r.payloadType
	if r.clockRate > 0 {
		pkt.Timestamp = int64(r.frameTimestamp) * 1000 / int64(r.clockRate)
	} else {
		pkt.Timestamp = int64(r.frameTimestamp)
	}
	pkt.Payload = r.frame

	r.frame = nil
	r.hasFrame = false
	r.stat.FrameCount++
	r.onAvPacket(pkt)
}

func (r *RtpUnpacker) discard() {
	r.frame = nil
	r.hasFrame = false
	r.waitPartitionHead = true
	r.payloadUnpacker.Reset()
}
