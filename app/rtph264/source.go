// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"

	"github.com/asticode/go-astits"
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
)

// onFrame 回调的 base.AvPacket
//   - Timestamp 单位毫秒
//   - Payload   Annexb格式，可能包含多个nalu
type onFrame func(pkt base.AvPacket)

// readEsStream 读取h264裸流（Annexb格式），以slice nalu作为一帧的结尾，按fps生成时间戳
func readEsStream(r io.Reader, fps int, onFrame onFrame) error {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	var nals [][]byte
	var ts float64
	emit := func() {
		if len(nals) == 0 {
			return
		}
		onFrame(base.AvPacket{
			Timestamp:   int64(ts),
			PayloadType: base.AvPacketPtAvc,
			Payload:     avc.JoinNaluAnnexb(nals...),
		})
		nals = nals[:0]
		ts += 1000 / float64(fps)
	}

	avc.IterateNaluAnnexb(b, func(nal []byte) {
		if len(nal) == 0 {
			return
		}
		nals = append(nals, nal)
		t := avc.ParseNaluType(nal[0])
		if t == avc.NaluTypeSlice || t == avc.NaluTypeIdrSlice {
			emit()
		}
	})
	emit()
	return nil
}

// readTsStream 从mpegts中解析出h264的pes，pes的数据即为Annexb格式的一帧
func readTsStream(ctx context.Context, r io.Reader, onFrame onFrame) error {
	demuxer := astits.NewDemuxer(ctx, bufio.NewReader(r))
	videoPids := make(map[uint16]struct{})

	for {
		d, err := demuxer.NextData()
		if err != nil {
			if err == astits.ErrNoMorePackets {
				return nil
			}
			return err
		}

		if d.PMT != nil {
			for _, es := range d.PMT.ElementaryStreams {
				if es.StreamType == astits.StreamTypeH264Video {
					if _, ok := videoPids[es.ElementaryPID]; !ok {
						base.Log.Infof("h264 stream found. pid=%d", es.ElementaryPID)
					}
					videoPids[es.ElementaryPID] = struct{}{}
				}
			}
			continue
		}

		if d.PES == nil || d.FirstPacket == nil {
			continue
		}
		if _, ok := videoPids[d.FirstPacket.Header.PID]; !ok {
			continue
		}

		var pts int64
		if d.PES.Header.OptionalHeader != nil && d.PES.Header.OptionalHeader.PTS != nil {
			pts = d.PES.Header.OptionalHeader.PTS.Base / 90
		}
		onFrame(base.AvPacket{
			Timestamp:   pts,
			PayloadType: base.AvPacketPtAvc,
			Payload:     d.PES.Data,
		})
	}
}
