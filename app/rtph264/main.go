// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/rtph264/pkg/avc"
	"github.com/q191201771/rtph264/pkg/base"
	"github.com/q191201771/rtph264/pkg/rtprtcp"
)

// 读取h264裸流文件或者mpegts文件，打包成rtp包，再将rtp包解包还原，写入输出文件，
// 用于验证rtp h264打包以及解包
//
// 示例：
// ./bin/rtph264 -i test.h264 -o out.h264
// ./bin/rtph264 -c conf/rtph264.conf.json -i test.ts -o out.h264 -mtu 500
//

func main() {
	defer nazalog.Sync()

	rand.Seed(time.Now().UnixNano())

	config := parseFlag()

	err := nazalog.Init(func(option *nazalog.Option) {
		*option = config.LogConfig
	})
	nazalog.Assert(nil, err)
	nazalog.Infof("config=%+v", config)

	stat, err := run(context.Background(), config)
	nazalog.Assert(nil, err)

	nazalog.Infof("done. %+v", stat)
}

type runStat struct {
	InFrameCount  int
	InNaluCount   int
	RtpCount      int
	RtpBytes      int
	OutFrameCount int
	Unpacker      rtprtcp.RtpUnpackerStat
	Identical     bool
}

func run(ctx context.Context, config *Config) (stat runStat, err error) {
	inFp, err := os.Open(config.InFile)
	if err != nil {
		return
	}
	defer inFp.Close()

	outFp, err := os.Create(config.OutFile)
	if err != nil {
		return
	}
	defer outFp.Close()

	ssrc := config.Ssrc
	if ssrc == 0 {
		ssrc = rand.Uint32()
	}

	packer := rtprtcp.NewRtpPacker(rtprtcp.NewRtpPackerPayloadAvc(), base.AvcClockRate, ssrc, func(option *rtprtcp.RtpPackerOption) {
		option.MaxPayloadSize = config.Mtu
		if config.FirstSeq >= 0 {
			option.FirstSeq = uint16(config.FirstSeq)
			option.RandomFirstSeq = false
		}
	})

	// 期望还原出的nalu，AUD和FD在打包时被丢弃
	var expected [][]byte
	var actual []byte
	var writeErr error

	unpacker := rtprtcp.NewRtpUnpacker(base.AvPacketPtAvc, base.AvcClockRate,
		rtprtcp.NewRtpUnpackerPayloadAvc(func(option *rtprtcp.RtpUnpackerPayloadAvcOption) {
			option.IsAvc = config.IsAvc
		}),
		func(pkt base.AvPacket) {
			stat.OutFrameCount++
			nazalog.Debugf("< frame. ts=%d, len=%d", pkt.Timestamp, len(pkt.Payload))
			actual = append(actual, pkt.Payload...)
			if _, werr := outFp.Write(pkt.Payload); werr != nil && writeErr == nil {
				writeErr = werr
			}
		})

	onFrame := func(frame base.AvPacket) {
		stat.InFrameCount++
		for _, nal := range avc.SplitNaluAnnexb(frame.Payload) {
			stat.InNaluCount++
			t := avc.ParseNaluType(nal[0])
			if t != avc.NaluTypeAud && t != avc.NaluTypeFd {
				expected = append(expected, nal)
			}
		}

		pkts := packer.Pack(frame)
		nazalog.Debugf("> frame. ts=%d, len=%d, rtp=%d", frame.Timestamp, len(frame.Payload), len(pkts))
		for _, pkt := range pkts {
			stat.RtpCount++
			stat.RtpBytes += len(pkt.Raw)

			// 模拟接收端收到的是网络上的字节流
			recvPkt, perr := rtprtcp.ParseRtpPacket(pkt.Raw)
			if perr != nil {
				nazalog.Errorf("parse rtp packet failed. err=%+v", perr)
				continue
			}
			unpacker.Feed(recvPkt)
		}
	}

	switch strings.ToLower(filepath.Ext(config.InFile)) {
	case ".ts":
		err = readTsStream(ctx, inFp, onFrame)
	default:
		err = readEsStream(inFp, config.Fps, onFrame)
	}
	if err != nil {
		return
	}
	if writeErr != nil {
		err = writeErr
		return
	}

	stat.Unpacker = unpacker.Stat()

	var expectedOut []byte
	if config.IsAvc {
		expectedOut = avc.JoinNaluAvcc(expected...)
	} else {
		expectedOut = avc.JoinNaluAnnexb(expected...)
	}
	stat.Identical = bytes.Equal(expectedOut, actual)
	if !stat.Identical {
		nazalog.Warnf("output not identical to input. expected=%d, actual=%d", len(expectedOut), len(actual))
	}
	return
}

func parseFlag() *Config {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	cf := flag.String("c", "", "specify conf file")
	inFile := flag.String("i", "", "specify input file, .h264 annexb stream or .ts")
	outFile := flag.String("o", "", "specify output file")
	mtu := flag.Int("mtu", 0, "specify max rtp payload size, override conf")
	isAvc := flag.Bool("avcc", false, "write avcc instead of annexb, override conf")
	flag.Parse()

	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.LalFullInfo)
		os.Exit(0)
	}

	var config *Config
	var err error
	if *cf != "" {
		config, err = LoadConf(*cf)
	} else {
		config, err = ParseConf([]byte("{}"))
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load conf failed. err=%+v\n", err)
		os.Exit(1)
	}

	if *inFile != "" {
		config.InFile = *inFile
	}
	if *outFile != "" {
		config.OutFile = *outFile
	}
	if *mtu > 0 {
		config.Mtu = *mtu
	}
	if *isAvc {
		config.IsAvc = true
	}

	if config.InFile == "" || config.OutFile == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `Example:
  %s -i test.h264 -o out.h264
  %s -c conf/rtph264.conf.json -i test.ts -o out.h264 -mtu 500
`, os.Args[0], os.Args[0])
		os.Exit(1)
	}
	return config
}
