// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package rtprtcp

// IRtpUnpackerPayload 将rtp payload还原成音视频数据，不同codec各自实现
//
// 实现可能持有跨包的状态（比如FU-A的分片缓存），一个对象只对应一路流，并且需要按发送顺序串行调用
type IRtpUnpackerPayload interface {
	// Unpack 解析一个rtp payload
	//
	// @return out: 本次调用还原出的数据；数据还不完整（比如FU-A的非最后一片）时返回空且err为nil
	//
	Unpack(in []byte) (out []byte, err error)

	// IsPartitionHead 判断rtp payload是否是一个新nalu的开始，不依赖也不修改内部状态
	IsPartitionHead(in []byte) bool

	// Reset 丢弃未还原完成的数据
	Reset()
}

var _ IRtpUnpackerPayload = &RtpUnpackerPayloadAvc{}
