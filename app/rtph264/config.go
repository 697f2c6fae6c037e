// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/rtph264/pkg/base"
)

type Config struct {
	InFile  string `json:"in_file"`
	OutFile string `json:"out_file"`

	Mtu      int    `json:"mtu"`       // rtp payload的最大大小，不含rtp header
	IsAvc    bool   `json:"is_avc"`    // 输出文件中nalu前使用4字节长度（true）还是start code（false）
	Fps      int    `json:"fps"`       // 输入为h264裸流时，用于生成时间戳
	Ssrc     uint32 `json:"ssrc"`      // 为0时随机生成
	FirstSeq int    `json:"first_seq"` // 小于0时随机生成

	LogConfig nazalog.Option `json:"log"`
}

func LoadConf(confFile string) (*Config, error) {
	rawContent, err := ioutil.ReadFile(confFile)
	if err != nil {
		return nil, nazaerrors.Wrap(err)
	}
	return ParseConf(rawContent)
}

func ParseConf(rawContent []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(rawContent, &config); err != nil {
		return nil, nazaerrors.Wrap(err)
	}

	j, err := nazajson.New(rawContent)
	if err != nil {
		return nil, nazaerrors.Wrap(err)
	}

	// 配置不存在时，设置默认值
	if !j.Exist("mtu") {
		config.Mtu = 1200
	}
	if !j.Exist("fps") {
		config.Fps = 25
	}
	if !j.Exist("first_seq") {
		config.FirstSeq = -1
	}
	if !j.Exist("log.level") {
		config.LogConfig.Level = nazalog.LevelInfo
	}
	if !j.Exist("log.filename") {
		config.LogConfig.Filename = "./logs/rtph264.log"
	}
	if !j.Exist("log.is_to_stdout") {
		config.LogConfig.IsToStdout = true
	}
	if !j.Exist("log.is_rotate_daily") {
		config.LogConfig.IsRotateDaily = false
	}
	if !j.Exist("log.short_file_flag") {
		config.LogConfig.ShortFileFlag = true
	}
	if !j.Exist("log.assert_behavior") {
		config.LogConfig.AssertBehavior = nazalog.AssertError
	}

	// 检查配置必须项
	if config.Mtu <= 0 {
		return nil, fmt.Errorf("%w. mtu=%d", base.ErrConfig, config.Mtu)
	}
	if config.Fps <= 0 {
		return nil, fmt.Errorf("%w. fps=%d", base.ErrConfig, config.Fps)
	}
	if config.FirstSeq > 65535 {
		return nil, fmt.Errorf("%w. first_seq=%d", base.ErrConfig, config.FirstSeq)
	}

	return &config, nil
}
