// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

// ----- rtprtcp --------------------
var (
	// LogDumpDebugMaxNum 日志级别为debug时，解包失败的rtp payload最多dump的次数
	LogDumpDebugMaxNum = 16

	// LogDumpMaxBytes dump时最多打印的字节数
	LogDumpMaxBytes = 64
)
