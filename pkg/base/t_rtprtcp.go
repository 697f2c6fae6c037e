// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

const (
	// RtpPacketTypeAvcOrHevc 注意，一般情况下，AVC使用96，但是我还遇到过AVC使用105
	RtpPacketTypeAvcOrHevc = 96

	// AvcClockRate h264固定使用90000
	AvcClockRate = 90000
)
