// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

// LalVersion 整个工程的版本号。注意，该变量由外部脚本修改维护，不要手动在代码中修改
//
const LalVersion = "v0.1.0"

var (
	LalLibraryName = "rtph264"
	LalGithubRepo  = "github.com/q191201771/rtph264"

	// LalFullInfo e.g. rtph264 v0.1.0 (github.com/q191201771/rtph264)
	LalFullInfo = LalLibraryName + " " + LalVersion + " (" + LalGithubRepo + ")"
)
