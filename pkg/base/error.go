// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrShortBuffer = errors.New("lal: buffer too short")
)

// ----- pkg/avc -------------------------------------------------------------------------------------------------------

var ErrAvc = errors.New("lal.avc: fxxk")

// ----- pkg/rtprtcp ---------------------------------------------------------------------------------------------------

var (
	ErrRtpRtcpShortBuffer = errors.New("lal.rtprtcp: buffer too short")
	ErrRtp                = errors.New("lal.rtprtcp: invalid rtp packet")
	ErrStapaUnitTooLarge  = errors.New("lal.rtprtcp: stap-a unit size larger than buffer")
	ErrNaluTypeNotHandled = errors.New("lal.rtprtcp: nalu type not handled")
)

func NewErrRtpRtcpShortBuffer(need, actual int) error {
	return fmt.Errorf("%w. need=%d, actual=%d", ErrRtpRtcpShortBuffer, need, actual)
}

// StapaUnitTooLargeError STAP-A中某个nalu声明的长度超过了剩余的字节数
type StapaUnitTooLargeError struct {
	Declared  int
	Available int
}

func (e *StapaUnitTooLargeError) Error() string {
	return fmt.Sprintf("%s. declared=%d, available=%d", ErrStapaUnitTooLarge.Error(), e.Declared, e.Available)
}

func (e *StapaUnitTooLargeError) Unwrap() error {
	return ErrStapaUnitTooLarge
}

// NaluTypeNotHandledError 解包时遇到不支持的nalu type，包含FU-B(29)
type NaluTypeNotHandledError struct {
	Type uint8
}

func (e *NaluTypeNotHandledError) Error() string {
	return fmt.Sprintf("%s. type=%d", ErrNaluTypeNotHandled.Error(), e.Type)
}

func (e *NaluTypeNotHandledError) Unwrap() error {
	return ErrNaluTypeNotHandled
}

// ----- app -----------------------------------------------------------------------------------------------------------

var (
	ErrConfig = errors.New("lal.app: invalid config")
)

// ---------------------------------------------------------------------------------------------------------------------
