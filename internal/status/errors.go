package status

import "errors"

var (
	// ErrBreakExhausted 表示坐席试图在休息额度已耗尽时进入休息状态。
	// 调用方应拒绝本次切换并把UI上的状态选择器恢复为原状态。
	ErrBreakExhausted = errors.New("今日休息时间已用完，无法进入休息状态")

	// ErrInvalidStatus 表示请求中的状态不是五种已知状态之一。
	ErrInvalidStatus = errors.New("无效的工作状态")
)
