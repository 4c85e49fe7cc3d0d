package core

import "errors"

var (
	// ErrNonMonotonicSequence 序列号没有严格递增
	ErrNonMonotonicSequence = errors.New("序列号必须严格递增")

	// ErrInvalidLatency 延迟值不是正的有限数
	ErrInvalidLatency = errors.New("延迟必须是正的有限数")

	// ErrSessionFinalized 会话已经结束
	ErrSessionFinalized = errors.New("会话已结束")

	// ErrInvalidProfile 难度配置不合法
	ErrInvalidProfile = errors.New("难度配置不合法")
)
