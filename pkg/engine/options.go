// Package engine 选项模式支持
package engine

import (
	"log"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithWindowSize 设置滚动窗口大小
func WithWindowSize(size int) Option {
	return func(c *Config) {
		c.WindowSize = size
	}
}

// WithMinSeverityRange 设置最小归一化区间
func WithMinSeverityRange(rangeMs float64) Option {
	return func(c *Config) {
		c.MinSeverityRange = rangeMs
	}
}

// WithWatermarks 设置缓冲区高低水位
func WithWatermarks(low, high float64) Option {
	return func(c *Config) {
		c.LowWatermark = low
		c.HighWatermark = high
	}
}

// WithHistoryLimit 设置已消费片段的保留上限
func WithHistoryLimit(limit int) Option {
	return func(c *Config) {
		c.HistoryLimit = limit
	}
}

// WithSeed 设置抖动种子
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithTimeoutPenalty 设置超时惩罚步长和上限
func WithTimeoutPenalty(step, max float64) Option {
	return func(c *Config) {
		c.TimeoutPenaltyStep = step
		c.MaxTimeoutPenalty = max
	}
}

// WithMaxMissingFill 设置单次序列号跳变最多补生成的缺口数量
func WithMaxMissingFill(n int) Option {
	return func(c *Config) {
		c.MaxMissingFill = n
	}
}

// WithLogger 设置诊断日志
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStateObserver 设置缓冲区状态变化回调
func WithStateObserver(fn func(from, to BufferState)) Option {
	return func(c *Config) {
		c.OnStateChange = fn
	}
}

// NewConfigWithOptions 使用选项模式创建引擎配置
func NewConfigWithOptions(opts ...Option) *Config {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return config
}
