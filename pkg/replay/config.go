package replay

import (
	"errors"
	"time"
)

// Config 回放数据源的配置结构
type Config struct {
	Interval   time.Duration // 事件之间的间隔，0表示不等待
	BufferSize int           // 数据通道缓冲区大小
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Interval:   0,
		BufferSize: 100,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return errors.New("回放间隔不能为负数")
	}

	if c.BufferSize <= 0 {
		return errors.New("缓冲区大小必须大于0")
	}

	return nil
}

// Option 配置选项函数类型
type Option func(*Config)

// WithInterval 设置回放间隔
func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.Interval = interval
	}
}

// WithBufferSize 设置缓冲区大小
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// NewSourceWithOptions 使用选项模式创建回放数据源
func NewSourceWithOptions(t *Transcript, opts ...Option) (*Source, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return NewSource(t, config)
}
