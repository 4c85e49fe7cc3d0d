// Package tui 选项模式支持
package tui

import (
	"time"
)

// Option TUI配置选项函数类型
type Option func(*Config)

// WithRefreshInterval 设置UI刷新间隔
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = interval
	}
}

// WithTickInterval 设置游戏步进间隔
func WithTickInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.TickInterval = interval
	}
}

// WithVelocity 设置奔跑速度
func WithVelocity(velocity float64) Option {
	return func(c *Config) {
		c.Velocity = velocity
	}
}

// WithLevelDistance 设置升级距离
func WithLevelDistance(distance float64) Option {
	return func(c *Config) {
		c.LevelDistance = distance
	}
}

// WithViewDistance 设置可见宽度
func WithViewDistance(distance float64) Option {
	return func(c *Config) {
		c.ViewDistance = distance
	}
}

// WithViewSize 设置视图最小尺寸
func WithViewSize(width, height int) Option {
	return func(c *Config) {
		c.MinViewWidth = width
		c.MinViewHeight = height
	}
}

// WithValueBufferRatio 设置高度缓冲比例
func WithValueBufferRatio(ratio float64) Option {
	return func(c *Config) {
		c.ValueBufferRatio = ratio
	}
}

// NewConfigWithOptions 使用选项模式创建TUI配置
func NewConfigWithOptions(opts ...Option) *Config {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return config
}
