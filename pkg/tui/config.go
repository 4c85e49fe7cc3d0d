// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval  time.Duration // UI刷新间隔
	TickInterval     time.Duration // 游戏循环步进间隔
	Velocity         float64       // 奔跑速度，世界单位每秒
	LevelDistance    float64       // 每前进这么远升一级，0表示不升级
	ViewDistance     float64       // 屏幕可见的世界宽度
	PlayerRatio      float64       // 玩家在可见区域中的水平位置比例
	MinViewWidth     int           // 最小地形视图宽度
	MinViewHeight    int           // 最小地形视图高度
	MaxViewSize      int           // 最大视图尺寸（防止极端值）
	ValueBufferRatio float64       // 高度缓冲比例
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:  100 * time.Millisecond, // 默认100ms刷新
		TickInterval:     50 * time.Millisecond,  // 默认每秒20步
		Velocity:         24,                     // 与默认探测节奏大致持平
		LevelDistance:    500,                    // 每500单位升一级
		ViewDistance:     80,                     // 可见80单位
		PlayerRatio:      0.25,                   // 玩家位于左侧四分之一处
		MinViewWidth:     20,                     // 最小视图宽度
		MinViewHeight:    5,                      // 最小视图高度
		MaxViewSize:      1000,                   // 最大视图尺寸
		ValueBufferRatio: 0.1,                    // 10%缓冲
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.TickInterval <= 0 {
		return errors.New("游戏步进间隔必须大于0")
	}

	if c.Velocity <= 0 {
		return errors.New("奔跑速度必须大于0")
	}

	if c.Velocity > 1000 {
		return errors.New("奔跑速度不能超过1000")
	}

	if c.LevelDistance < 0 {
		return errors.New("升级距离不能为负数")
	}

	if c.ViewDistance <= 0 {
		return errors.New("可见宽度必须大于0")
	}

	if c.PlayerRatio < 0 || c.PlayerRatio >= 1 {
		return errors.New("玩家位置比例必须在[0,1)之间")
	}

	if c.MinViewWidth <= 0 {
		return errors.New("最小视图宽度必须大于0")
	}

	if c.MinViewHeight <= 0 {
		return errors.New("最小视图高度必须大于0")
	}

	if c.MaxViewSize <= 0 {
		return errors.New("最大视图尺寸必须大于0")
	}

	if c.ValueBufferRatio < 0 {
		return errors.New("高度缓冲比例不能为负数")
	}

	return nil
}
