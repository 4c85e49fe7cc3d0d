// Package engine 配置定义
package engine

import (
	"errors"
	"io"
	"log"
)

// Config 地形流引擎的配置结构
type Config struct {
	// 滚动统计
	WindowSize       int     // 滚动窗口大小
	MinSeverityRange float64 // 归一化时的最小区间(ms)，避免样本几乎相同时除以近零

	// 片段生成
	BaseHeight         float64 // 基础峰高
	PeakWidth          float64 // 每个峰占用的宽度
	BaseGapWidth       float64 // 基础缺口宽度
	TimeoutPenaltyStep float64 // 每多一次连续超时增加的惩罚
	MaxTimeoutPenalty  float64 // 超时惩罚上限
	MaxMissingFill     int     // 单次序列号跳变最多补生成的缺口数量，只防御异常的大跳变
	Seed               int64   // 抖动种子

	// 前瞻缓冲区
	LowWatermark  float64 // 低水位（世界单位）
	HighWatermark float64 // 高水位（世界单位）
	HistoryLimit  int     // 已消费片段的保留上限

	Logger        *log.Logger                // 诊断日志
	OnStateChange func(from, to BufferState) // 缓冲区状态变化回调，可为nil
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		WindowSize:         20,   // 最近20个样本
		MinSeverityRange:   10.0, // 至少10ms的区间
		BaseHeight:         1.0,
		PeakWidth:          1.5,
		BaseGapWidth:       4.0,
		TimeoutPenaltyStep: 0.25,
		MaxTimeoutPenalty:  3.0,
		MaxMissingFill:     1 << 16, // 一整圈icmp_seq
		Seed:               0,
		LowWatermark:       12.0,
		HighWatermark:      96.0,
		HistoryLimit:       256,
		Logger:             log.New(io.Discard, "", 0),
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.WindowSize < 2 {
		return errors.New("滚动窗口大小不能小于2")
	}

	if c.MinSeverityRange <= 0 {
		return errors.New("最小归一化区间必须大于0")
	}

	if c.BaseHeight <= 0 {
		return errors.New("基础峰高必须大于0")
	}

	if c.PeakWidth <= 0 {
		return errors.New("峰宽必须大于0")
	}

	if c.BaseGapWidth <= 0 {
		return errors.New("基础缺口宽度必须大于0")
	}

	if c.TimeoutPenaltyStep < 0 {
		return errors.New("超时惩罚步长不能为负数")
	}

	if c.MaxTimeoutPenalty < 1.0 {
		return errors.New("超时惩罚上限不能小于1.0")
	}

	if c.MaxMissingFill < 0 {
		return errors.New("缺失补齐数量不能为负数")
	}

	if c.LowWatermark < 0 {
		return errors.New("低水位不能为负数")
	}

	if c.HighWatermark <= c.LowWatermark {
		return errors.New("高水位必须大于低水位")
	}

	if c.HistoryLimit <= 0 {
		return errors.New("历史保留上限必须大于0")
	}

	if c.Logger == nil {
		return errors.New("日志记录器不能为空")
	}

	return nil
}
