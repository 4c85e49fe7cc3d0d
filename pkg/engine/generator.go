package engine

import (
	"math"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// Generator 将单个探测事件映射为地形片段
// 除了连续超时计数外没有其他状态，相同的输入流总是得到相同的输出流
type Generator struct {
	config              *Config
	consecutiveTimeouts int
}

// NewGenerator 创建片段生成器
func NewGenerator(config *Config) *Generator {
	return &Generator{config: config}
}

// Generate 根据事件、严重度和难度配置生成地形片段
func (g *Generator) Generate(event core.ProbeEvent, severity float64, profile core.DifficultyProfile) core.TerrainSegment {
	if event.IsTimeout() {
		g.consecutiveTimeouts++
		return g.gap(event.Sequence, g.consecutiveTimeouts, profile)
	}

	g.consecutiveTimeouts = 0
	return g.cluster(event.Sequence, clamp01(severity), profile)
}

// SkipTimeouts 记录n次不生成片段的超时，仅推进连续超时计数
func (g *Generator) SkipTimeouts(n int) {
	if n > 0 {
		g.consecutiveTimeouts += n
	}
}

// Reset 清空连续超时计数
func (g *Generator) Reset() {
	g.consecutiveTimeouts = 0
}

// cluster 生成障碍簇
func (g *Generator) cluster(seq int64, severity float64, profile core.DifficultyProfile) core.TerrainSegment {
	peaks := PeakCount(severity, profile)
	base := g.config.BaseHeight * (1 + severity*profile.ObstacleScale)

	heights := make([]float64, peaks)
	for i := range heights {
		u := unitFloat(g.config.Seed, seq, i)
		jitter := 1 + (2*u-1)*profile.PeakVarianceFactor
		heights[i] = base * jitter
	}

	return core.TerrainSegment{
		Kind:     core.SegmentObstacle,
		Sequence: seq,
		Heights:  heights,
		Width:    float64(peaks) * g.config.PeakWidth,
		Severity: severity,
	}
}

// gap 生成缺口，宽度随连续超时次数增长并封顶
func (g *Generator) gap(seq int64, consecutive int, profile core.DifficultyProfile) core.TerrainSegment {
	penalty := TimeoutPenalty(consecutive, g.config.TimeoutPenaltyStep, g.config.MaxTimeoutPenalty)

	return core.TerrainSegment{
		Kind:     core.SegmentGap,
		Sequence: seq,
		Width:    g.config.BaseGapWidth * (1 + profile.GapScale*penalty),
		Severity: penalty / g.config.MaxTimeoutPenalty,
	}
}

// PeakCount 计算障碍簇的峰数，至少为1
func PeakCount(severity float64, profile core.DifficultyProfile) int {
	n := int(math.Round(1 + clamp01(severity)*profile.ClusterDensity))
	if n < 1 {
		return 1
	}
	return n
}

// TimeoutPenalty 计算第consecutive次连续超时的惩罚系数
// 从1开始线性增长，不超过max
func TimeoutPenalty(consecutive int, step, max float64) float64 {
	if consecutive < 1 {
		consecutive = 1
	}
	penalty := 1 + step*float64(consecutive-1)
	if penalty > max {
		return max
	}
	return penalty
}
