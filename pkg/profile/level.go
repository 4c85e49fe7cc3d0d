// Package profile 提供难度配置的具体实现
// 关卡表和环境变量覆盖都实现core.ProfileProvider接口
package profile

import (
	"errors"
	"sync"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// ErrNoLevels 关卡表为空
var ErrNoLevels = errors.New("关卡表为空")

// LevelProvider 按关卡返回难度配置
// 超过关卡表长度后停留在最后一关
type LevelProvider struct {
	mu     sync.RWMutex
	levels []core.DifficultyProfile
	level  int
}

// NewLevelProvider 创建关卡难度提供者
func NewLevelProvider(levels ...core.DifficultyProfile) *LevelProvider {
	return &LevelProvider{
		levels: append([]core.DifficultyProfile(nil), levels...),
	}
}

// DefaultLevels 返回内置的关卡难度曲线，第一关即默认难度
func DefaultLevels() []core.DifficultyProfile {
	base := core.DefaultProfile()
	levels := make([]core.DifficultyProfile, 0, 6)
	for i := 0; i < 6; i++ {
		p := base
		p.ObstacleScale = base.ObstacleScale + 0.5*float64(i)
		p.GapScale = base.GapScale + 0.1*float64(i)
		p.ClusterDensity = base.ClusterDensity + float64(i)
		p.PeakVarianceFactor = base.PeakVarianceFactor + 0.05*float64(i)
		levels = append(levels, p)
	}
	return levels
}

// CurrentProfile 实现core.ProfileProvider接口
func (l *LevelProvider) CurrentProfile() (core.DifficultyProfile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.levels) == 0 {
		return core.DifficultyProfile{}, ErrNoLevels
	}

	idx := l.level
	if idx >= len(l.levels) {
		idx = len(l.levels) - 1
	}
	return l.levels[idx], nil
}

// Level 返回当前关卡，从0开始
func (l *LevelProvider) Level() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel 设置当前关卡，负数按0处理
func (l *LevelProvider) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Next 进入下一关并返回新的关卡
func (l *LevelProvider) Next() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level++
	return l.level
}
