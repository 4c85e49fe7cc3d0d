// Package tui 游戏循环数据处理模块
package tui

import (
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// advance 按经过的时间推进玩家位置
func (t *TUI) advance(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}

	t.worldMu.RLock()
	paused := t.paused
	velocity := t.velocity
	t.worldMu.RUnlock()
	if paused {
		return
	}

	t.step(velocity * elapsed.Seconds())
}

// step 消费一段距离的地形并更新世界状态
func (t *TUI) step(distance float64) {
	pieces := t.engine.Consume(distance)
	if len(pieces) == 0 {
		return
	}

	t.worldMu.Lock()
	t.world = append(t.world, pieces...)
	t.travelled += distance
	t.trimWorld()
	travelled := t.travelled
	t.worldMu.Unlock()

	t.checkLevelUp(travelled)
}

// trimWorld 移除已离开可见范围的地形，调用方持有worldMu
func (t *TUI) trimWorld() {
	start, _ := t.viewWindow()

	drop := 0
	for drop < len(t.world) && t.world[drop].End() <= start {
		drop++
	}
	if drop > 0 {
		t.world = append([]core.TerrainSegment(nil), t.world[drop:]...)
	}
}

// checkLevelUp 每前进LevelDistance升一级并刷新难度
func (t *TUI) checkLevelUp(travelled float64) {
	if t.levels == nil || t.tuiConfig.LevelDistance <= 0 {
		return
	}

	target := t.levelBase + int(travelled/t.tuiConfig.LevelDistance)
	for t.levels.Level() < target {
		level := t.levels.Next()
		p := t.engine.RefreshProfile()
		t.logger.Printf("升级到第%d关: 障碍系数=%.2f 缺口系数=%.2f 密度=%.1f", level+1, p.ObstacleScale, p.GapScale, p.ClusterDensity)
	}
}

// adjustVelocity 按比例调整奔跑速度
func (t *TUI) adjustVelocity(factor float64) {
	t.worldMu.Lock()
	defer t.worldMu.Unlock()

	v := t.velocity * factor
	if v < 1 {
		v = 1
	}
	if v > 1000 {
		v = 1000
	}
	t.velocity = v
}

// togglePause 暂停或继续奔跑
func (t *TUI) togglePause() {
	t.worldMu.Lock()
	t.paused = !t.paused
	t.worldMu.Unlock()
}

// visibleTerrain 返回走过的地形和玩家前方的前瞻地形
func (t *TUI) visibleTerrain() []core.TerrainSegment {
	t.worldMu.RLock()
	visible := append([]core.TerrainSegment(nil), t.world...)
	t.worldMu.RUnlock()

	_, end := t.viewWindow()
	return append(visible, t.engine.Lookahead(end-t.engine.Cursor())...)
}
