// Package tui 视口管理模块
package tui

// viewWindow 返回可见区域的世界坐标范围
// 玩家位于消费位置，左侧PlayerRatio是走过的地形，右侧是前瞻缓冲区
func (t *TUI) viewWindow() (start, end float64) {
	start = t.engine.Cursor() - t.tuiConfig.PlayerRatio*t.tuiConfig.ViewDistance
	end = start + t.tuiConfig.ViewDistance
	return start, end
}

// playerPosition 返回玩家的世界坐标
func (t *TUI) playerPosition() float64 {
	return t.engine.Cursor()
}

// worldToX 将世界坐标转换为X坐标
func worldToX(pos, windowStart, windowEnd float64, width int) int {
	span := windowEnd - windowStart
	if span <= 0 {
		return 0
	}

	offset := pos - windowStart
	if offset < 0 {
		return -1 // 在窗口左边界外
	}
	if offset > span {
		return width // 在窗口右边界外
	}

	return int(offset / span * float64(width))
}
