// Package tui 交互控制模块
package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// 调速事件频率控制 - 包级私有变量
var (
	speedEventCounter   int                       // 事件计数器
	speedEventThreshold = 5                       // 5次事件后休息
	speedRestDuration   = 100 * time.Millisecond // 休息100ms
	isSpeedResting      bool                      // 是否在休息状态
	lastSpeedEventTime  time.Time                 // 最后一次事件时间
)

// speedStep 每次按键的调速比例
const speedStep = 1.1

// shouldHandleSpeedEvent 判断是否应该处理调速事件
func shouldHandleSpeedEvent() bool {
	now := time.Now()

	// 如果正在休息中，检查是否休息够了
	if isSpeedResting {
		if now.Sub(lastSpeedEventTime) >= speedRestDuration {
			isSpeedResting = false
			speedEventCounter = 0
			return true
		}
		// 还在休息，忽略事件
		return false
	}

	return true
}

// recordSpeedEvent 记录调速事件
func recordSpeedEvent() {
	speedEventCounter++
	lastSpeedEventTime = time.Now()

	if speedEventCounter >= speedEventThreshold {
		isSpeedResting = true
	}
}

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				t.Stop()
				return nil
			case ' ', 'p', 'P':
				t.togglePause()
				return nil
			}
		case tcell.KeyUp:
			if shouldHandleSpeedEvent() {
				t.adjustVelocity(speedStep)
				recordSpeedEvent()
			}
			return nil
		case tcell.KeyDown:
			if shouldHandleSpeedEvent() {
				t.adjustVelocity(1 / speedStep)
				recordSpeedEvent()
			}
			return nil
		}
		return event
	})
}
