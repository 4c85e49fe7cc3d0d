// Package tui 工具函数和辅助类型
package tui

import (
	"fmt"
	"math"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// summaryOrder 统计行的列顺序
var summaryOrder = []string{"发送/接收", "丢包率", "平均延迟", "最小延迟", "最大延迟", "抖动", "关卡", "缓冲"}

// formatLatency 提供自适应的延迟格式化
func formatLatency(latency float64) string {
	if math.IsNaN(latency) {
		return "N/A"
	}

	if latency < 1.0 {
		// 小于1ms，显示为微秒
		return fmt.Sprintf("%.0fµs", latency*1000)
	} else if latency < 1000.0 {
		// 1ms到1000ms之间，显示为毫秒
		return fmt.Sprintf("%.1fms", latency)
	} else {
		// 大于等于1000ms，显示为秒
		return fmt.Sprintf("%.2fs", latency/1000)
	}
}

// formatHeight 格式化地形高度
func formatHeight(h float64) string {
	return fmt.Sprintf("%.1f", h)
}

// severityColor 根据严重度返回颜色
func severityColor(severity float64) string {
	switch {
	case severity >= 0.75:
		return "[red]"
	case severity >= 0.5:
		return "[orange]"
	case severity >= 0.25:
		return "[yellow]"
	default:
		return "[green]"
	}
}

// abs 返回整数的绝对值
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// buildSummary 生成统计行的各列内容
func (t *TUI) buildSummary(stats core.SessionStats) map[string]string {
	summary := map[string]string{
		"发送/接收": fmt.Sprintf("%d/%d", stats.PacketsSent, stats.PacketsReceived),
		"丢包率":   fmt.Sprintf("%.1f%%", stats.PacketLoss),
		"平均延迟":  formatLatency(stats.AvgLatency),
		"最小延迟":  formatLatency(stats.MinLatency),
		"最大延迟":  formatLatency(stats.MaxLatency),
		"抖动":    formatLatency(stats.StdDev),
		"关卡":    "-",
		"缓冲":    fmt.Sprintf("%s %.0f", t.engine.State(), t.engine.Backlog()),
	}
	if t.levels != nil {
		summary["关卡"] = fmt.Sprintf("%d", t.levels.Level()+1)
	}
	return summary
}
