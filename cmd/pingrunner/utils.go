package main

import (
	"fmt"
	"io"
	"math"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"github.com/Kevin-Rudy/pingrunner/pkg/pinger"
)

// 程序信息常量
const (
	AppName    = "pingrunner"
	AppVersion = "0.1.0"
	AppDesc    = "把网络延迟变成跑酷地形的终端游戏"
)

// showSystemInfo 显示系统环境和配置信息
func showSystemInfo() {
	osName, privilege, impl := pinger.GetSystemInfo()
	fmt.Println("\n系统信息:")
	fmt.Printf("  操作系统: %s\n", osName)
	fmt.Printf("  权限状态: %s\n", privilege)
	fmt.Printf("  实现方式: %s\n", impl)
}

// printUsageInstructions 显示TUI操作说明
func printUsageInstructions() {
	fmt.Println("操作说明:")
	fmt.Println("  ↑/↓ 方向键  - 加速/减速")
	fmt.Println("  空格 或 p   - 暂停/继续")
	fmt.Println("  q 或 Ctrl+C - 退出程序")
	fmt.Println("========================================")
}

// printSummary 以ping的格式输出会话统计
func printSummary(w io.Writer, stats core.SessionStats) {
	target := stats.Target
	if target == "" {
		target = "unknown"
	}

	fmt.Fprintf(w, "\n--- %s ping statistics ---\n", target)
	fmt.Fprintf(w, "%d packets transmitted, %d received, %.1f%% packet loss\n",
		stats.PacketsSent, stats.PacketsReceived, stats.PacketLoss)

	if stats.PacketsReceived > 0 && !math.IsNaN(stats.AvgLatency) {
		fmt.Fprintf(w, "round-trip min/avg/max/stddev = %.3f/%.3f/%.3f/%.3f ms\n",
			stats.MinLatency, stats.AvgLatency, stats.MaxLatency, stats.StdDev)
	}
}
