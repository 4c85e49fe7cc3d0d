package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"github.com/Kevin-Rudy/pingrunner/pkg/engine"
	"github.com/Kevin-Rudy/pingrunner/pkg/profile"
)

// maxHeadlessTicks 防止速度过低时无限输出
const maxHeadlessTicks = 1_000_000

// headless 无界面的回放循环，使用模拟时钟，输出可重复
type headless struct {
	out           io.Writer
	engine        *engine.Engine
	levels        *profile.LevelProvider // 可以为nil
	interval      time.Duration          // 相邻序列号之间的到达间隔
	tick          time.Duration
	velocity      float64
	levelDistance float64
}

// run 按序列号推算到达时间，逐拍注入事件并消费地形，最后输出统计
func (h *headless) run(events []core.ProbeEvent) core.SessionStats {
	fmt.Fprintf(h.out, "PINGRUNNER %s: %d probes, tick %v, velocity %.1f\n",
		h.engine.Target(), len(events), h.tick, h.velocity)

	var first int64
	if len(events) > 0 {
		first = events[0].Sequence
	}

	levelBase := 0
	if h.levels != nil {
		levelBase = h.levels.Level()
	}

	step := h.velocity * h.tick.Seconds()
	travelled := 0.0
	next := 0
	var clock time.Duration

	for n := 1; n <= maxHeadlessTicks; n++ {
		clock += h.tick

		// 注入到达时间不晚于当前时钟的事件
		for next < len(events) && time.Duration(events[next].Sequence-first)*h.interval < clock {
			_ = h.engine.OnProbeEvent(events[next])
			next++
		}

		pieces := h.engine.Consume(step)
		travelled += step

		fmt.Fprintf(h.out, "%5d %8.1f %-8s %6.1f  %s\n",
			n, h.engine.Cursor(), h.engine.State(), h.engine.Backlog(), describePieces(pieces))

		if h.levels != nil && h.levelDistance > 0 {
			for h.levels.Level() < levelBase+int(travelled/h.levelDistance) {
				level := h.levels.Next()
				h.engine.RefreshProfile()
				fmt.Fprintf(h.out, "----- level %d -----\n", level+1)
			}
		}

		if next == len(events) && h.engine.Backlog() < 1e-9 {
			break
		}
	}

	stats := h.engine.Finalize()
	printSummary(h.out, stats)
	return stats
}

// describePieces 把一拍消费的地形写成紧凑文本
// ^N 为N个峰的障碍，_ 为缺口，. 为填充
func describePieces(pieces []core.TerrainSegment) string {
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		var tag string
		switch p.Kind {
		case core.SegmentObstacle:
			tag = fmt.Sprintf("^%d", len(p.Heights))
		case core.SegmentGap:
			tag = "_"
		default:
			tag = "."
		}
		parts = append(parts, fmt.Sprintf("%s:%.2f", tag, p.Width))
	}
	return strings.Join(parts, " ")
}
