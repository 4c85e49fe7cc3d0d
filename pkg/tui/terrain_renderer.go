// Package tui 地形渲染模块
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// brailleCell 定义盲文字符的cell结构
type brailleCell struct {
	char  int
	color string
}

// brailleDotMap 盲文点阵的映射关系 (2x4 grid)
var brailleDotMap = [4][2]int{
	{0b00000001, 0b00001000}, // (y:0, x:0), (y:0, x:1)
	{0b00000010, 0b00010000}, // (y:1, x:0), (y:1, x:1)
	{0b00000100, 0b00100000}, // (y:2, x:0), (y:2, x:1)
	{0b01000000, 0b10000000}, // (y:3, x:0), (y:3, x:1)
}

// validateViewSize 验证视图尺寸是否合理
func (t *TUI) validateViewSize(width, height int) string {
	if height < t.tuiConfig.MinViewHeight || width < t.tuiConfig.MinViewWidth {
		return "终端尺寸过小"
	}
	if width > t.tuiConfig.MaxViewSize || height > t.tuiConfig.MaxViewSize {
		return "终端尺寸过大"
	}
	return ""
}

// calculateHeightRange 计算可见地形的最大高度
func (t *TUI) calculateHeightRange(segments []core.TerrainSegment) float64 {
	maxVal := 0.0
	for _, seg := range segments {
		for _, h := range seg.Heights {
			if !math.IsNaN(h) && !math.IsInf(h, 0) && h > maxVal {
				maxVal = h
			}
		}
	}

	if maxVal <= 0 {
		maxVal = 1
	}
	return maxVal + maxVal*t.tuiConfig.ValueBufferRatio
}

// renderTerrain 把可见地形绘制为盲文图
func (t *TUI) renderTerrain(segments []core.TerrainSegment, windowStart, windowEnd, player float64, width, height int) string {
	if sizeErr := t.validateViewSize(width, height); sizeErr != "" {
		return sizeErr
	}

	if len(segments) == 0 {
		return "[yellow]等待地形...[white]"
	}

	maxVal := t.calculateHeightRange(segments)

	// 动态计算Y轴标签宽度
	topLabel := formatHeight(maxVal)
	yAxisLabelWidth := len(topLabel) + 2 // +2 为│分隔符和右侧空格留出缓冲

	// 准备画布尺寸
	bodyHeight := height - 2 // 为X轴和坐标留出2行空间
	viewWidth := width - yAxisLabelWidth
	if bodyHeight <= 0 || viewWidth <= 0 {
		return "可绘制区域过小"
	}

	canvas := make([][]brailleCell, viewWidth)
	for i := range canvas {
		canvas[i] = make([]brailleCell, bodyHeight)
	}

	subWidth := viewWidth * 2
	subHeight := bodyHeight * 4
	ground := subHeight - 1
	span := windowEnd - windowStart

	// 高分辨率坐标，允许超出画布，由画线时裁剪
	toX := func(pos float64) int {
		return int(math.Floor((pos - windowStart) / span * float64(subWidth)))
	}
	toY := func(h float64) int {
		y := ground - int(h/maxVal*float64(subHeight-1))
		if y < 0 {
			y = 0
		}
		return y
	}

	for _, seg := range segments {
		if seg.End() <= windowStart || seg.Position >= windowEnd {
			continue
		}

		xs, xe := toX(seg.Position), toX(seg.End())-1
		if xe < xs {
			xe = xs
		}

		switch seg.Kind {
		case core.SegmentGap:
			// 缺口没有地面

		case core.SegmentFiller:
			drawBrailleLine(canvas, xs, ground, xe, ground, subHeight, subWidth, "[gray]")

		case core.SegmentObstacle:
			drawBrailleLine(canvas, xs, ground, xe, ground, subHeight, subWidth, "[white]")

			color := severityColor(seg.Severity)
			n := len(seg.Heights)
			for i, h := range seg.Heights {
				x0 := xs + (xe-xs)*i/n
				x1 := xs + (xe-xs)*(i+1)/n
				xc := (x0 + x1) / 2
				apex := toY(h)
				drawBrailleLine(canvas, x0, ground, xc, apex, subHeight, subWidth, color)
				drawBrailleLine(canvas, xc, apex, x1, ground, subHeight, subWidth, color)
			}
		}
	}

	// 玩家站在所在列最高点的上一行，落在缺口里则贴底
	playerCol := worldToX(player, windowStart, windowEnd, viewWidth)
	playerRow := -1
	if playerCol >= 0 && playerCol < viewWidth {
		playerRow = bodyHeight - 1
		for row := 0; row < bodyHeight; row++ {
			if canvas[playerCol][row].char != 0 {
				playerRow = row - 1
				break
			}
		}
		if playerRow < 0 {
			playerRow = 0
		}
	}

	// 预先计算所有Y轴标签及其对应的行号
	yAxisLabelCount := 3
	if bodyHeight < yAxisLabelCount {
		yAxisLabelCount = bodyHeight
	}
	yAxisLabels := make(map[int]string)
	if yAxisLabelCount > 1 {
		for i := 0; i < yAxisLabelCount; i++ {
			normalized := float64(i) / float64(yAxisLabelCount-1)
			row := int(normalized * float64(bodyHeight-1))
			yAxisLabels[row] = formatHeight(maxVal * (1 - normalized))
		}
	}

	var b strings.Builder
	for i := 0; i < bodyHeight; i++ {
		fmt.Fprintf(&b, "[gray]%*s[white] [gray]│[white]", yAxisLabelWidth-2, yAxisLabels[i])

		for j := 0; j < viewWidth; j++ {
			if j == playerCol && i == playerRow {
				b.WriteString("[white::b]@[-:-:-]")
				continue
			}
			cell := canvas[j][i]
			if cell.char == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(cell.color + string(rune(0x2800+cell.char)) + "[white]")
			}
		}
		b.WriteByte('\n')
	}

	// 绘制X轴
	xAxisLine := fmt.Sprintf("%-*s└%s", yAxisLabelWidth-1, "", strings.Repeat("─", viewWidth))
	b.WriteString("[gray]" + xAxisLine + "[white]\n")

	// X轴坐标，显示可见区域的世界位置
	startStr := fmt.Sprintf("%.0f", math.Max(windowStart, 0))
	endStr := fmt.Sprintf("%.0f", windowEnd)
	spaceCount := viewWidth - len(startStr) - len(endStr)
	if spaceCount < 1 {
		spaceCount = 1
	}
	b.WriteString(fmt.Sprintf("[gray]%-*s%s%*s%s[white]", yAxisLabelWidth, "", startStr, spaceCount, "", endStr))

	return b.String()
}

// drawBrailleLine 使用布雷森汉姆算法在盲文画布上绘制线段
func drawBrailleLine(canvas [][]brailleCell, x1, y1, x2, y2, maxHeight, maxWidth int, color string) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		if y >= 0 && y < maxHeight && x >= 0 && x < maxWidth {
			// 每个盲文字符覆盖2x4个子像素
			canvasX := x / 2
			canvasY := y / 4
			canvas[canvasX][canvasY].char |= brailleDotMap[y%4][x%2]
			canvas[canvasX][canvasY].color = color
		}

		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}
