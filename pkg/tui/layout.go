// Package tui 布局管理模块
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	t.view.SetWordWrap(false)
	t.view.SetDynamicColors(true)
	t.view.SetText("[yellow]正在初始化，等待地形...[white]")

	t.status.SetDynamicColors(true)
	t.status.SetTextAlign(tview.AlignCenter)
	t.status.SetText(t.statusLine())

	// 创建主垂直布局
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)

	t.flex.AddItem(t.status, 1, 0, false)
	t.flex.AddItem(t.view, 0, 1, false)

	t.app.SetRoot(t.flex, true)
}

// statusLine 生成顶部状态行
func (t *TUI) statusLine() string {
	t.worldMu.RLock()
	defer t.worldMu.RUnlock()

	line := fmt.Sprintf("[green]PingRunner[white] - %s  速度 %.1f  距离 %.0f", t.engine.Target(), t.velocity, t.travelled)
	if t.paused {
		line += "  [yellow]已暂停[white]"
	}
	if t.sourceDone {
		line += "  [yellow]数据源已结束[white]"
	}
	return line + "  [gray](q退出 空格暂停 ↑↓调速)[white]"
}

// rebuildUI 重建UI布局
func (t *TUI) rebuildUI() {
	if t.testMode {
		return
	}

	summary := t.buildSummary(t.engine.Snapshot())

	t.flex.Clear()
	t.rowFlexes = t.rowFlexes[:0]

	t.status.SetText(t.statusLine())
	t.flex.AddItem(t.status, 1, 0, false)

	headerFlex := t.createHeaderRow(summaryOrder)
	t.flex.AddItem(headerFlex, 1, 0, false)
	t.rowFlexes = append(t.rowFlexes, headerFlex)

	rowFlex := t.createDataRow(t.engine.Target(), summary, summaryOrder)
	t.flex.AddItem(rowFlex, 1, 0, false)
	t.rowFlexes = append(t.rowFlexes, rowFlex)

	// 最后添加地形视图，占据所有剩余空间
	t.flex.AddItem(t.view, 0, 1, false)
}

// createHeaderRow 创建表头行
func (t *TUI) createHeaderRow(summaryKeys []string) *tview.Flex {
	headerFlex := tview.NewFlex()
	headerFlex.SetDirection(tview.FlexColumn)

	targetHeaderText := tview.NewTextView()
	targetHeaderText.SetText(fmt.Sprintf("[yellow]%-20s[white]", "目标"))
	targetHeaderText.SetDynamicColors(true)
	targetHeaderText.SetTextAlign(tview.AlignLeft)
	headerFlex.AddItem(targetHeaderText, 0, 2, false) // 给目标列更多空间

	for _, header := range summaryKeys {
		headerText := tview.NewTextView()
		headerText.SetText(fmt.Sprintf("[yellow]%8s[white]", header))
		headerText.SetDynamicColors(true)
		headerText.SetTextAlign(tview.AlignCenter)
		headerFlex.AddItem(headerText, 0, 1, false)
	}

	return headerFlex
}

// createDataRow 创建数据行
func (t *TUI) createDataRow(target string, summary map[string]string, summaryKeys []string) *tview.Flex {
	rowFlex := tview.NewFlex()
	rowFlex.SetDirection(tview.FlexColumn)

	targetText := tview.NewTextView()
	targetText.SetText(fmt.Sprintf("[green]%-20s[white]", target))
	targetText.SetDynamicColors(true)
	targetText.SetTextAlign(tview.AlignLeft)
	rowFlex.AddItem(targetText, 0, 2, false)

	// 严格按照summaryKeys顺序填充数据
	for _, key := range summaryKeys {
		value := "N/A"
		if val, exists := summary[key]; exists && val != "" {
			value = val
		}

		dataText := tview.NewTextView()
		dataText.SetText(fmt.Sprintf("%8s", value))
		dataText.SetTextAlign(tview.AlignCenter)
		dataText.SetTextColor(tcell.ColorWhite)
		rowFlex.AddItem(dataText, 0, 1, false)
	}

	return rowFlex
}

// updateView 更新地形显示
func (t *TUI) updateView() {
	if t.testMode || t.view == nil {
		return
	}

	// 获取视图的实际可绘制尺寸
	_, _, width, height := t.view.GetInnerRect()

	// 确保有合理的最小尺寸
	if width < 20 {
		width = 80
	}
	if height < 10 {
		height = 15
	}

	start, end := t.viewWindow()
	t.view.SetText(t.renderTerrain(t.visibleTerrain(), start, end, t.playerPosition(), width, height))
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
