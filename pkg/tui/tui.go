// Package tui 提供无尽跑酷风格的终端界面
// 地形由探测事件生成，按游戏节拍从引擎中消费并滚动显示
package tui

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"github.com/Kevin-Rudy/pingrunner/pkg/engine"
	"github.com/Kevin-Rudy/pingrunner/pkg/profile"
	"github.com/rivo/tview"
)

// TUI 主界面结构
type TUI struct {
	app       *tview.Application
	rowFlexes []*tview.Flex
	view      *tview.TextView
	status    *tview.TextView
	flex      *tview.Flex

	engine     *engine.Engine
	dataSource core.DataSource
	levels     *profile.LevelProvider
	logger     *log.Logger

	// 配置信息
	tuiConfig *Config

	// 世界状态
	world      []core.TerrainSegment // 可见范围内已消费的地形
	travelled  float64               // 累计前进距离
	levelBase  int                   // 启动时的关卡
	velocity   float64               // 当前速度，可通过方向键调整
	paused     bool
	sourceDone bool // 数据源已结束
	worldMu    sync.RWMutex

	// 控制
	ctx      context.Context
	cancel   context.CancelFunc
	runErr   chan error
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
	final    core.SessionStats

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
// levels为nil时不升级；logger为nil时丢弃日志
func NewTUI(eng *engine.Engine, dataSource core.DataSource, levels *profile.LevelProvider, tuiConfig *Config, logger *log.Logger) *TUI {
	t := newTUI(eng, dataSource, levels, tuiConfig, logger)
	t.view = tview.NewTextView()
	t.status = tview.NewTextView()

	t.setupUI()
	t.setupKeyBindings()

	return t
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(eng *engine.Engine, dataSource core.DataSource, levels *profile.LevelProvider, tuiConfig *Config, logger *log.Logger) *TUI {
	t := newTUI(eng, dataSource, levels, tuiConfig, logger)
	t.testMode = true
	return t
}

func newTUI(eng *engine.Engine, dataSource core.DataSource, levels *profile.LevelProvider, tuiConfig *Config, logger *log.Logger) *TUI {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())

	levelBase := 0
	if levels != nil {
		levelBase = levels.Level()
	}

	return &TUI{
		app:        tview.NewApplication(),
		engine:     eng,
		dataSource: dataSource,
		levels:     levels,
		logger:     logger,
		tuiConfig:  tuiConfig,
		velocity:   tuiConfig.Velocity,
		levelBase:  levelBase,
		ctx:        ctx,
		cancel:     cancel,
		runErr:     make(chan error, 1),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Run 启动TUI界面，返回时会话已经结束
func (t *TUI) Run() error {
	t.start()

	// 运行应用
	err := t.app.Run()

	// 确保清理工作完成
	t.Stop()
	<-t.doneChan

	return err
}

// start 启动数据源、到达侧任务和游戏循环
func (t *TUI) start() {
	t.dataSource.Start()

	go func() {
		t.runErr <- t.engine.Run(t.ctx, t.dataSource)
	}()

	go t.processData()
}

// Stop 停止TUI界面并结束会话
func (t *TUI) Stop() {
	t.stopOnce.Do(func() {
		// 先发送停止信号，让processData退出
		close(t.stopChan)
		t.cancel()

		// 停止数据源
		t.dataSource.Stop()

		t.worldMu.Lock()
		t.final = t.engine.Finalize()
		t.worldMu.Unlock()

		if !t.testMode {
			t.app.Stop()
		}
	})
}

// Summary 返回结束时的会话统计，在Stop之前调用返回当前快照
func (t *TUI) Summary() core.SessionStats {
	t.worldMu.RLock()
	defer t.worldMu.RUnlock()
	if t.final.Finalized {
		return t.final
	}
	return t.engine.Snapshot()
}

// processData 游戏循环，按固定节拍消费地形并刷新界面
func (t *TUI) processData() {
	defer close(t.doneChan)

	tickTicker := time.NewTicker(t.tuiConfig.TickInterval)
	defer tickTicker.Stop()

	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	// 初始UI刷新
	t.forceInitialDraw()

	last := time.Now()
	for {
		select {
		case now := <-tickTicker.C:
			t.advance(now.Sub(last))
			last = now

		case err := <-t.runErr:
			t.handleSourceDone(err)

		case <-uiTicker.C:
			t.handleUIRefresh()

		case <-t.stopChan:
			return
		}
	}
}

// handleSourceDone 数据源结束后继续奔跑，后续地形由填充补齐
func (t *TUI) handleSourceDone(err error) {
	t.worldMu.Lock()
	t.sourceDone = true
	t.worldMu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		t.logger.Printf("探测任务结束: %v", err)
		return
	}
	t.logger.Printf("数据源已结束")
}

// forceInitialDraw 强制初始绘制
func (t *TUI) forceInitialDraw() {
	if !t.testMode && t.app != nil {
		t.app.QueueUpdateDraw(func() {
			// 强制初始绘制
		})
	}
}

// handleUIRefresh 处理UI刷新
func (t *TUI) handleUIRefresh() {
	if !t.testMode && t.app != nil {
		t.safeUIUpdate(func() {
			t.rebuildUI()
			t.updateView()
		})
	}
}
