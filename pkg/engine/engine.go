// Package engine 实现了由探测遥测驱动的地形流引擎
// 负责把不规则到达的探测事件转换为按固定速度消费的地形片段
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// Engine 串联滚动统计、片段生成、前瞻缓冲区和会话统计
// OnProbeEvent由到达侧调用，Consume由游戏循环调用，两者可以并发
type Engine struct {
	config   *Config
	target   string
	provider core.ProfileProvider

	profile   core.DifficultyProfile
	profileMu sync.RWMutex

	tracker   *RollingStats
	generator *Generator
	buffer    *LookaheadBuffer
	session   *SessionAggregator

	// 到达侧状态
	lastSeq int64
	seen    bool

	rejected atomic.Int64 // 被丢弃的畸形事件数
}

// New 创建新的引擎实例，每个会话使用一个独立的实例
func New(target string, provider core.ProfileProvider, opts ...Option) (*Engine, error) {
	config := NewConfigWithOptions(opts...)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:    config,
		target:    target,
		provider:  provider,
		tracker:   NewRollingStats(config.WindowSize, config.MinSeverityRange),
		generator: NewGenerator(config),
		buffer:    NewLookaheadBuffer(config),
		session:   NewSessionAggregator(target),
	}
	e.RefreshProfile()

	return e, nil
}

// RefreshProfile 重新向难度提供者拉取配置
// 会话开始和升级时调用，提供者失败时回退到内置默认难度
func (e *Engine) RefreshProfile() core.DifficultyProfile {
	profile := e.loadProfile()

	e.profileMu.Lock()
	e.profile = profile
	e.profileMu.Unlock()

	return profile
}

// loadProfile 拉取并验证难度配置
func (e *Engine) loadProfile() core.DifficultyProfile {
	if e.provider == nil {
		e.config.Logger.Printf("未设置难度提供者，使用默认难度")
		return core.DefaultProfile()
	}

	profile, err := e.provider.CurrentProfile()
	if err != nil {
		e.config.Logger.Printf("获取难度失败，使用默认难度: %v", err)
		return core.DefaultProfile()
	}

	if err := profile.Validate(); err != nil {
		e.config.Logger.Printf("难度配置无效，使用默认难度: %v", err)
		return core.DefaultProfile()
	}

	return profile
}

// Profile 返回当前生效的难度配置
func (e *Engine) Profile() core.DifficultyProfile {
	e.profileMu.RLock()
	defer e.profileMu.RUnlock()
	return e.profile
}

// OnProbeEvent 接收一个探测事件
// 畸形事件被丢弃并返回错误，会话继续
func (e *Engine) OnProbeEvent(event core.ProbeEvent) error {
	if err := e.validate(event); err != nil {
		e.rejected.Add(1)
		e.config.Logger.Printf("丢弃探测事件 seq=%d: %v", event.Sequence, err)
		return err
	}

	profile := e.Profile()

	// 序列号缺口按超时生成地形，但单独计数
	if e.seen && event.Sequence > e.lastSeq+1 {
		e.fillMissing(event.Sequence-e.lastSeq-1, profile)
	}

	if err := e.session.Record(event); err != nil {
		e.config.Logger.Printf("会话已结束，忽略 seq=%d", event.Sequence)
		return err
	}

	var seg core.TerrainSegment
	if event.IsTimeout() {
		e.tracker.ObserveTimeout()
		seg = e.generator.Generate(event, 1, profile)
	} else {
		severity := e.tracker.Observe(event.LatencyMs)
		seg = e.generator.Generate(event, severity, profile)
	}
	e.buffer.Enqueue(seg)

	e.lastSeq = event.Sequence
	e.seen = true
	return nil
}

// validate 在入口处检查事件是否合法
func (e *Engine) validate(event core.ProbeEvent) error {
	if e.session.IsFinalized() {
		return core.ErrSessionFinalized
	}

	if event.Sequence < 0 {
		return fmt.Errorf("%w: 序列号 %d 为负数", core.ErrNonMonotonicSequence, event.Sequence)
	}

	if e.seen && event.Sequence <= e.lastSeq {
		return fmt.Errorf("%w: 收到 %d，上一个为 %d", core.ErrNonMonotonicSequence, event.Sequence, e.lastSeq)
	}

	switch event.Kind {
	case core.ProbeSuccess:
		if math.IsNaN(event.LatencyMs) || math.IsInf(event.LatencyMs, 0) || event.LatencyMs <= 0 {
			return fmt.Errorf("%w: %v", core.ErrInvalidLatency, event.LatencyMs)
		}
	case core.ProbeTimeout:
	default:
		return fmt.Errorf("未知的探测类型: %d", event.Kind)
	}

	return nil
}

// fillMissing 处理missing个从未上报的序列号
func (e *Engine) fillMissing(missing int64, profile core.DifficultyProfile) {
	n := int(missing)
	if missing > math.MaxInt32 {
		n = math.MaxInt32
	}
	if err := e.session.RecordMissing(n); err != nil {
		return
	}

	fill := n
	if fill > e.config.MaxMissingFill {
		fill = e.config.MaxMissingFill
	}

	for i := 0; i < fill; i++ {
		seq := e.lastSeq + 1 + int64(i)
		e.tracker.ObserveTimeout()
		e.buffer.Enqueue(e.generator.Generate(core.NewTimeout(seq), 1, profile))
	}

	// 超出上限的部分只推进计数
	e.tracker.AddTimeouts(n - fill)
	e.generator.SkipTimeouts(n - fill)
	e.config.Logger.Printf("序列号缺失 %d 个（%d..%d），生成 %d 个缺口", n, e.lastSeq+1, e.lastSeq+missing, fill)
}

// Run 作为到达侧任务持续消费探测源，直到通道关闭或ctx取消
func (e *Engine) Run(ctx context.Context, source core.DataSource) error {
	stream := source.DataStream()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-stream:
			if !ok {
				return nil
			}
			// 错误已经记录，会话继续
			_ = e.OnProbeEvent(event)
		}
	}
}

// Consume 推进玩家位置并返回覆盖这段距离的地形
func (e *Engine) Consume(distance float64) []core.TerrainSegment {
	return e.buffer.Consume(distance)
}

// Lookahead 返回玩家前方已生成但尚未消费的地形，不推进位置
func (e *Engine) Lookahead(distance float64) []core.TerrainSegment {
	return e.buffer.Peek(distance)
}

// Snapshot 返回会话统计的当前拷贝
func (e *Engine) Snapshot() core.SessionStats {
	return e.session.Snapshot()
}

// Finalize 结束会话并返回最终统计
func (e *Engine) Finalize() core.SessionStats {
	return e.session.Finalize()
}

// Target 返回探测目标，原样透传
func (e *Engine) Target() string {
	return e.target
}

// State 返回前瞻缓冲区状态
func (e *Engine) State() BufferState {
	return e.buffer.State()
}

// Backlog 返回尚未消费的真实地形宽度
func (e *Engine) Backlog() float64 {
	return e.buffer.Queued()
}

// Cursor 返回玩家当前位置
func (e *Engine) Cursor() float64 {
	return e.buffer.Cursor()
}

// FillerWidth 返回累计合成的填充宽度
func (e *Engine) FillerWidth() float64 {
	return e.buffer.FillerWidth()
}

// History 返回最近消费的地形
func (e *Engine) History() []core.TerrainSegment {
	return e.buffer.History()
}

// Rejected 返回被丢弃的畸形事件数
func (e *Engine) Rejected() int64 {
	return e.rejected.Load()
}
