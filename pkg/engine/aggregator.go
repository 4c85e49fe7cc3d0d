package engine

import (
	"math"
	"sync"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// SessionAggregator 累积一次会话的统计数据
// Snapshot可以与Record并发调用
type SessionAggregator struct {
	mu sync.RWMutex

	target   string
	sent     int
	received int
	timeouts int
	missing  int

	// Welford's Online Algorithm 所需的累加器
	welfordCount int64
	welfordMean  float64
	welfordM2    float64

	minLatency float64
	maxLatency float64

	finalized bool
	final     core.SessionStats
}

// NewSessionAggregator 创建会话统计
func NewSessionAggregator(target string) *SessionAggregator {
	return &SessionAggregator{
		target:     target,
		minLatency: math.Inf(1),  // 初始化为正无穷
		maxLatency: math.Inf(-1), // 初始化为负无穷
	}
}

// Record 记录一个探测事件，会话结束后返回ErrSessionFinalized且不做任何修改
func (a *SessionAggregator) Record(event core.ProbeEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return core.ErrSessionFinalized
	}

	a.sent++
	if event.IsTimeout() {
		a.timeouts++
		return nil
	}

	a.received++
	a.updateWelford(event.LatencyMs)
	if event.LatencyMs < a.minLatency {
		a.minLatency = event.LatencyMs
	}
	if event.LatencyMs > a.maxLatency {
		a.maxLatency = event.LatencyMs
	}
	return nil
}

// RecordMissing 记录n个从未上报的序列号，按丢包计入
func (a *SessionAggregator) RecordMissing(n int) error {
	if n <= 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return core.ErrSessionFinalized
	}

	a.sent += n
	a.timeouts += n
	a.missing += n
	return nil
}

// updateWelford 使用Welford在线算法更新累加器，调用方需持有锁
func (a *SessionAggregator) updateWelford(v float64) {
	a.welfordCount++
	delta := v - a.welfordMean
	a.welfordMean += delta / float64(a.welfordCount)
	delta2 := v - a.welfordMean
	a.welfordM2 += delta * delta2
}

// Snapshot 返回当前时刻的一致性拷贝
func (a *SessionAggregator) Snapshot() core.SessionStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.finalized {
		return a.final
	}
	return a.derive()
}

// Finalize 计算最终统计，重复调用返回同一结果
func (a *SessionAggregator) Finalize() core.SessionStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.finalized {
		a.final = a.derive()
		a.final.Finalized = true
		a.finalized = true
	}
	return a.final
}

// IsFinalized 判断会话是否已结束
func (a *SessionAggregator) IsFinalized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.finalized
}

// derive 由累加器计算派生统计，调用方需持有锁
func (a *SessionAggregator) derive() core.SessionStats {
	stats := core.NewSessionStats(a.target)
	stats.PacketsSent = a.sent
	stats.PacketsReceived = a.received
	stats.Timeouts = a.timeouts
	stats.Missing = a.missing

	if a.sent > 0 {
		stats.PacketLoss = float64(a.sent-a.received) / float64(a.sent) * 100
	}

	if a.welfordCount > 0 {
		stats.MinLatency = a.minLatency
		stats.MaxLatency = a.maxLatency
		stats.AvgLatency = a.welfordMean
		// 与ping的mdev一致，使用总体标准差
		stats.StdDev = math.Sqrt(a.welfordM2 / float64(a.welfordCount))
	}

	return stats
}
