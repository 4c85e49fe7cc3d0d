// Package core 定义了地形流引擎的核心接口和数据结构
// 这些接口保证了引擎与具体探测源、界面的完全解耦
package core

import (
	"math"
	"time"
)

// ProbeKind 表示单次探测的结果类型
type ProbeKind int

const (
	ProbeSuccess ProbeKind = iota // 成功收到回复
	ProbeTimeout                  // 超时
)

// String 返回探测类型的可读名称
func (k ProbeKind) String() string {
	switch k {
	case ProbeSuccess:
		return "success"
	case ProbeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ProbeEvent 表示单次探测的原子结果
// 用于在探测源和引擎之间传递
type ProbeEvent struct {
	Target      string    // 目标标识符（如IP地址、域名等），引擎原样透传
	Kind        ProbeKind // 成功或超时
	Sequence    int64     // 会话内严格递增的序列号
	LatencyMs   float64   // 延迟(ms)。超时时为 math.NaN()
	SendTime    time.Time // 发送时间
	ReceiveTime time.Time // 接收时间，超时时为零值
}

// NewSuccess 创建一个成功的探测事件
func NewSuccess(seq int64, latencyMs float64) ProbeEvent {
	return ProbeEvent{
		Kind:      ProbeSuccess,
		Sequence:  seq,
		LatencyMs: latencyMs,
	}
}

// NewTimeout 创建一个超时的探测事件
func NewTimeout(seq int64) ProbeEvent {
	return ProbeEvent{
		Kind:      ProbeTimeout,
		Sequence:  seq,
		LatencyMs: math.NaN(),
	}
}

// IsTimeout 判断事件是否为超时
func (e ProbeEvent) IsTimeout() bool {
	return e.Kind == ProbeTimeout
}

// SegmentKind 表示地形片段的类型
type SegmentKind int

const (
	SegmentObstacle SegmentKind = iota // 障碍簇
	SegmentGap                         // 缺口
	SegmentFiller                      // 合成的平台填充
)

// String 返回片段类型的可读名称
func (k SegmentKind) String() string {
	switch k {
	case SegmentObstacle:
		return "obstacle"
	case SegmentGap:
		return "gap"
	case SegmentFiller:
		return "filler"
	default:
		return "unknown"
	}
}

// TerrainSegment 表示一段生成的关卡地形
type TerrainSegment struct {
	Kind     SegmentKind // 片段类型
	Sequence int64       // 生成该片段的探测序列号，填充片段沿用最近一次真实序列号
	Heights  []float64   // 障碍簇每个峰的高度，缺口和填充为空
	Width    float64     // 宽度（世界单位）
	Position float64     // 在世界坐标轴上的起点，消费时赋值
	Severity float64     // 生成时的严重度
	Partial  bool        // 是否为被拆分后的部分片段
	Merged   int         // 被合并进来的缺口数量
}

// IsSynthetic 判断片段是否为合成填充
func (s TerrainSegment) IsSynthetic() bool {
	return s.Kind == SegmentFiller
}

// End 返回片段在世界坐标轴上的终点
func (s TerrainSegment) End() float64 {
	return s.Position + s.Width
}

// SessionStats 表示一次会话的汇总统计
type SessionStats struct {
	Target string // 探测目标

	PacketsSent     int // 总发包数
	PacketsReceived int // 总收包数
	Timeouts        int // 丢失数，包含未上报的序列号
	Missing         int // 其中序列号缺失（从未上报）的数量

	MinLatency float64 // 最小延迟
	AvgLatency float64 // 平均延迟
	MaxLatency float64 // 最大延迟
	StdDev     float64 // 总体标准差
	PacketLoss float64 // 丢包率（百分比）

	Finalized bool // 是否已结束
}

// NewSessionStats 创建一个新的SessionStats实例
func NewSessionStats(target string) SessionStats {
	return SessionStats{
		Target:     target,
		MinLatency: math.NaN(),
		AvgLatency: math.NaN(),
		MaxLatency: math.NaN(),
		StdDev:     math.NaN(),
	}
}

// DataSource 定义了探测源的标准接口
// 任何探测执行器（如Pinger、回放器等）都应该实现这个接口
type DataSource interface {
	// DataStream 返回一个只读通道，用于接收实时的探测事件
	// 实现者应该在独立的goroutine中持续发送ProbeEvent到这个通道
	DataStream() <-chan ProbeEvent

	// Start 启动数据收集
	// 这个方法应该是非阻塞的，实际的工作在后台goroutine中进行
	Start()

	// Stop 停止数据收集并清理资源
	// 调用此方法后，DataStream()返回的通道应该被关闭
	Stop()
}

// ProfileProvider 定义了难度配置的拉取接口
type ProfileProvider interface {
	// CurrentProfile 返回当前关卡的难度配置
	CurrentProfile() (DifficultyProfile, error)
}
