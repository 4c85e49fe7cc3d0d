package engine

import (
	"math"
)

// neutralSeverity 样本不足时返回的中性严重度
const neutralSeverity = 0.5

// RollingStats 维护最近W个延迟样本的滚动统计
// 只由到达侧的处理路径持有，不需要加锁
type RollingStats struct {
	samples  []float64 // 环形缓冲区
	start    int       // 最老样本的位置
	count    int       // 当前样本数
	minRange float64   // 归一化的最小区间

	sum   float64
	sumSq float64
	min   float64
	max   float64

	timeouts    int // 累计超时次数
	consecutive int // 当前连续超时次数
}

// NewRollingStats 创建滚动统计
func NewRollingStats(windowSize int, minRange float64) *RollingStats {
	if windowSize < 1 {
		windowSize = 1
	}
	return &RollingStats{
		samples:  make([]float64, windowSize),
		minRange: minRange,
		min:      math.Inf(1),
		max:      math.Inf(-1),
	}
}

// Observe 记录一个延迟样本并返回其严重度，结果总在[0,1]内
func (r *RollingStats) Observe(latencyMs float64) float64 {
	r.consecutive = 0

	// 非有限值不进入窗口
	if math.IsNaN(latencyMs) {
		return neutralSeverity
	}
	if math.IsInf(latencyMs, 1) {
		return 1
	}
	if math.IsInf(latencyMs, -1) {
		return 0
	}

	r.push(latencyMs)
	return r.Severity(latencyMs)
}

// ObserveTimeout 记录一次超时，不影响延迟统计
func (r *RollingStats) ObserveTimeout() {
	r.AddTimeouts(1)
}

// AddTimeouts 一次记录n次超时
func (r *RollingStats) AddTimeouts(n int) {
	if n <= 0 {
		return
	}
	r.timeouts += n
	r.consecutive += n
}

// Severity 按窗口的[min,max]对延迟做归一化，不修改窗口
func (r *RollingStats) Severity(latencyMs float64) float64 {
	if r.count < 2 || math.IsNaN(latencyMs) {
		return neutralSeverity
	}

	span := r.max - r.min
	if span < r.minRange {
		span = r.minRange
	}

	return clamp01((latencyMs - r.min) / span)
}

// push 将样本加入窗口，必要时淘汰最老的样本
func (r *RollingStats) push(v float64) {
	size := len(r.samples)
	rescan := false

	if r.count == size {
		old := r.samples[r.start]
		r.sum -= old
		r.sumSq -= old * old
		r.start = (r.start + 1) % size
		r.count--
		// 被淘汰的是极值时需要重新扫描
		rescan = old <= r.min || old >= r.max
	}

	r.samples[(r.start+r.count)%size] = v
	r.count++
	r.sum += v
	r.sumSq += v * v

	if rescan {
		r.rescan()
		return
	}
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
}

// rescan 重新计算极值和累加和，顺便消除浮点累计误差
func (r *RollingStats) rescan() {
	r.min, r.max = math.Inf(1), math.Inf(-1)
	r.sum, r.sumSq = 0, 0
	size := len(r.samples)
	for i := 0; i < r.count; i++ {
		v := r.samples[(r.start+i)%size]
		r.sum += v
		r.sumSq += v * v
		if v < r.min {
			r.min = v
		}
		if v > r.max {
			r.max = v
		}
	}
}

// Len 返回窗口内的样本数
func (r *RollingStats) Len() int {
	return r.count
}

// Min 返回窗口最小值，窗口为空时为NaN
func (r *RollingStats) Min() float64 {
	if r.count == 0 {
		return math.NaN()
	}
	return r.min
}

// Max 返回窗口最大值，窗口为空时为NaN
func (r *RollingStats) Max() float64 {
	if r.count == 0 {
		return math.NaN()
	}
	return r.max
}

// Mean 返回窗口均值，窗口为空时为NaN
func (r *RollingStats) Mean() float64 {
	if r.count == 0 {
		return math.NaN()
	}
	return r.sum / float64(r.count)
}

// Variance 返回窗口的总体方差
func (r *RollingStats) Variance() float64 {
	if r.count == 0 {
		return math.NaN()
	}
	mean := r.sum / float64(r.count)
	v := r.sumSq/float64(r.count) - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

// Samples 按从旧到新的顺序返回窗口样本的拷贝
func (r *RollingStats) Samples() []float64 {
	out := make([]float64, r.count)
	size := len(r.samples)
	for i := 0; i < r.count; i++ {
		out[i] = r.samples[(r.start+i)%size]
	}
	return out
}

// Timeouts 返回累计超时次数
func (r *RollingStats) Timeouts() int {
	return r.timeouts
}

// ConsecutiveTimeouts 返回当前连续超时次数
func (r *RollingStats) ConsecutiveTimeouts() int {
	return r.consecutive
}

// clamp01 将值限制在[0,1]内，NaN按中性处理
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return neutralSeverity
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
