package engine

import (
	"math"
	"sync"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// widthEpsilon 宽度比较的容差
const widthEpsilon = 1e-9

// BufferState 表示前瞻缓冲区的状态
type BufferState int

const (
	StateStarved  BufferState = iota // 队列为空，消费时合成填充
	StateFilling                     // 低于低水位
	StateSteady                      // 位于目标区间内
	StateDraining                    // 高于高水位
)

// String 返回状态的可读名称
func (s BufferState) String() string {
	switch s {
	case StateStarved:
		return "STARVED"
	case StateFilling:
		return "FILLING"
	case StateSteady:
		return "STEADY"
	case StateDraining:
		return "DRAINING"
	default:
		return "UNKNOWN"
	}
}

// LookaheadBuffer 解耦片段到达节奏与游戏循环消费节奏的队列
// Enqueue和Consume可以分别由一个生产者和一个消费者并发调用
type LookaheadBuffer struct {
	mu sync.Mutex

	low          float64
	high         float64
	historyLimit int
	observer     func(from, to BufferState)

	queue      []core.TerrainSegment // 待消费的片段
	headOffset float64               // 队首片段已被消费的宽度
	queued     float64               // 队列剩余宽度

	cursor   float64 // 玩家在世界坐标轴上的位置
	enqueued float64 // 累计入队的真实宽度
	filler   float64 // 累计合成的填充宽度
	lastSeq  int64   // 最近入队的序列号

	history []core.TerrainSegment // 已消费的片段，有长度上限
	state   BufferState
}

// NewLookaheadBuffer 创建前瞻缓冲区
func NewLookaheadBuffer(config *Config) *LookaheadBuffer {
	return &LookaheadBuffer{
		low:          config.LowWatermark,
		high:         config.HighWatermark,
		historyLimit: config.HistoryLimit,
		observer:     config.OnStateChange,
		queue:        make([]core.TerrainSegment, 0, 64),
		history:      make([]core.TerrainSegment, 0, config.HistoryLimit),
		lastSeq:      -1,
		state:        StateStarved,
	}
}

// Enqueue 追加片段，从不阻塞也从不拒绝
func (b *LookaheadBuffer) Enqueue(seg core.TerrainSegment) {
	if !(seg.Width > 0) || math.IsInf(seg.Width, 0) {
		return
	}

	b.mu.Lock()
	// 积压时把相邻的缺口合并，宽度总和不变
	if b.state == StateDraining && seg.Kind == core.SegmentGap && len(b.queue) > 0 {
		tail := &b.queue[len(b.queue)-1]
		if tail.Kind == core.SegmentGap {
			tail.Width += seg.Width
			tail.Merged += 1 + seg.Merged
			if seg.Severity > tail.Severity {
				tail.Severity = seg.Severity
			}
			b.accept(seg)
			from, to := b.updateState()
			b.mu.Unlock()
			b.notify(from, to)
			return
		}
	}

	seg.Heights = append([]float64(nil), seg.Heights...)
	b.queue = append(b.queue, seg)
	b.accept(seg)
	from, to := b.updateState()
	b.mu.Unlock()

	b.notify(from, to)
}

// accept 更新入队统计，调用方需持有锁
func (b *LookaheadBuffer) accept(seg core.TerrainSegment) {
	b.queued += seg.Width
	b.enqueued += seg.Width
	b.lastSeq = seg.Sequence
}

// Consume 返回恰好覆盖distance的片段序列
// 真实片段不足时合成平坦填充，同一段距离不会被返回两次
func (b *LookaheadBuffer) Consume(distance float64) []core.TerrainSegment {
	if !(distance > 0) || math.IsInf(distance, 0) {
		return nil
	}

	b.mu.Lock()
	out := make([]core.TerrainSegment, 0, 4)
	remaining := distance

	for remaining > widthEpsilon {
		if len(b.queue) == 0 {
			piece := core.TerrainSegment{
				Kind:     core.SegmentFiller,
				Sequence: b.lastSeq,
				Width:    remaining,
				Position: b.cursor,
			}
			b.filler += remaining
			b.cursor += remaining
			out = append(out, piece)
			break
		}

		head := b.queue[0]
		avail := head.Width - b.headOffset
		take := math.Min(avail, remaining)

		piece := slicePiece(head, b.headOffset, take)
		piece.Position = b.cursor
		out = append(out, piece)

		b.cursor += take
		b.queued -= take
		remaining -= take

		if avail-take <= widthEpsilon {
			b.queue[0] = core.TerrainSegment{}
			b.queue = b.queue[1:]
			b.headOffset = 0
		} else {
			b.headOffset += take
		}
	}

	if len(b.queue) == 0 {
		b.queued = 0
	}

	b.remember(out)
	from, to := b.updateState()
	b.mu.Unlock()

	b.notify(from, to)
	return out
}

// Peek 返回当前位置之后最多distance宽度的待消费片段，不改变缓冲区
// 只包含真实片段，队列不足时返回的宽度小于distance
func (b *LookaheadBuffer) Peek(distance float64) []core.TerrainSegment {
	if !(distance > 0) || math.IsInf(distance, 0) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]core.TerrainSegment, 0, len(b.queue))
	pos := b.cursor
	offset := b.headOffset
	remaining := distance

	for _, seg := range b.queue {
		if remaining <= widthEpsilon {
			break
		}
		take := math.Min(seg.Width-offset, remaining)
		piece := slicePiece(seg, offset, take)
		piece.Position = pos
		out = append(out, piece)

		pos += take
		remaining -= take
		offset = 0
	}
	return out
}

// slicePiece 从片段中截取[offset, offset+width)部分
// 障碍峰按峰中心所在的区间分配，每个峰只属于一个部分
func slicePiece(seg core.TerrainSegment, offset, width float64) core.TerrainSegment {
	piece := seg
	piece.Heights = nil

	if offset <= widthEpsilon && width >= seg.Width-widthEpsilon {
		piece.Heights = append([]float64(nil), seg.Heights...)
		return piece
	}

	piece.Partial = true
	piece.Width = width

	if n := len(seg.Heights); n > 0 {
		slot := seg.Width / float64(n)
		end := offset + width
		for i, h := range seg.Heights {
			centre := (float64(i) + 0.5) * slot
			if centre >= offset && centre < end {
				piece.Heights = append(piece.Heights, h)
			}
		}
	}
	return piece
}

// remember 保存已消费的片段，超出上限时丢弃最老的
func (b *LookaheadBuffer) remember(pieces []core.TerrainSegment) {
	b.history = append(b.history, pieces...)
	if over := len(b.history) - b.historyLimit; over > 0 {
		copy(b.history, b.history[over:])
		b.history = b.history[:b.historyLimit]
	}
}

// updateState 根据队列宽度重新计算状态，调用方需持有锁
func (b *LookaheadBuffer) updateState() (from, to BufferState) {
	from = b.state
	switch {
	case len(b.queue) == 0:
		b.state = StateStarved
	case b.queued < b.low:
		b.state = StateFilling
	case b.queued > b.high:
		b.state = StateDraining
	default:
		b.state = StateSteady
	}
	return from, b.state
}

// notify 在锁外通知状态变化
func (b *LookaheadBuffer) notify(from, to BufferState) {
	if from != to && b.observer != nil {
		b.observer(from, to)
	}
}

// State 返回当前状态
func (b *LookaheadBuffer) State() BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Queued 返回尚未消费的真实宽度
func (b *LookaheadBuffer) Queued() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queued
}

// Len 返回队列中的片段数（包括部分消费的队首）
func (b *LookaheadBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Cursor 返回当前消费位置
func (b *LookaheadBuffer) Cursor() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// EnqueuedWidth 返回累计入队的真实宽度
func (b *LookaheadBuffer) EnqueuedWidth() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enqueued
}

// FillerWidth 返回累计合成的填充宽度
func (b *LookaheadBuffer) FillerWidth() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filler
}

// History 返回已消费片段的拷贝，按消费顺序排列
func (b *LookaheadBuffer) History() []core.TerrainSegment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.TerrainSegment, len(b.history))
	copy(out, b.history)
	return out
}

// Reset 丢弃所有片段并回到初始状态
func (b *LookaheadBuffer) Reset() {
	b.mu.Lock()
	b.queue = b.queue[:0]
	b.headOffset = 0
	b.queued = 0
	b.cursor = 0
	b.enqueued = 0
	b.filler = 0
	b.lastSeq = -1
	b.history = b.history[:0]
	from, to := b.updateState()
	b.mu.Unlock()

	b.notify(from, to)
}
