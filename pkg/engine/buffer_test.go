package engine

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

func obstacle(seq int64, heights ...float64) core.TerrainSegment {
	return core.TerrainSegment{
		Kind:     core.SegmentObstacle,
		Sequence: seq,
		Heights:  heights,
		Width:    float64(len(heights)) * 1.5,
	}
}

func gap(seq int64, width float64) core.TerrainSegment {
	return core.TerrainSegment{Kind: core.SegmentGap, Sequence: seq, Width: width}
}

func equalHeights(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func totalWidth(segs []core.TerrainSegment) float64 {
	var sum float64
	for _, s := range segs {
		sum += s.Width
	}
	return sum
}

// TestBufferStarvedFiller 测试空缓冲区合成填充
func TestBufferStarvedFiller(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())

	if b.State() != StateStarved {
		t.Errorf("Expected initial state STARVED, got %v", b.State())
	}

	out := b.Consume(3)
	if len(out) != 1 {
		t.Fatalf("Expected 1 filler segment, got %d", len(out))
	}
	if out[0].Kind != core.SegmentFiller || out[0].Width != 3 || out[0].Position != 0 {
		t.Errorf("Unexpected filler segment: %+v", out[0])
	}
	if b.FillerWidth() != 3 {
		t.Errorf("Expected filler width 3, got %f", b.FillerWidth())
	}
}

// TestBufferSplitsHead 测试按宽度拆分队首片段
func TestBufferSplitsHead(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	b.Enqueue(obstacle(0, 1, 2, 3, 4)) // 宽度6，每个峰1.5

	first := b.Consume(2)
	second := b.Consume(4)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Expected one piece per tick, got %d and %d", len(first), len(second))
	}
	if !first[0].Partial || !second[0].Partial {
		t.Error("Split pieces should be marked partial")
	}

	// 峰中心为0.75、2.25、3.75、5.25
	if len(first[0].Heights) != 1 || first[0].Heights[0] != 1 {
		t.Errorf("Expected first piece to carry peak 1, got %v", first[0].Heights)
	}
	if len(second[0].Heights) != 3 {
		t.Errorf("Expected second piece to carry 3 peaks, got %v", second[0].Heights)
	}
	if second[0].Position != 2 {
		t.Errorf("Expected second piece at position 2, got %f", second[0].Position)
	}
	if b.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", b.Len())
	}
}

// TestBufferFillsRemainder 测试真实片段不足时补齐剩余距离
func TestBufferFillsRemainder(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	b.Enqueue(gap(4, 2))

	out := b.Consume(5)
	if len(out) != 2 {
		t.Fatalf("Expected gap plus filler, got %d segments", len(out))
	}
	if out[0].Kind != core.SegmentGap || out[1].Kind != core.SegmentFiller {
		t.Errorf("Unexpected kinds: %v, %v", out[0].Kind, out[1].Kind)
	}
	if out[1].Position != 2 || out[1].Width != 3 {
		t.Errorf("Unexpected filler placement: %+v", out[1])
	}
	if out[1].Sequence != 4 {
		t.Errorf("Filler should carry the last real sequence, got %d", out[1].Sequence)
	}
}

// TestBufferPeek 测试查看前方片段而不消费
func TestBufferPeek(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	if got := b.Peek(10); len(got) != 0 {
		t.Errorf("Expected nothing ahead of an empty buffer, got %+v", got)
	}

	b.Enqueue(obstacle(0, 1, 2, 3, 4)) // 宽度6
	b.Enqueue(gap(1, 4))
	b.Consume(2)

	ahead := b.Peek(6)
	if len(ahead) != 2 {
		t.Fatalf("Expected 2 pieces ahead, got %d", len(ahead))
	}
	if ahead[0].Position != 2 || ahead[0].Width != 4 || len(ahead[0].Heights) != 3 {
		t.Errorf("Expected the rest of the obstacle at 2, got %+v", ahead[0])
	}
	if ahead[1].Kind != core.SegmentGap || ahead[1].Position != 6 || ahead[1].Width != 2 || !ahead[1].Partial {
		t.Errorf("Expected the gap cut at the peek distance, got %+v", ahead[1])
	}

	// 查看不改变缓冲区
	if b.Cursor() != 2 || b.Queued() != 8 || b.Len() != 2 {
		t.Errorf("Peek should not consume, got cursor %f queued %f len %d", b.Cursor(), b.Queued(), b.Len())
	}

	// 超出队列宽度时只返回真实片段
	if got := totalWidth(b.Peek(100)); got != 8 {
		t.Errorf("Expected 8 units ahead, got %f", got)
	}

	next := b.Consume(4)
	if len(next) != 1 || !equalHeights(next[0].Heights, ahead[0].Heights) {
		t.Errorf("Expected consumed piece to match the peeked one, got %+v", next)
	}
}

// TestBufferStateTransitions 测试状态随水位变化
func TestBufferStateTransitions(t *testing.T) {
	var transitions []BufferState
	config := NewConfigWithOptions(
		WithWatermarks(5, 10),
		WithStateObserver(func(from, to BufferState) {
			transitions = append(transitions, to)
		}),
	)
	b := NewLookaheadBuffer(config)

	b.Enqueue(gap(0, 3)) // 3 -> FILLING
	b.Enqueue(gap(1, 4)) // 7 -> STEADY
	b.Enqueue(gap(2, 6)) // 13 -> DRAINING
	b.Consume(5)         // 8 -> STEADY
	b.Consume(5)         // 3 -> FILLING
	b.Consume(5)         // 0 -> STARVED

	want := []BufferState{StateFilling, StateSteady, StateDraining, StateSteady, StateFilling, StateStarved}
	if len(transitions) != len(want) {
		t.Fatalf("Expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("Transition %d: expected %v, got %v", i, want[i], transitions[i])
		}
	}
}

// TestBufferMergesGapsWhileDraining 测试积压时合并相邻缺口
func TestBufferMergesGapsWhileDraining(t *testing.T) {
	b := NewLookaheadBuffer(NewConfigWithOptions(WithWatermarks(1, 5)))
	b.Enqueue(gap(0, 6)) // DRAINING
	b.Enqueue(gap(1, 6))
	b.Enqueue(gap(2, 6))

	if b.Len() != 1 {
		t.Fatalf("Expected gaps merged into one segment, got %d", b.Len())
	}
	if b.Queued() != 18 {
		t.Errorf("Merging must preserve width, expected 18, got %f", b.Queued())
	}

	out := b.Consume(18)
	if len(out) != 1 || out[0].Merged != 2 || out[0].Sequence != 0 {
		t.Errorf("Unexpected merged segment: %+v", out)
	}
}

// TestBufferIgnoresInvalidWidths 测试非法宽度和距离
func TestBufferIgnoresInvalidWidths(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	b.Enqueue(gap(0, 0))
	b.Enqueue(gap(1, math.NaN()))
	b.Enqueue(gap(2, math.Inf(1)))

	if b.Len() != 0 {
		t.Errorf("Expected invalid segments to be ignored, got %d", b.Len())
	}

	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if out := b.Consume(d); out != nil {
			t.Errorf("Expected nil for distance %v, got %v", d, out)
		}
	}
	if b.Cursor() != 0 {
		t.Errorf("Cursor should not move, got %f", b.Cursor())
	}
}

// TestBufferHistoryLimit 测试已消费历史的上限
func TestBufferHistoryLimit(t *testing.T) {
	b := NewLookaheadBuffer(NewConfigWithOptions(WithHistoryLimit(4)))
	for i := 0; i < 10; i++ {
		b.Consume(1)
	}

	history := b.History()
	if len(history) != 4 {
		t.Fatalf("Expected 4 history entries, got %d", len(history))
	}
	if history[0].Position != 6 || history[3].Position != 9 {
		t.Errorf("Expected the newest pieces to be kept, got positions %f..%f", history[0].Position, history[3].Position)
	}
}

// TestBufferWidthConservation 测试宽度守恒
func TestBufferWidthConservation(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	rng := rand.New(rand.NewSource(42))

	var consumed, requested float64
	var lastEnd float64
	for i := 0; i < 500; i++ {
		if rng.Intn(3) == 0 {
			n := 1 + rng.Intn(4)
			heights := make([]float64, n)
			for j := range heights {
				heights[j] = 1 + rng.Float64()
			}
			b.Enqueue(obstacle(int64(i), heights...))
		}
		if rng.Intn(5) == 0 {
			b.Enqueue(gap(int64(i), 2+rng.Float64()*4))
		}

		d := 0.2 + rng.Float64()*2
		requested += d
		out := b.Consume(d)
		w := totalWidth(out)
		if math.Abs(w-d) > 1e-6 {
			t.Fatalf("Tick %d: expected width %f, got %f", i, d, w)
		}
		for _, s := range out {
			if math.Abs(s.Position-lastEnd) > 1e-6 {
				t.Fatalf("Tick %d: segments overlap or leave holes at %f (expected %f)", i, s.Position, lastEnd)
			}
			lastEnd = s.End()
		}
		consumed += w
	}

	// 排空剩余的真实片段
	rest := b.Queued()
	consumed += totalWidth(b.Consume(rest))
	requested += rest

	realWidth := b.EnqueuedWidth()
	if math.Abs(consumed-(realWidth+b.FillerWidth())) > 1e-6 {
		t.Errorf("Expected consumed %f == real %f + filler %f", consumed, realWidth, b.FillerWidth())
	}
	if math.Abs(consumed-requested) > 1e-6 {
		t.Errorf("Expected consumed %f == requested %f", consumed, requested)
	}
}

// TestBufferConcurrentAccess 测试单生产者单消费者并发
func TestBufferConcurrentAccess(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	var wg sync.WaitGroup
	var consumed float64

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Enqueue(obstacle(int64(i), 1, 2))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			consumed += totalWidth(b.Consume(1))
		}
	}()
	wg.Wait()

	if math.Abs(consumed-1000) > 1e-6 {
		t.Errorf("Expected 1000 units consumed, got %f", consumed)
	}
	if math.Abs(b.Cursor()-1000) > 1e-6 {
		t.Errorf("Expected cursor at 1000, got %f", b.Cursor())
	}
}

// TestBufferReset 测试重置
func TestBufferReset(t *testing.T) {
	b := NewLookaheadBuffer(DefaultConfig())
	b.Enqueue(gap(0, 20))
	b.Consume(3)
	b.Reset()

	if b.Len() != 0 || b.Cursor() != 0 || b.EnqueuedWidth() != 0 || len(b.History()) != 0 {
		t.Error("Reset should clear all buffer state")
	}
	if b.State() != StateStarved {
		t.Errorf("Expected STARVED after reset, got %v", b.State())
	}
}

// BenchmarkBufferConsume 基准测试消费性能
func BenchmarkBufferConsume(b *testing.B) {
	buf := NewLookaheadBuffer(DefaultConfig())
	seg := obstacle(0, 1, 2, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Enqueue(seg)
		buf.Consume(4.5)
	}
}
