package engine

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// TestAggregatorRecord 测试计数更新
func TestAggregatorRecord(t *testing.T) {
	a := NewSessionAggregator("test.com")
	a.Record(core.NewSuccess(0, 10))
	a.Record(core.NewTimeout(1))
	a.Record(core.NewSuccess(2, 30))

	s := a.Snapshot()
	if s.Target != "test.com" {
		t.Errorf("Expected target 'test.com', got '%s'", s.Target)
	}
	if s.PacketsSent != 3 || s.PacketsReceived != 2 || s.Timeouts != 1 {
		t.Errorf("Unexpected counters: %+v", s)
	}
	if s.MinLatency != 10 || s.MaxLatency != 30 || s.AvgLatency != 20 {
		t.Errorf("Unexpected latency stats: %+v", s)
	}
	if s.StdDev != 10 {
		t.Errorf("Expected population stddev 10, got %f", s.StdDev)
	}
	if s.Finalized {
		t.Error("Snapshot should not finalize the session")
	}
}

// TestAggregatorEmpty 测试没有收到回复时的统计
func TestAggregatorEmpty(t *testing.T) {
	a := NewSessionAggregator("test.com")
	a.Record(core.NewTimeout(0))

	s := a.Finalize()
	if s.PacketLoss != 100 {
		t.Errorf("Expected 100%% loss, got %f", s.PacketLoss)
	}
	if !math.IsNaN(s.AvgLatency) || !math.IsNaN(s.StdDev) {
		t.Errorf("Expected NaN latency stats without replies, got %+v", s)
	}
}

// TestAggregatorMissing 测试缺失序列号的单独计数
func TestAggregatorMissing(t *testing.T) {
	a := NewSessionAggregator("test.com")
	a.Record(core.NewSuccess(0, 10))
	a.RecordMissing(2)
	a.Record(core.NewTimeout(3))

	s := a.Snapshot()
	if s.Missing != 2 || s.Timeouts != 3 {
		t.Errorf("Expected 2 missing within 3 timeouts, got %+v", s)
	}
	if s.PacketsSent != s.PacketsReceived+s.Timeouts {
		t.Errorf("Packet accounting broken: %+v", s)
	}
}

// TestAggregatorFinalizeIdempotent 测试结束的幂等性
func TestAggregatorFinalizeIdempotent(t *testing.T) {
	a := NewSessionAggregator("test.com")
	a.Record(core.NewSuccess(0, 10))
	a.Record(core.NewSuccess(1, 20))

	first := a.Finalize()
	if err := a.Record(core.NewSuccess(2, 500)); !errors.Is(err, core.ErrSessionFinalized) {
		t.Errorf("Expected ErrSessionFinalized, got %v", err)
	}
	if err := a.RecordMissing(3); !errors.Is(err, core.ErrSessionFinalized) {
		t.Errorf("Expected ErrSessionFinalized for missing, got %v", err)
	}
	second := a.Finalize()

	if first != second {
		t.Errorf("Finalize should return the same value\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if a.Snapshot() != first {
		t.Error("Snapshot after finalize should return the finalized value")
	}
	if !first.Finalized {
		t.Error("Finalized flag should be set")
	}
}

// TestAggregatorConcurrentSnapshot 测试Snapshot与Record并发
func TestAggregatorConcurrentSnapshot(t *testing.T) {
	a := NewSessionAggregator("test.com")
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%4 == 0 {
				a.Record(core.NewTimeout(int64(i)))
			} else {
				a.Record(core.NewSuccess(int64(i), float64(i%50+1)))
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s := a.Snapshot()
			if s.PacketsSent != s.PacketsReceived+s.Timeouts {
				t.Errorf("Inconsistent snapshot: %+v", s)
				return
			}
		}
	}()
	wg.Wait()

	if s := a.Snapshot(); s.PacketsSent != 1000 {
		t.Errorf("Expected 1000 packets sent, got %d", s.PacketsSent)
	}
}
