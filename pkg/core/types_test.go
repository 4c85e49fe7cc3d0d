package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestNewSessionStats 测试NewSessionStats构造函数
func TestNewSessionStats(t *testing.T) {
	stats := NewSessionStats("test.com")

	if stats.Target != "test.com" {
		t.Errorf("Expected target 'test.com', got '%s'", stats.Target)
	}

	if stats.PacketsSent != 0 || stats.PacketsReceived != 0 || stats.Timeouts != 0 {
		t.Errorf("Expected zero counters, got %+v", stats)
	}

	if !math.IsNaN(stats.MinLatency) || !math.IsNaN(stats.MaxLatency) {
		t.Errorf("Expected NaN latency bounds, got min=%f max=%f", stats.MinLatency, stats.MaxLatency)
	}

	if stats.Finalized {
		t.Error("New stats should not be finalized")
	}
}

// TestProbeEventConstructors 测试探测事件构造函数
func TestProbeEventConstructors(t *testing.T) {
	ok := NewSuccess(3, 12.5)
	if ok.Kind != ProbeSuccess || ok.Sequence != 3 || ok.LatencyMs != 12.5 {
		t.Errorf("Unexpected success event: %+v", ok)
	}
	if ok.IsTimeout() {
		t.Error("Success event should not be a timeout")
	}

	lost := NewTimeout(4)
	if !lost.IsTimeout() || lost.Sequence != 4 {
		t.Errorf("Unexpected timeout event: %+v", lost)
	}
	if !math.IsNaN(lost.LatencyMs) {
		t.Errorf("Expected timeout latency to be NaN, got %f", lost.LatencyMs)
	}
}

// TestKindStrings 测试枚举的字符串形式
func TestKindStrings(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{ProbeSuccess.String(), "success"},
		{ProbeTimeout.String(), "timeout"},
		{ProbeKind(42).String(), "unknown"},
		{SegmentObstacle.String(), "obstacle"},
		{SegmentGap.String(), "gap"},
		{SegmentFiller.String(), "filler"},
		{SegmentKind(42).String(), "unknown"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("Expected '%s', got '%s'", c.want, c.got)
		}
	}
}

// TestTerrainSegmentEnd 测试片段终点计算
func TestTerrainSegmentEnd(t *testing.T) {
	seg := TerrainSegment{Kind: SegmentFiller, Position: 10, Width: 2.5}
	if seg.End() != 12.5 {
		t.Errorf("Expected end 12.5, got %f", seg.End())
	}
	if !seg.IsSynthetic() {
		t.Error("Filler segment should be synthetic")
	}
}

// TestDifficultyProfileValidate 测试难度配置验证
func TestDifficultyProfileValidate(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Errorf("Default profile should be valid, got %v", err)
	}

	bad := []DifficultyProfile{
		{ObstacleScale: -1, GapScale: 0.5, ClusterDensity: 4, PeakVarianceFactor: 0.1},
		{ObstacleScale: 1, GapScale: 0.5, ClusterDensity: 4, PeakVarianceFactor: 1},
		{ObstacleScale: 1, GapScale: 0.5, ClusterDensity: 99, PeakVarianceFactor: 0.1},
		{ObstacleScale: math.NaN(), GapScale: 0.5, ClusterDensity: 4, PeakVarianceFactor: 0.1},
	}
	for i, p := range bad {
		err := p.Validate()
		if err == nil {
			t.Errorf("Case %d: expected validation error for %+v", i, p)
			continue
		}
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("Case %d: expected ErrInvalidProfile, got %v", i, err)
		}
	}
}

// mockDataSource 模拟数据源，用于测试
type mockDataSource struct {
	dataChan chan ProbeEvent
	started  bool
	stopped  bool
}

func newMockDataSource() *mockDataSource {
	return &mockDataSource{
		dataChan: make(chan ProbeEvent, 10),
	}
}

func (m *mockDataSource) DataStream() <-chan ProbeEvent {
	return m.dataChan
}

func (m *mockDataSource) Start() {
	m.started = true
	go func() {
		for i := 0; i < 3; i++ {
			ev := NewSuccess(int64(i), float64(i+1))
			ev.Target = "mock.test"
			m.dataChan <- ev
			time.Sleep(10 * time.Millisecond)
		}
		ev := NewTimeout(3)
		ev.Target = "mock.test"
		m.dataChan <- ev
		close(m.dataChan)
	}()
}

func (m *mockDataSource) Stop() {
	m.stopped = true
}

// TestDataSourceInterface 测试DataSource接口
func TestDataSourceInterface(t *testing.T) {
	var source DataSource = newMockDataSource()
	mock := source.(*mockDataSource)

	if mock.started {
		t.Error("DataSource should not be started initially")
	}

	source.Start()
	if !mock.started {
		t.Error("DataSource should be started after Start() call")
	}

	normalCount := 0
	timeoutCount := 0
	lastSeq := int64(-1)
	timeout := time.After(500 * time.Millisecond)

loop:
	for {
		select {
		case ev, ok := <-source.DataStream():
			if !ok {
				break loop
			}
			if ev.Target != "mock.test" {
				t.Errorf("Expected target 'mock.test', got '%s'", ev.Target)
			}
			if ev.Sequence <= lastSeq {
				t.Errorf("Expected increasing sequence, got %d after %d", ev.Sequence, lastSeq)
			}
			lastSeq = ev.Sequence
			if ev.IsTimeout() {
				timeoutCount++
			} else {
				normalCount++
			}
		case <-timeout:
			break loop
		}
	}

	if normalCount != 3 {
		t.Errorf("Expected 3 normal events, got %d", normalCount)
	}
	if timeoutCount != 1 {
		t.Errorf("Expected 1 timeout event, got %d", timeoutCount)
	}

	source.Stop()
	if !mock.stopped {
		t.Error("DataSource should be stopped after Stop() call")
	}
}
