package replay

import (
	"errors"
	"sync"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// Source 按固定间隔回放记录中的探测事件，实现core.DataSource接口
// 所有事件发送完毕后关闭数据通道
type Source struct {
	transcript *Transcript
	config     *Config
	dataChan   chan core.ProbeEvent
	stopChan   chan struct{}
	doneChan   chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
	started    bool
	mu         sync.Mutex
}

// NewSource 创建回放数据源
func NewSource(t *Transcript, config *Config) (*Source, error) {
	if t == nil || len(t.Events) == 0 {
		return nil, ErrEmptyTranscript
	}
	if config == nil {
		return nil, errors.New("配置不能为空")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Source{
		transcript: t,
		config:     config,
		dataChan:   make(chan core.ProbeEvent, config.BufferSize),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}, nil
}

// Target 返回记录中的目标
func (s *Source) Target() string {
	return s.transcript.Target
}

// Len 返回记录中的事件数
func (s *Source) Len() int {
	return len(s.transcript.Events)
}

// DataStream 实现core.DataSource接口
func (s *Source) DataStream() <-chan core.ProbeEvent {
	return s.dataChan
}

// Start 实现core.DataSource接口
func (s *Source) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		select {
		case <-s.stopChan:
			// 已经停止
			return
		default:
		}
		s.started = true
		go s.run()
	})
}

// Stop 实现core.DataSource接口
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		close(s.stopChan)
		started := s.started
		s.mu.Unlock()

		if started {
			<-s.doneChan
			return
		}
		// 未启动时由这里关闭通道，避免消费者永久阻塞
		close(s.dataChan)
		close(s.doneChan)
	})
}

// Done 返回在回放结束后关闭的通道
func (s *Source) Done() <-chan struct{} {
	return s.doneChan
}

func (s *Source) run() {
	defer close(s.doneChan)
	defer close(s.dataChan)

	var ticker *time.Ticker
	if s.config.Interval > 0 {
		ticker = time.NewTicker(s.config.Interval)
		defer ticker.Stop()
	}

	for i, event := range s.transcript.Events {
		if ticker != nil && i > 0 {
			select {
			case <-ticker.C:
			case <-s.stopChan:
				return
			}
		}

		// 回放不丢弃事件，通道满时阻塞等待
		select {
		case s.dataChan <- event:
		case <-s.stopChan:
			return
		}
	}
}
