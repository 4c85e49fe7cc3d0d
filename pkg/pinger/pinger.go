// Package pinger 实现了core.DataSource接口，对单个目标持续发送ICMP回显请求
// 根据操作系统和用户权限自动选择最合适的底层实现
package pinger

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// payload ICMP回显请求携带的数据
var payload = []byte("pingrunner")

// basePinger 定义了所有pinger实现的基本结构
type basePinger struct {
	target    string               // ping目标
	config    *Config              // 配置信息
	dataChan  chan core.ProbeEvent // 数据输出通道
	stopChan  chan struct{}        // 停止信号通道
	wg        sync.WaitGroup       // 等待组，用于优雅关闭
	running   bool                 // 运行状态
	runningMu sync.RWMutex         // 保护running状态的锁
	dropped   int64                // 通道满时丢弃的事件数
	droppedMu sync.Mutex
}

// newBasePinger 创建基础pinger结构
func newBasePinger(target string, config *Config) *basePinger {
	return &basePinger{
		target:   target,
		config:   config,
		dataChan: make(chan core.ProbeEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}
}

// DataStream 实现core.DataSource接口
func (bp *basePinger) DataStream() <-chan core.ProbeEvent {
	return bp.dataChan
}

// Stop 实现core.DataSource接口
func (bp *basePinger) Stop() {
	bp.runningMu.Lock()
	if !bp.running {
		bp.runningMu.Unlock()
		return
	}
	bp.running = false
	bp.runningMu.Unlock()

	// 发送停止信号
	close(bp.stopChan)

	// 等待所有goroutine结束
	bp.wg.Wait()

	// 关闭数据通道
	close(bp.dataChan)
}

// isRunning 检查是否正在运行
func (bp *basePinger) isRunning() bool {
	bp.runningMu.RLock()
	defer bp.runningMu.RUnlock()
	return bp.running
}

// setRunning 设置运行状态
func (bp *basePinger) setRunning(running bool) {
	bp.runningMu.Lock()
	defer bp.runningMu.Unlock()
	bp.running = running
}

// Dropped 返回因通道已满而丢弃的事件数
func (bp *basePinger) Dropped() int64 {
	bp.droppedMu.Lock()
	defer bp.droppedMu.Unlock()
	return bp.dropped
}

// icmpSeq 把单调序列号折叠为16位ICMP序列号
func icmpSeq(seq int64) int {
	return int(seq & 0xffff)
}

// sendProbe 发送探测事件到数据通道，latency为NaN表示超时
func (bp *basePinger) sendProbe(seq int64, latency float64, sendTime, receiveTime time.Time) {
	if !bp.isRunning() {
		return
	}

	event := core.ProbeEvent{
		Target:      bp.target,
		Kind:        core.ProbeSuccess,
		Sequence:    seq,
		LatencyMs:   latency,
		SendTime:    sendTime,
		ReceiveTime: receiveTime,
	}
	if math.IsNaN(latency) {
		event.Kind = core.ProbeTimeout
	}

	select {
	case bp.dataChan <- event:
		// 成功发送
	case <-bp.stopChan:
		// 停止信号，不再发送
		return
	default:
		// 通道满了，丢弃这个事件，引擎会把缺失的序列号记为超时
		bp.droppedMu.Lock()
		bp.dropped++
		bp.droppedMu.Unlock()
	}
}

// sendTimeout 发送超时事件
func (bp *basePinger) sendTimeout(seq int64, sendTime time.Time) {
	bp.sendProbe(seq, math.NaN(), sendTime, time.Now())
}

// NewPinger 创建新的Pinger实例
func NewPinger(target string, config *Config) (core.DataSource, error) {
	if target == "" {
		return nil, errors.New("必须指定一个目标")
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 验证目标地址
	if err := config.ValidateTarget(target); err != nil {
		return nil, err
	}

	// 获取当前平台的能力实现
	platform := getPlatformCapability()

	// 优先尝试特权模式（所有平台统一用raw socket）
	if platform.hasPrivilegedAccess() {
		return platform.createPrivilegedPinger(target, config)
	}

	// 降级到非特权模式（各平台不同的实现）
	return platform.createUnprivilegedPinger(target, config)
}

// GetSystemInfo 获取完整的系统信息
// 返回操作系统名称、权限状态和实现类型
func GetSystemInfo() (osName, privilegeStatus, implementationType string) {
	switch runtime.GOOS {
	case "windows":
		osName = "Windows"
	case "linux":
		osName = "Linux"
	case "darwin":
		osName = "macOS"
	default:
		osName = runtime.GOOS
	}

	hasPriv := HasPrivilegedAccess()

	switch runtime.GOOS {
	case "windows":
		if hasPriv {
			privilegeStatus = "管理员模式 (Raw Socket)"
			implementationType = "Raw Socket"
		} else {
			privilegeStatus = "普通用户模式 (Windows API)"
			implementationType = "Windows ICMP API"
		}
	case "linux":
		if hasPriv {
			privilegeStatus = "特权模式 (Raw Socket)"
			implementationType = "Linux Raw Socket"
		} else {
			privilegeStatus = "非特权模式 (DGRAM Socket)"
			implementationType = "Linux DGRAM Socket"
		}
	case "darwin":
		if hasPriv {
			privilegeStatus = "特权模式 (Root权限)"
			implementationType = "macOS Raw Socket"
		} else {
			privilegeStatus = "权限不足 (需要sudo)"
			implementationType = "macOS Raw Socket (未启用)"
		}
	default:
		if hasPriv {
			privilegeStatus = "特权模式"
			implementationType = "通用Raw Socket"
		} else {
			privilegeStatus = "权限不足"
			implementationType = "通用Raw Socket (需要提权)"
		}
	}

	return
}

// HasPrivilegedAccess 检查是否有特权访问能力
func HasPrivilegedAccess() bool {
	return getPlatformCapability().hasPrivilegedAccess()
}
