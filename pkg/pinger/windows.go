//go:build windows

// Package pinger - Windows非特权模式实现
// 使用Icmp.dll系统调用，适用于Windows系统
package pinger

import (
	"errors"
	"math"
	"net"
	"syscall"
	"time"
	"unsafe"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"golang.org/x/sys/windows"
)

var (
	// 加载Icmp.dll库
	icmpDLL = windows.NewLazyDLL("Icmp.dll")

	// 获取函数地址
	icmpCreateFile  = icmpDLL.NewProc("IcmpCreateFile")
	icmpCloseHandle = icmpDLL.NewProc("IcmpCloseHandle")
	icmpSendEcho    = icmpDLL.NewProc("IcmpSendEcho")
)

// ICMP_ECHO_REPLY Windows ICMP回复结构体
type ICMP_ECHO_REPLY struct {
	Address       uint32
	Status        uint32
	RoundTripTime uint32
	DataSize      uint16
	Reserved      uint16
	Data          uintptr
	Options       ICMP_OPTIONS
}

// ICMP_OPTIONS Windows ICMP选项结构体
type ICMP_OPTIONS struct {
	Ttl         uint8
	Tos         uint8
	Flags       uint8
	OptionsSize uint8
	OptionsData uintptr
}

// windowsPinger Windows非特权模式的ping实现
type windowsPinger struct {
	*basePinger
	icmpHandle syscall.Handle // ICMP句柄
}

// newWindowsPinger 创建Windows非特权模式的pinger实例
func newWindowsPinger(target string, config *Config) (core.DataSource, error) {
	if config.IPVersion == 6 {
		return nil, errors.New("Windows非特权模式仅支持IPv4，请以管理员身份运行")
	}

	p := &windowsPinger{
		basePinger: newBasePinger(target, config),
	}

	// 创建ICMP句柄
	ret, _, err := icmpCreateFile.Call()
	if ret == 0 || ret == uintptr(syscall.InvalidHandle) {
		return nil, err
	}

	p.icmpHandle = syscall.Handle(ret)
	return p, nil
}

// Start 实现core.DataSource接口，启动ping操作
func (p *windowsPinger) Start() {
	p.setRunning(true)
	p.wg.Add(1)
	go p.run()
}

// run 按间隔持续探测目标
func (p *windowsPinger) run() {
	defer p.wg.Done()

	var seq int64

	// 解析目标地址
	dst, err := net.ResolveIPAddr(p.config.GetIPProtocol(), p.target)
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}

	// 将IP地址转换为32位整数（网络字节序）
	ip := dst.IP.To4()
	destAddr := uint32(ip[0]) | (uint32(ip[1]) << 8) | (uint32(ip[2]) << 16) | (uint32(ip[3]) << 24)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.sendPing(destAddr, seq)
			seq++
		}
	}
}

// sendPing 发送单个ping包
// IcmpSendEcho自行管理ICMP序列号，seq只用于事件编号
func (p *windowsPinger) sendPing(destAddr uint32, seq int64) {
	// 接收缓冲区需要容纳ICMP_ECHO_REPLY结构和回显数据
	replySize := unsafe.Sizeof(ICMP_ECHO_REPLY{}) + uintptr(len(payload)) + 8
	replyBuffer := make([]byte, replySize)

	// 设置超时（毫秒）
	timeoutMs := uint32(p.config.Timeout.Milliseconds())

	sendTime := time.Now()

	ret, _, _ := icmpSendEcho.Call(
		uintptr(p.icmpHandle),                    // ICMP句柄
		uintptr(destAddr),                        // 目标IP地址
		uintptr(unsafe.Pointer(&payload[0])),     // 发送数据
		uintptr(len(payload)),                    // 发送数据长度
		0,                                        // ICMP选项（NULL）
		uintptr(unsafe.Pointer(&replyBuffer[0])), // 接收缓冲区
		uintptr(len(replyBuffer)),                // 接收缓冲区大小
		uintptr(timeoutMs),                       // 超时时间（毫秒）
	)

	receiveTime := time.Now()

	if ret == 0 {
		// 请求失败或超时
		p.sendProbe(seq, math.NaN(), sendTime, receiveTime)
		return
	}

	reply := (*ICMP_ECHO_REPLY)(unsafe.Pointer(&replyBuffer[0]))
	if reply.Status != 0 { // IP_SUCCESS
		p.sendProbe(seq, math.NaN(), sendTime, receiveTime)
		return
	}

	// 优先使用Windows API返回的往返时间
	rtt := receiveTime.Sub(sendTime)
	if reply.RoundTripTime > 0 {
		rtt = time.Duration(reply.RoundTripTime) * time.Millisecond
	}

	latencyMs := float64(rtt.Nanoseconds()) / 1e6
	p.sendProbe(seq, latencyMs, sendTime, receiveTime)
}

// Stop 停止Windows模式的pinger
func (p *windowsPinger) Stop() {
	p.basePinger.Stop()

	// 关闭ICMP句柄
	if p.icmpHandle != syscall.InvalidHandle {
		icmpCloseHandle.Call(uintptr(p.icmpHandle))
		p.icmpHandle = syscall.InvalidHandle
	}
}

// checkWindowsAdmin 检查是否具有Windows管理员权限
func checkWindowsAdmin() bool {
	var sid *windows.SID

	// 获取管理员组的SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	// 获取当前进程的token
	token := windows.Token(0)

	// 检查是否是管理员组成员
	isMember, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return isMember
}
