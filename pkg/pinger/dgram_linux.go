//go:build linux

// Package pinger - Linux非特权模式实现
// 使用SOCK_DGRAM类型的ICMP套接字，仅适用于Linux系统
package pinger

import (
	"net"
	"syscall"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// dgramPinger Linux非特权模式的ping实现
type dgramPinger struct {
	*basePinger
	sock int // ICMP DGRAM socket
}

// newLinuxDgramPinger 创建Linux非特权模式的pinger实例
func newLinuxDgramPinger(target string, config *Config) (core.DataSource, error) {
	p := &dgramPinger{
		basePinger: newBasePinger(target, config),
	}

	family, proto := syscall.AF_INET, syscall.IPPROTO_ICMP
	if config.IPVersion == 6 {
		family, proto = syscall.AF_INET6, syscall.IPPROTO_ICMPV6
	}

	sock, err := syscall.Socket(family, syscall.SOCK_DGRAM, proto)
	if err != nil {
		return nil, err
	}
	p.sock = sock

	return p, nil
}

// Start 实现core.DataSource接口，启动ping操作
func (p *dgramPinger) Start() {
	p.setRunning(true)
	p.wg.Add(1)
	go p.run()
}

// run 按间隔持续探测目标
func (p *dgramPinger) run() {
	defer p.wg.Done()

	var seq int64

	// 解析目标地址（地址已在NewPinger中预验证，此处失败属于临时网络问题）
	dst, err := net.ResolveIPAddr(p.config.GetIPProtocol(), p.target)
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.sendPing(dst, seq)
			seq++
		}
	}
}

// sockaddr 把目标地址转换为系统调用使用的结构
func (p *dgramPinger) sockaddr(dst *net.IPAddr) syscall.Sockaddr {
	if p.config.IPVersion == 6 {
		sa := &syscall.SockaddrInet6{}
		copy(sa.Addr[:], dst.IP.To16())
		return sa
	}
	sa := &syscall.SockaddrInet4{}
	copy(sa.Addr[:], dst.IP.To4())
	return sa
}

// sendPing 发送单个ping包并等待回复
// DGRAM套接字的回显ID由内核改写，只按序列号匹配
func (p *dgramPinger) sendPing(dst *net.IPAddr, seq int64) {
	data, err := echoMessage(p.config.IPVersion, seq).Marshal(nil)
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}

	sendTime := time.Now()
	if err := syscall.Sendto(p.sock, data, 0, p.sockaddr(dst)); err != nil {
		p.sendTimeout(seq, sendTime)
		return
	}

	reply := make([]byte, 1500)
	for {
		remaining := p.config.Timeout - time.Since(sendTime)
		if remaining <= 0 {
			p.sendTimeout(seq, sendTime)
			return
		}

		// 设置接收超时
		tv := syscall.NsecToTimeval(remaining.Nanoseconds())
		if err := syscall.SetsockoptTimeval(p.sock, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			p.sendTimeout(seq, sendTime)
			return
		}

		n, _, err := syscall.Recvfrom(p.sock, reply, 0)
		if err != nil {
			// 超时或其他错误
			p.sendTimeout(seq, sendTime)
			return
		}

		if matchDgramEcho(p.config.IPVersion, reply[:n], seq) {
			receiveTime := time.Now()
			latencyMs := float64(receiveTime.Sub(sendTime).Nanoseconds()) / 1e6
			p.sendProbe(seq, latencyMs, sendTime, receiveTime)
			return
		}
	}
}

// Stop 停止Linux DGRAM模式的pinger
func (p *dgramPinger) Stop() {
	p.basePinger.Stop()

	// 关闭socket
	if p.sock > 0 {
		syscall.Close(p.sock)
		p.sock = -1
	}
}
