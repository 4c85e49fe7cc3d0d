// Package pinger - 特权模式实现
// 使用原始套接字，需要管理员/root权限，但支持所有操作系统
package pinger

import (
	"net"
	"os"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58
)

// privilegedPinger 特权模式的ping实现
type privilegedPinger struct {
	*basePinger
}

// newPrivilegedPinger 创建特权模式的pinger实例
func newPrivilegedPinger(target string, config *Config) (core.DataSource, error) {
	p := &privilegedPinger{
		basePinger: newBasePinger(target, config),
	}
	return p, nil
}

// Start 实现core.DataSource接口，启动ping操作
func (p *privilegedPinger) Start() {
	p.setRunning(true)
	p.wg.Add(1)
	go p.run()
}

// run 按间隔持续探测目标
func (p *privilegedPinger) run() {
	defer p.wg.Done()

	var seq int64

	// 解析目标地址（地址已在NewPinger中预验证，此处失败属于临时网络问题）
	dst, err := net.ResolveIPAddr(p.config.GetIPProtocol(), p.target)
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}

	// 创建原始套接字
	protocol := "ip4:icmp"
	if p.config.IPVersion == 6 {
		protocol = "ip6:ipv6-icmp"
	}
	conn, err := net.Dial(protocol, dst.String())
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.sendPing(conn, seq)
			seq++
		}
	}
}

// echoMessage 构建与IP版本匹配的回显请求
func echoMessage(ipVersion int, seq int64) *icmp.Message {
	var typ icmp.Type = ipv4.ICMPTypeEcho
	if ipVersion == 6 {
		typ = ipv6.ICMPTypeEchoRequest
	}
	return &icmp.Message{
		Type: typ,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  icmpSeq(seq),
			Data: payload,
		},
	}
}

// parseEcho 解析回显应答
func parseEcho(ipVersion int, data []byte) (*icmp.Echo, bool) {
	proto := protocolICMP
	if ipVersion == 6 {
		proto = protocolIPv6ICMP
	}

	msg, err := icmp.ParseMessage(proto, data)
	if err != nil {
		return nil, false
	}
	if msg.Type != ipv4.ICMPTypeEchoReply && msg.Type != ipv6.ICMPTypeEchoReply {
		return nil, false
	}

	echo, ok := msg.Body.(*icmp.Echo)
	return echo, ok
}

// matchEcho 检查回复是否对应本进程的第seq个请求
func matchEcho(ipVersion int, data []byte, seq int64) bool {
	echo, ok := parseEcho(ipVersion, data)
	return ok && echo.ID == (os.Getpid()&0xffff) && echo.Seq == icmpSeq(seq)
}

// matchDgramEcho 同matchEcho，但不检查ID
func matchDgramEcho(ipVersion int, data []byte, seq int64) bool {
	echo, ok := parseEcho(ipVersion, data)
	return ok && echo.Seq == icmpSeq(seq)
}

// sendPing 发送单个ping包并等待匹配的回复
func (p *privilegedPinger) sendPing(conn net.Conn, seq int64) {
	data, err := echoMessage(p.config.IPVersion, seq).Marshal(nil)
	if err != nil {
		p.sendTimeout(seq, time.Now())
		return
	}

	// 记录发送时间
	sendTime := time.Now()
	conn.SetDeadline(sendTime.Add(p.config.Timeout))

	if _, err := conn.Write(data); err != nil {
		p.sendTimeout(seq, sendTime)
		return
	}

	// 读取回复，跳过之前迟到的应答
	reply := make([]byte, 1500)
	for {
		n, err := conn.Read(reply)
		if err != nil {
			p.sendTimeout(seq, sendTime)
			return
		}

		if matchEcho(p.config.IPVersion, reply[:n], seq) {
			receiveTime := time.Now()
			latencyMs := float64(receiveTime.Sub(sendTime).Nanoseconds()) / 1e6
			p.sendProbe(seq, latencyMs, sendTime, receiveTime)
			return
		}
	}
}
