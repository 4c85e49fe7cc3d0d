// Package replay 解析ping命令的输出记录，并作为core.DataSource回放
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
)

// ErrEmptyTranscript 记录中没有任何探测结果
var ErrEmptyTranscript = errors.New("记录中没有探测结果")

var (
	headerRe    = regexp.MustCompile(`^PING\s+(\S+)`)
	stampRe     = regexp.MustCompile(`^\[(\d+(?:\.\d+)?)\]\s*`)
	replyRe     = regexp.MustCompile(`icmp_seq=(\d+).*\btime[=<]\s*([\d.]+)\s*ms`)
	timeoutRe   = regexp.MustCompile(`Request timeout for icmp_seq[= ](\d+)`)
	noAnswerRe  = regexp.MustCompile(`no answer yet for icmp_seq=(\d+)`)
	unreachRe   = regexp.MustCompile(`icmp_seq=(\d+).*Unreachable|Unreachable.*icmp_seq=(\d+)`)
	seqModulus  = int64(1 << 16)
	wrapBackoff = seqModulus / 2
)

// Transcript 解析后的ping记录
type Transcript struct {
	Target string            // PING行中的目标，缺失时为空
	Events []core.ProbeEvent // 按序列号递增的探测事件
}

// Open 读取并解析记录文件
func Open(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse 解析Linux或macOS的ping输出
// 重复应答(DUP!)和序列号不递增的行被忽略，16位序列号回绕后继续递增
func Parse(r io.Reader) (*Transcript, error) {
	t := &Transcript{}
	seq := newSeqUnwrapper()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			if t.Target == "" {
				t.Target = m[1]
			}
			continue
		}

		// ping -D 输出的时间戳前缀
		var stamp time.Time
		if m := stampRe.FindStringSubmatch(line); m != nil {
			stamp = parseStamp(m[1])
			line = line[len(m[0]):]
		}

		if strings.Contains(line, "DUP!") {
			continue
		}

		event, raw, ok, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("第%d行: %w", lineNo, err)
		}
		if !ok {
			continue
		}

		n, fresh := seq.next(raw)
		if !fresh {
			continue
		}
		event.Sequence = n
		event.Target = t.Target
		if !stamp.IsZero() {
			event.ReceiveTime = stamp
			event.SendTime = stamp
			if !event.IsTimeout() {
				event.SendTime = stamp.Add(-time.Duration(event.LatencyMs * float64(time.Millisecond)))
			}
		}
		t.Events = append(t.Events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(t.Events) == 0 {
		return nil, ErrEmptyTranscript
	}
	return t, nil
}

// parseLine 识别单行探测结果，返回原始序列号
func parseLine(line string) (core.ProbeEvent, int64, bool, error) {
	if m := replyRe.FindStringSubmatch(line); m != nil {
		raw, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return core.ProbeEvent{}, 0, false, err
		}
		ms, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return core.ProbeEvent{}, 0, false, fmt.Errorf("无效的延迟 %q: %w", m[2], err)
		}
		return core.NewSuccess(0, ms), raw, true, nil
	}

	for _, re := range []*regexp.Regexp{timeoutRe, noAnswerRe, unreachRe} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		digits := m[1]
		if digits == "" && len(m) > 2 {
			digits = m[2]
		}
		raw, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return core.ProbeEvent{}, 0, false, err
		}
		return core.NewTimeout(0), raw, true, nil
	}

	return core.ProbeEvent{}, 0, false, nil
}

func parseStamp(s string) time.Time {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// seqUnwrapper 把16位ICMP序列号还原成单调递增的序列号
type seqUnwrapper struct {
	epoch   int64
	lastRaw int64
	last    int64
}

func newSeqUnwrapper() *seqUnwrapper {
	return &seqUnwrapper{lastRaw: -1, last: -1}
}

func (s *seqUnwrapper) next(raw int64) (int64, bool) {
	raw %= seqModulus
	if s.lastRaw >= 0 && raw < s.lastRaw && s.lastRaw-raw > wrapBackoff {
		s.epoch += seqModulus
	}
	n := s.epoch + raw
	if n <= s.last {
		return 0, false
	}
	s.lastRaw = raw
	s.last = n
	return n, true
}
