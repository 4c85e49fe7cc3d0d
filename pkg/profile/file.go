package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"gopkg.in/yaml.v3"
)

// levelFile 关卡文件的结构
//
//	levels:
//	  - obstacle_scale: 1.5
//	    gap_scale: 0.5
//	  - obstacle_scale: 2.0
//
// 每一关未写的字段沿用上一关，第一关沿用默认难度
type levelFile struct {
	Levels []yaml.Node `yaml:"levels"`
}

// LoadLevels 从YAML读取关卡表
func LoadLevels(r io.Reader) ([]core.DifficultyProfile, error) {
	var doc levelFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoLevels
		}
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, ErrNoLevels
	}

	levels := make([]core.DifficultyProfile, 0, len(doc.Levels))
	prev := core.DefaultProfile()
	for i := range doc.Levels {
		p := prev
		if err := decodeLevel(&doc.Levels[i], &p); err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		levels = append(levels, p)
		prev = p
	}
	return levels, nil
}

// decodeLevel 将单个关卡节点解码到p上，未知字段报错
// Node.Decode不检查未知字段，这里重新编码后严格解码
func decodeLevel(node *yaml.Node, p *core.DifficultyProfile) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// OpenLevels 读取关卡文件
func OpenLevels(path string) ([]core.DifficultyProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	levels, err := LoadLevels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return levels, nil
}
