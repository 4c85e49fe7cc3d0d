package profile

import (
	"fmt"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"github.com/caarlos0/env/v11"
)

// DefaultEnvPrefix 难度覆盖环境变量的前缀
const DefaultEnvPrefix = "PINGRUNNER_"

// EnvProvider 在基础提供者的结果上叠加环境变量覆盖
// 例如 PINGRUNNER_OBSTACLE_SCALE=2.5
type EnvProvider struct {
	Base   core.ProfileProvider // 基础提供者，为nil时使用默认难度
	Prefix string               // 环境变量前缀
}

// NewEnvProvider 创建环境变量难度提供者
func NewEnvProvider(base core.ProfileProvider) *EnvProvider {
	return &EnvProvider{
		Base:   base,
		Prefix: DefaultEnvPrefix,
	}
}

// CurrentProfile 实现core.ProfileProvider接口，每次调用都重新读取环境变量
func (e *EnvProvider) CurrentProfile() (core.DifficultyProfile, error) {
	profile := core.DefaultProfile()
	if e.Base != nil {
		p, err := e.Base.CurrentProfile()
		if err != nil {
			return core.DifficultyProfile{}, err
		}
		profile = p
	}

	// 未设置的变量保持基础值不变
	if err := env.ParseWithOptions(&profile, env.Options{Prefix: e.Prefix}); err != nil {
		return core.DifficultyProfile{}, fmt.Errorf("parse env: %w", err)
	}
	return profile, nil
}
