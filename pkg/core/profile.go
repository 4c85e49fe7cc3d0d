package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DifficultyProfile 难度配置，不可变的值类型
type DifficultyProfile struct {
	// ObstacleScale 峰高随严重度的放大系数
	ObstacleScale      float64 `validate:"gte=0,lte=10" env:"OBSTACLE_SCALE" yaml:"obstacle_scale"`
	// GapScale 缺口宽度随超时惩罚的放大系数
	GapScale           float64 `validate:"gte=0,lte=10" env:"GAP_SCALE" yaml:"gap_scale"`
	// ClusterDensity 障碍簇峰数随严重度的增量
	ClusterDensity     float64 `validate:"gte=0,lte=16" env:"CLUSTER_DENSITY" yaml:"cluster_density"`
	// PeakVarianceFactor 峰高抖动幅度
	PeakVarianceFactor float64 `validate:"gte=0,lt=1" env:"PEAK_VARIANCE_FACTOR" yaml:"peak_variance_factor"`
}

// DefaultProfile 返回内置默认难度
func DefaultProfile() DifficultyProfile {
	return DifficultyProfile{
		ObstacleScale:      1.5,
		GapScale:           0.5,
		ClusterDensity:     4,
		PeakVarianceFactor: 0.15,
	}
}

// Validate 验证难度配置的合理性
func (p DifficultyProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}
