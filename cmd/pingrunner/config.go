package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Kevin-Rudy/pingrunner/pkg/engine"
	"github.com/Kevin-Rudy/pingrunner/pkg/pinger"
	"github.com/Kevin-Rudy/pingrunner/pkg/replay"
	"github.com/Kevin-Rudy/pingrunner/pkg/tui"
	"github.com/urfave/cli/v2"
)

// AppConfig 应用层配置聚合
type AppConfig struct {
	PingerConfig  *pinger.Config
	ReplayConfig  *replay.Config
	TUIConfig     *tui.Config
	EngineOptions []engine.Option
	Target        string // 实时模式的探测目标
	ReplayFile    string // 回放模式的记录文件
	Headless      bool   // 回放时不启动界面，按固定节拍输出文本
	StartLevel    int    // 起始关卡，从1开始
	LevelsFile    string // 关卡表文件，为空时使用内置关卡
	LogFile       string // 日志文件，为空时丢弃日志
}

// buildConfigFromCLI 从命令行参数构建配置
func buildConfigFromCLI(c *cli.Context) *AppConfig {
	// 构建 pinger 配置
	pingerConfig := pinger.DefaultConfig()
	if c.Bool("6") {
		pingerConfig.IPVersion = 6
	}
	if c.IsSet("interval") {
		pingerConfig.Interval = c.Duration("interval")
	}
	if c.IsSet("timeout") {
		pingerConfig.Timeout = c.Duration("timeout")
	}

	// 回放按探测间隔还原节奏
	replayConfig := replay.DefaultConfig()
	replayConfig.Interval = pingerConfig.Interval

	// 构建 TUI 配置
	tuiConfig := tui.DefaultConfig()
	if c.IsSet("refresh-rate") {
		tuiConfig.RefreshInterval = c.Duration("refresh-rate")
	}
	if c.IsSet("tick") {
		tuiConfig.TickInterval = c.Duration("tick")
	}
	if c.IsSet("velocity") {
		tuiConfig.Velocity = c.Float64("velocity")
	}
	if c.IsSet("level-distance") {
		tuiConfig.LevelDistance = c.Float64("level-distance")
	}
	if c.IsSet("view-distance") {
		tuiConfig.ViewDistance = c.Float64("view-distance")
	}

	// 构建引擎选项
	var engineOptions []engine.Option
	if c.IsSet("window") {
		engineOptions = append(engineOptions, engine.WithWindowSize(c.Int("window")))
	}
	if c.IsSet("seed") {
		engineOptions = append(engineOptions, engine.WithSeed(c.Int64("seed")))
	}

	config := &AppConfig{
		PingerConfig:  pingerConfig,
		ReplayConfig:  replayConfig,
		TUIConfig:     tuiConfig,
		EngineOptions: engineOptions,
		StartLevel:    c.Int("level"),
		LevelsFile:    c.String("levels"),
		LogFile:       c.String("log-file"),
	}

	if c.Command != nil && c.Command.Name == "replay" {
		config.ReplayFile = c.Args().First()
		config.Headless = c.Bool("headless")
	} else {
		config.Target = c.Args().First()
	}

	return config
}

// validateConfig 验证配置的合理性
func validateConfig(config *AppConfig) error {
	if err := config.PingerConfig.Validate(); err != nil {
		return fmt.Errorf("pinger配置错误: %v", err)
	}

	if err := config.ReplayConfig.Validate(); err != nil {
		return fmt.Errorf("回放配置错误: %v", err)
	}

	if err := config.TUIConfig.Validate(); err != nil {
		return fmt.Errorf("tui配置错误: %v", err)
	}

	if err := engine.NewConfigWithOptions(config.EngineOptions...).Validate(); err != nil {
		return fmt.Errorf("引擎配置错误: %v", err)
	}

	if config.StartLevel < 1 {
		return errors.New("起始关卡必须从1开始")
	}

	return nil
}

// openLogger 创建日志记录器，界面运行时日志不能写到终端
func openLogger(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return log.New(io.Discard, "", 0), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds), f, nil
}
