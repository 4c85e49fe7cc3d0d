package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Kevin-Rudy/pingrunner/pkg/core"
	"github.com/Kevin-Rudy/pingrunner/pkg/engine"
	"github.com/Kevin-Rudy/pingrunner/pkg/pinger"
	"github.com/Kevin-Rudy/pingrunner/pkg/profile"
	"github.com/Kevin-Rudy/pingrunner/pkg/replay"
	"github.com/Kevin-Rudy/pingrunner/pkg/tui"
	"github.com/urfave/cli/v2"
)

// runApp 实时模式，对目标持续探测并启动界面
func runApp(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("错误: 必须指定一个要探测的目标地址\n使用方法: pingrunner [选项] <目标主机>", 1)
	}

	// IP版本冲突检查
	if c.IsSet("4") && c.Bool("6") {
		return cli.Exit("错误: -4 和 -6 选项不能同时使用", 1)
	}

	appConfig := buildConfigFromCLI(c)
	if err := validateConfig(appConfig); err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	logger, closer, err := openLogger(appConfig.LogFile)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closer.Close()

	fmt.Printf("正在启动 %s v%s...\n", AppName, AppVersion)
	printRunningConfig(appConfig)
	showSystemInfo()

	fmt.Println("\n正在初始化探测器...")
	pingerInstance, err := pinger.NewPinger(appConfig.Target, appConfig.PingerConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建探测器: %v", err), 1)
	}
	fmt.Println("探测器初始化成功")

	return runSession(appConfig, appConfig.Target, pingerInstance, logger)
}

// runReplay 回放模式，从记录文件读取探测结果
func runReplay(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("错误: 必须指定一个记录文件\n使用方法: pingrunner replay [--headless] <记录文件>", 1)
	}

	appConfig := buildConfigFromCLI(c)
	if err := validateConfig(appConfig); err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	transcript, err := replay.Open(appConfig.ReplayFile)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法读取记录: %v", err), 1)
	}

	target := transcript.Target
	if target == "" {
		target = filepath.Base(appConfig.ReplayFile)
	}

	logger, closer, err := openLogger(appConfig.LogFile)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closer.Close()

	if appConfig.Headless {
		levels, err := newLevels(appConfig)
		if err != nil {
			return cli.Exit(fmt.Sprintf("无法读取关卡表: %v", err), 1)
		}
		eng, err := newEngine(appConfig, target, levels, logger)
		if err != nil {
			return cli.Exit(fmt.Sprintf("无法创建引擎: %v", err), 1)
		}

		h := &headless{
			out:           os.Stdout,
			engine:        eng,
			levels:        levels,
			interval:      appConfig.ReplayConfig.Interval,
			tick:          appConfig.TUIConfig.TickInterval,
			velocity:      appConfig.TUIConfig.Velocity,
			levelDistance: appConfig.TUIConfig.LevelDistance,
		}
		h.run(transcript.Events)
		return nil
	}

	source, err := replay.NewSource(transcript, appConfig.ReplayConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建回放数据源: %v", err), 1)
	}

	return runSession(appConfig, target, source, logger)
}

// runSession 创建引擎并运行界面，退出后输出统计
func runSession(appConfig *AppConfig, target string, source core.DataSource, logger *log.Logger) error {
	levels, err := newLevels(appConfig)
	if err != nil {
		source.Stop()
		return cli.Exit(fmt.Sprintf("无法读取关卡表: %v", err), 1)
	}
	eng, err := newEngine(appConfig, target, levels, logger)
	if err != nil {
		source.Stop()
		return cli.Exit(fmt.Sprintf("无法创建引擎: %v", err), 1)
	}

	fmt.Println("\n正在启动TUI界面...")
	printUsageInstructions()

	// 启动TUI界面 - 这会阻塞直到用户退出
	tuiInstance := tui.NewTUI(eng, source, levels, appConfig.TUIConfig, logger)
	runErr := tuiInstance.Run()

	printSummary(os.Stdout, tuiInstance.Summary())

	if runErr != nil {
		return cli.Exit(fmt.Sprintf("TUI运行出错: %v", runErr), 1)
	}
	return nil
}

// newLevels 创建关卡表并定位到起始关卡
func newLevels(appConfig *AppConfig) (*profile.LevelProvider, error) {
	table := profile.DefaultLevels()
	if appConfig.LevelsFile != "" {
		loaded, err := profile.OpenLevels(appConfig.LevelsFile)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	levels := profile.NewLevelProvider(table...)
	levels.SetLevel(appConfig.StartLevel - 1)
	return levels, nil
}

// newEngine 创建引擎，难度来自关卡表并叠加环境变量覆盖
func newEngine(appConfig *AppConfig, target string, levels *profile.LevelProvider, logger *log.Logger) (*engine.Engine, error) {
	opts := append([]engine.Option{
		engine.WithLogger(logger),
		engine.WithStateObserver(func(from, to engine.BufferState) {
			logger.Printf("缓冲区状态 %s -> %s", from, to)
		}),
	}, appConfig.EngineOptions...)

	return engine.New(target, profile.NewEnvProvider(levels), opts...)
}

// printRunningConfig 打印运行配置信息
func printRunningConfig(config *AppConfig) {
	fmt.Printf("目标地址: %s\n", config.Target)
	fmt.Printf("探测间隔: %v\n", config.PingerConfig.Interval)
	fmt.Printf("探测超时: %v\n", config.PingerConfig.Timeout)
	fmt.Printf("奔跑速度: %.1f\n", config.TUIConfig.Velocity)
	fmt.Printf("起始关卡: %d\n", config.StartLevel)
}
