package main

import (
	"fmt"
	"time"

	"github.com/Kevin-Rudy/pingrunner/pkg/pinger"
	"github.com/urfave/cli/v2"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:      AppName,
		Version:   AppVersion,
		Usage:     AppDesc,
		Flags:     append(createPingFlags(), createGameFlags()...),
		Action:    runApp,
		ArgsUsage: "<目标主机>",
	}

	app.Commands = createCommands()

	return app
}

// createPingFlags 创建探测相关的参数定义
func createPingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "4",
			Usage: "使用IPv4进行域名解析（默认）",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "6",
			Usage: "使用IPv6进行域名解析",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   200 * time.Millisecond,
			Usage:   "探测间隔，回放时也用于还原节奏 (例如: 100ms, 1s)",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Value:   time.Second,
			Usage:   "单次探测超时时间 (例如: 1s, 500ms)",
		},
	}
}

// createGameFlags 创建游戏相关的参数定义，实时模式和回放共用
func createGameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  "velocity",
			Value: 24,
			Usage: "奔跑速度，世界单位每秒",
		},
		&cli.DurationFlag{
			Name:  "tick",
			Value: 50 * time.Millisecond,
			Usage: "游戏步进间隔",
		},
		&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   100 * time.Millisecond,
			Usage:   "UI刷新频率 (例如: 100ms, 500ms)",
		},
		&cli.Float64Flag{
			Name:  "view-distance",
			Value: 80,
			Usage: "屏幕可见的世界宽度",
		},
		&cli.IntFlag{
			Name:  "window",
			Value: 20,
			Usage: "延迟严重度的滚动窗口大小",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "地形抖动的随机种子，相同输入和种子生成相同地形",
		},
		&cli.IntFlag{
			Name:  "level",
			Value: 1,
			Usage: "起始关卡",
		},
		&cli.StringFlag{
			Name:  "levels",
			Usage: "YAML格式的关卡表文件，默认使用内置关卡",
		},
		&cli.Float64Flag{
			Name:  "level-distance",
			Value: 500,
			Usage: "每前进这么远升一级，0表示不升级",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "日志输出文件，默认不记录",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "replay",
			Usage:     "回放保存的ping输出记录",
			ArgsUsage: "<记录文件>",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  "headless",
					Usage: "不启动界面，按固定节拍输出地形和统计",
				},
				&cli.DurationFlag{
					Name:    "interval",
					Aliases: []string{"i"},
					Value:   200 * time.Millisecond,
					Usage:   "记录中相邻探测的间隔",
				},
			}, createGameFlags()...),
			Action: runReplay,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				osName, _, impl := pinger.GetSystemInfo()
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s\n", osName)
				fmt.Printf("实现: %s\n", impl)
				return nil
			},
		},
	}
}
