// Package server 提供 HTTP 服务器命令。
package server

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command"
)

// Command 服务器命令
var Command = &cli.Command{
	Name:   "server",
	Usage:  "启动配置差异查看 Web 服务",
	Action: action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server-addr",
			Aliases: []string{"a"},
			Value:   command.Defaults.Server.Addr,
			Usage:   "服务器监听地址",
		},
		&cli.StringFlag{
			Name:  "server-assets",
			Value: command.Defaults.Server.Assets,
			Usage: "前端静态文件目录路径",
		},
		&cli.DurationFlag{
			Name:  "server-timeout",
			Value: command.Defaults.Server.Timeout,
			Usage: "HTTP 读写超时",
		},
		&cli.DurationFlag{
			Name:  "server-idletime",
			Value: command.Defaults.Server.Idletime,
			Usage: "HTTP 空闲超时",
		},
		&cli.StringFlag{
			Name:    "configs-root",
			Aliases: []string{"r"},
			Value:   command.Defaults.Configs.Root,
			Usage:   "YAML 实验配置根目录",
		},
		&cli.BoolFlag{
			Name:  "watch-enabled",
			Value: command.Defaults.Watch.Enabled,
			Usage: "启用文件变更自动刷新",
		},
		&cli.DurationFlag{
			Name:  "watch-debounce",
			Value: command.Defaults.Watch.Debounce,
			Usage: "刷新防抖间隔",
		},
	},
}
