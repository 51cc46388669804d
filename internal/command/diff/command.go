// Package diff 提供一次性的本地差异命令。
package diff

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command"
)

// Command 差异命令
var Command = &cli.Command{
	Name:      "diff",
	Usage:     "对比配置目录并输出组内差异",
	ArgsUsage: "[dir]",
	Action:    action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "configs-root",
			Aliases: []string{"r"},
			Value:   command.Defaults.Configs.Root,
			Usage:   "YAML 实验配置根目录",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "以 JSON 输出",
		},
	},
}
