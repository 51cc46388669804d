// Package submit 提供不经 Web UI 的作业提交命令。
package submit

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command"
)

// Command 提交命令
var Command = &cli.Command{
	Name:   "submit",
	Usage:  "渲染 sbatch 脚本并提交 SLURM 作业",
	Action: action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "job-name",
			Aliases:  []string{"j"},
			Usage:    "作业名称",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "config-path",
			Aliases:  []string{"c"},
			Usage:    "作业使用的实验配置路径",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "memory",
			Value: "64G",
			Usage: "内存申请量",
		},
		&cli.BoolFlag{
			Name:  "gpu",
			Usage: "申请 1 块 GPU",
		},
		&cli.StringFlag{
			Name:  "slurm-partition",
			Value: command.Defaults.Slurm.Partition,
			Usage: "SLURM 分区",
		},
		&cli.StringFlag{
			Name:  "slurm-template-file",
			Value: command.Defaults.Slurm.TemplateFile,
			Usage: "sbatch 模板文件路径",
		},
		&cli.StringFlag{
			Name:  "ssh-host",
			Value: command.Defaults.SSH.Host,
			Usage: "登录节点主机名",
		},
	},
}
