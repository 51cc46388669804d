package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command/diff"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command/server"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/command/submit"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入。
var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "confdiff",
		Usage:   "YAML 实验配置差异查看与 SLURM 作业提交工具",
		Version: version,
		Commands: []*cli.Command{
			server.Command,
			diff.Command,
			submit.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
