package submit

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
	jobsubmit "github.com/lwmacct/260112-go-pkg-confdiff/internal/submit"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/cfgload"
)

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := cfgload.LoadCmd(cmd, config.DefaultConfig(), config.AppName,
		cfgload.WithEnvPrefix(config.EnvPrefix),
	)
	if err != nil {
		return err
	}

	submitter := jobsubmit.New(cfg.Slurm, cfg.SSH)
	result, err := submitter.Submit(ctx, jobsubmit.Request{
		JobName:    cmd.String("job-name"),
		ConfigPath: cmd.String("config-path"),
		Memory:     cmd.String("memory"),
		UseGPU:     cmd.Bool("gpu"),
	})
	if err != nil {
		return err
	}

	if result.Manual {
		fmt.Printf("Automatic submission unavailable: %s\n", result.Reason)
		fmt.Print(result.Instructions)

		return nil
	}

	fmt.Println(result.Message)

	return nil
}
