package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260112-go-pkg-confdiff/internal/config"
	httpserver "github.com/lwmacct/260112-go-pkg-confdiff/internal/server"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/submit"
	"github.com/lwmacct/260112-go-pkg-confdiff/internal/watcher"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/cfgload"
	"github.com/lwmacct/260112-go-pkg-confdiff/pkg/confdiff"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := cfgload.LoadCmd(cmd, config.DefaultConfig(), config.AppName,
		cfgload.WithEnvPrefix(config.EnvPrefix),
	)
	if err != nil {
		return err
	}

	analyzer := confdiff.NewAnalyzer(cfg.Configs.Root)
	if err := analyzer.Refresh(); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}
	slog.Info("Loaded config documents", "root", cfg.Configs.Root, "count", len(analyzer.Documents()))

	// 文件监听（可选）：失败降级为手动刷新，不阻止启动
	if cfg.Watch.Enabled {
		w, err := watcher.New(cfg.Configs.Root, cfg.Watch.Debounce, func() {
			if err := analyzer.Refresh(); err != nil {
				slog.Error("Auto refresh failed", "error", err)
			} else {
				slog.Info("Configs refreshed on file change")
			}
		})
		if err != nil {
			slog.Warn("File watcher unavailable, manual refresh required", "error", err)
		} else {
			defer func() { _ = w.Close() }()
			slog.Info("File watcher started", "root", cfg.Configs.Root)
		}
	}

	submitter := submit.New(cfg.Slurm, cfg.SSH)
	api := httpserver.New(analyzer, submitter, cfg.Server.Assets)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  cfg.Server.Idletime,
	}

	// 启动服务器（非阻塞）
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down")

	// 优雅关闭
	// 使用 WithoutCancel 保持 context 链，同时防止父 context 取消影响 shutdown
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped gracefully")

	return nil
}
