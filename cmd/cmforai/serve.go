package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kurtatter/cmforai/internal/config"
	"github.com/kurtatter/cmforai/internal/logger"
	"github.com/kurtatter/cmforai/internal/server"
)

func newServeCmd(flags *flagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generation requests over JSON-RPC 2.0 on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	registerFlags(cmd, flags)
	return cmd
}

func runServe(cmd *cobra.Command, flags *flagSet) error {
	// No project root yet: requests carry their own. Only the global
	// config applies here.
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	applyFlags(cfg, flags)

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logger.Init(logCfg)

	store, metaCache := openCache(cfg)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Generate, metaCache)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
