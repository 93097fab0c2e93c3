package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kurtatter/cmforai/internal/generate"
	"github.com/kurtatter/cmforai/internal/logger"
	"github.com/kurtatter/cmforai/internal/watch"
)

func newWatchCmd(flags *flagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate the context document whenever project files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags)
		},
	}
	registerFlags(cmd, flags)
	return cmd
}

func runWatch(cmd *cobra.Command, args []string, flags *flagSet) error {
	root, cfg, err := loadConfig(args, flags)
	if err != nil {
		return err
	}
	if cfg.OutputPath == "" {
		return fmt.Errorf("watch mode requires --output, refusing to stream documents to stdout")
	}

	store, metaCache := openCache(cfg)
	if store != nil {
		defer store.Close()
	}

	regenerate := func() {
		info, err := analyzeProject(root, cfg, metaCache)
		if err != nil {
			logger.Error("analyze failed", "error", err)
			return
		}
		markdown, result := generate.New(cfg.Generate).Generate(cmd.Context(), info)
		if err := writeOutput(cfg.OutputPath, markdown); err != nil {
			logger.Error("write output failed", "path", cfg.OutputPath, "error", err)
			return
		}
		logger.Info("context regenerated",
			"path", cfg.OutputPath,
			"files", len(result.Selections),
			"estimated_tokens", result.TotalTokens,
		)
	}

	// Writing the document into the watched tree must not retrigger
	// generation.
	ignore := append([]string{}, cfg.IgnorePatterns...)
	if abs, err := filepath.Abs(cfg.OutputPath); err == nil {
		ignore = append(ignore, abs)
	}

	watcher, err := watch.New(watch.Config{
		IgnorePatterns: ignore,
		WatchHidden:    cfg.Watch.WatchHidden,
		DebounceWindow: cfg.Watch.DebounceWindow,
		MaxBatchSize:   cfg.Watch.MaxBatchSize,
	}, func(events []watch.FileEvent) {
		regenerate()
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.AddRoot(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	// Initial document so the output exists before the first change.
	regenerate()

	<-ctx.Done()
	logger.Info("watch stopped")
	return nil
}
