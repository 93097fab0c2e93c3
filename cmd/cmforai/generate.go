package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kurtatter/cmforai/internal/generate"
	"github.com/kurtatter/cmforai/internal/logger"
)

func runGenerate(cmd *cobra.Command, args []string, flags *flagSet) error {
	root, cfg, err := loadConfig(args, flags)
	if err != nil {
		return err
	}

	store, metaCache := openCache(cfg)
	if store != nil {
		defer store.Close()
	}

	info, err := analyzeProject(root, cfg, metaCache)
	if err != nil {
		return fmt.Errorf("analyze project: %w", err)
	}

	markdown, result := generate.New(cfg.Generate).Generate(cmd.Context(), info)

	if cfg.OutputPath != "" {
		if err := writeOutput(cfg.OutputPath, markdown); err != nil {
			return err
		}
		logger.Info("context written",
			"path", cfg.OutputPath,
			"files", len(result.Selections),
			"estimated_tokens", result.TotalTokens,
		)
		return nil
	}

	_, err = fmt.Fprintln(os.Stdout, markdown)
	return err
}

func writeOutput(path, markdown string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
