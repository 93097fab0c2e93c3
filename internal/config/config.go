// Package config layers the application configuration: compiled defaults,
// then the global user file, then the project-local file. Flags are applied
// on top by the command layer.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kurtatter/cmforai/internal/generate"
)

const (
	// ProjectFileName is looked up in the analyzed project's root.
	ProjectFileName = ".cmforai.yaml"
	globalDirName   = "cmforai"
	globalFileName  = "config.yaml"
)

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

type WatchConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	WatchHidden    bool          `yaml:"watch_hidden"`
}

type Config struct {
	LogLevel       string          `yaml:"log_level"`
	OutputPath     string          `yaml:"output_path"`
	IgnorePatterns []string        `yaml:"ignore_patterns"`
	ImportantFiles []string        `yaml:"important_files"`
	Generate       generate.Config `yaml:"generate"`
	Cache          CacheConfig     `yaml:"cache"`
	Watch          WatchConfig     `yaml:"watch"`
}

func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".cache", "cmforai", "metadata.db")

	return &Config{
		LogLevel:   "info",
		OutputPath: "",
		Generate:   generate.DefaultConfig(),
		Cache: CacheConfig{
			Enabled: true,
			DBPath:  dbPath,
		},
		Watch: WatchConfig{
			DebounceWindow: 500 * time.Millisecond,
			MaxBatchSize:   100,
		},
	}
}

// GlobalPath returns the per-user config location, honoring
// XDG_CONFIG_HOME via os.UserConfigDir.
func GlobalPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, globalDirName, globalFileName), nil
}

// Load builds the effective config for a project root. Missing files are
// not errors; malformed files are.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	if globalPath, err := GlobalPath(); err == nil {
		if err := overlay(cfg, globalPath); err != nil {
			return nil, err
		}
	}

	if projectRoot != "" {
		if err := overlay(cfg, filepath.Join(projectRoot, ProjectFileName)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Save writes the config as the project-local file so a team can pin its
// generation settings in version control.
func (c *Config) Save(projectRoot string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(projectRoot, ProjectFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
