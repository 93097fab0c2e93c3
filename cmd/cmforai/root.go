package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kurtatter/cmforai/internal/cache"
	"github.com/kurtatter/cmforai/internal/config"
	"github.com/kurtatter/cmforai/internal/logger"
	"github.com/kurtatter/cmforai/internal/project"
)

// flagSet holds every override the command line can apply on top of the
// layered config files.
type flagSet struct {
	logLevel       string
	output         string
	maxTokens      int
	maxFiles       int
	maxFileSize    int64
	maxLines       int
	compressAfter  int
	gitLogs        int
	noCompress     bool
	noComments     bool
	noStructure    bool
	noDependencies bool
	noMetadata     bool
	noInstructions bool
	noCache        bool
	ignore         []string
	important      []string
	files          []string
}

func newRootCmd() *cobra.Command {
	flags := &flagSet{}

	cmd := &cobra.Command{
		Use:   "cmforai [path]",
		Short: "Generate a markdown context document from a codebase for LLM consumption",
		Long: `cmforai walks a project directory, ranks its files, fits them into a
token budget and renders a single markdown document an LLM can consume.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, flags)
		},
	}

	registerFlags(cmd, flags)

	cmd.AddCommand(
		newWatchCmd(flags),
		newServeCmd(flags),
		newInitCmd(),
		newVersionCmd(),
	)

	return cmd
}

func registerFlags(cmd *cobra.Command, flags *flagSet) {
	f := cmd.Flags()
	f.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVarP(&flags.output, "output", "o", "", "write the document to a file instead of stdout")
	f.IntVar(&flags.maxTokens, "max-tokens", -1, "token budget for file contents (0 = unlimited)")
	f.IntVar(&flags.maxFiles, "max-files", -1, "maximum number of files to include (0 = unlimited)")
	f.Int64Var(&flags.maxFileSize, "max-file-size", -1, "per-file size cap in bytes (0 = unlimited)")
	f.IntVar(&flags.maxLines, "max-lines-per-file", -1, "truncate each rendered file after this many lines (0 = unlimited)")
	f.IntVar(&flags.compressAfter, "compress-threshold", -1, "compress files longer than this many lines")
	f.IntVar(&flags.gitLogs, "gitlogs", -1, "number of recent commits to include (0 = none)")
	f.BoolVar(&flags.noCompress, "no-compress", false, "never compress, skip files that exceed limits instead")
	f.BoolVar(&flags.noComments, "no-comments", false, "strip comments from rendered files")
	f.BoolVar(&flags.noStructure, "no-structure", false, "omit the project structure section")
	f.BoolVar(&flags.noDependencies, "no-dependencies", false, "omit the dependencies section")
	f.BoolVar(&flags.noMetadata, "no-metadata", false, "omit the project metadata section")
	f.BoolVar(&flags.noInstructions, "no-instructions", false, "omit the LLM instructions header")
	f.BoolVar(&flags.noCache, "no-cache", false, "bypass the file metadata cache")
	f.StringSliceVar(&flags.ignore, "ignore", nil, "extra ignore patterns (doublestar globs)")
	f.StringSliceVar(&flags.important, "important", nil, "extra filenames to treat as important")
	f.StringSliceVar(&flags.files, "files", nil, "only analyze these files (paths, basenames or globs)")
}

// loadConfig resolves the project root, layers the config files and applies
// flag overrides. Returns the root as an absolute path.
func loadConfig(args []string, flags *flagSet) (string, *config.Config, error) {
	rootArg := "."
	if len(args) > 0 {
		rootArg = args[0]
	}
	root, err := filepath.Abs(rootArg)
	if err != nil {
		return "", nil, fmt.Errorf("resolve path %q: %w", rootArg, err)
	}
	if info, err := os.Stat(root); err != nil {
		return "", nil, fmt.Errorf("project path: %w", err)
	} else if !info.IsDir() {
		return "", nil, fmt.Errorf("project path %q is not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	applyFlags(cfg, flags)

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logger.Init(logCfg)

	return root, cfg, nil
}

func applyFlags(cfg *config.Config, flags *flagSet) {
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.output != "" {
		cfg.OutputPath = flags.output
	}
	if flags.maxTokens >= 0 {
		cfg.Generate.MaxTokens = flags.maxTokens
	}
	if flags.maxFiles >= 0 {
		cfg.Generate.MaxFiles = flags.maxFiles
	}
	if flags.maxFileSize >= 0 {
		cfg.Generate.MaxFileSizeBytes = flags.maxFileSize
	}
	if flags.maxLines >= 0 {
		cfg.Generate.MaxLinesPerFile = flags.maxLines
	}
	if flags.compressAfter >= 0 {
		cfg.Generate.CompressThresholdLines = flags.compressAfter
	}
	if flags.gitLogs >= 0 {
		cfg.Generate.GitLogCount = flags.gitLogs
	}
	if flags.noCompress {
		cfg.Generate.CompressLargeFiles = false
	}
	if flags.noComments {
		cfg.Generate.IncludeComments = false
	}
	if flags.noStructure {
		cfg.Generate.IncludeStructure = false
	}
	if flags.noDependencies {
		cfg.Generate.IncludeDependencies = false
	}
	if flags.noMetadata {
		cfg.Generate.IncludeMetadata = false
	}
	if flags.noInstructions {
		cfg.Generate.AddInstructions = false
	}
	if flags.noCache {
		cfg.Cache.Enabled = false
	}
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, flags.ignore...)
	cfg.ImportantFiles = append(cfg.ImportantFiles, flags.important...)
	if len(flags.files) > 0 {
		cfg.Generate.FilesToAnalyze = flags.files
	}
}

// openCache returns the metadata cache, or nil when disabled or broken. A
// broken cache only costs re-reading files, never a failed run.
func openCache(cfg *config.Config) (*cache.Store, project.MetadataCache) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	store, err := cache.Open(cfg.Cache.DBPath)
	if err != nil {
		logger.Warn("metadata cache unavailable", "path", cfg.Cache.DBPath, "error", err)
		return nil, nil
	}
	return store, store
}

func analyzeProject(root string, cfg *config.Config, metaCache project.MetadataCache) (*project.Info, error) {
	opts := []project.AnalyzerOption{}
	if len(cfg.IgnorePatterns) > 0 {
		opts = append(opts, project.WithIgnorePatterns(cfg.IgnorePatterns))
	}
	if len(cfg.ImportantFiles) > 0 {
		opts = append(opts, project.WithImportantFiles(cfg.ImportantFiles))
	}
	if metaCache != nil {
		opts = append(opts, project.WithCache(metaCache))
	}

	analyzer, err := project.NewAnalyzer(root, opts...)
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze()
}
