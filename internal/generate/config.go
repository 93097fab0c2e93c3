package generate

// Config controls selection and rendering for one generation run. Zero
// values on the caps mean unlimited.
type Config struct {
	MaxTokens              int      `yaml:"max_tokens"`
	MaxFiles               int      `yaml:"max_files"`
	MaxFileSizeBytes       int64    `yaml:"max_file_size"`
	MaxLinesPerFile        int      `yaml:"max_lines_per_file"`
	IncludeStructure       bool     `yaml:"include_structure"`
	IncludeDependencies    bool     `yaml:"include_dependencies"`
	IncludeMetadata        bool     `yaml:"include_metadata"`
	CompressLargeFiles     bool     `yaml:"compress_large_files"`
	CompressThresholdLines int      `yaml:"compress_threshold_lines"`
	IncludeComments        bool     `yaml:"include_comments"`
	AddInstructions        bool     `yaml:"add_instructions"`
	FileSeparator          string   `yaml:"file_separator"`
	FilesToAnalyze         []string `yaml:"files_to_analyze"`
	GitLogCount            int      `yaml:"git_log_count"`
}

const DefaultCompressThresholdLines = 200

func DefaultConfig() Config {
	return Config{
		IncludeStructure:       true,
		IncludeDependencies:    true,
		IncludeMetadata:        true,
		CompressLargeFiles:     true,
		CompressThresholdLines: DefaultCompressThresholdLines,
		IncludeComments:        true,
		AddInstructions:        true,
		FileSeparator:          "\n\n---\n\n",
	}
}
