package project

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kurtatter/cmforai/internal/logger"
)

var log = logger.ForComponent("analyzer")

// DefaultIgnorePatterns covers VCS metadata, caches, virtualenvs and build
// output. Matched with doublestar globs against the relative path.
var DefaultIgnorePatterns = []string{
	"**/.git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/*.pyo",
	"**/*.pyd",
	"**/*.egg-info/**",
	"**/.eggs/**",
	"**/.venv/**",
	"**/venv/**",
	"**/env/**",
	"**/node_modules/**",
	"**/.pytest_cache/**",
	"**/.mypy_cache/**",
	"**/.ruff_cache/**",
	"**/.tox/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/vendor/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/.DS_Store",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
}

// DefaultImportantFiles are basenames the classifier always flags.
var DefaultImportantFiles = []string{
	"main.py", "app.py", "run.py", "manage.py", "__init__.py",
	"setup.py", "setup.cfg", "pyproject.toml", "requirements.txt",
	"requirements-dev.txt", "Pipfile", "poetry.lock",
	"main.go", "go.mod", "go.sum",
	"package.json", "tsconfig.json", "Cargo.toml",
	"README.md", "README.rst", "README.txt", "LICENSE", "CHANGELOG.md",
	"config.py", "settings.py", "config.yaml", "config.yml", "Makefile",
	"Dockerfile", "docker-compose.yml", ".env.example",
}

var languageByExt = map[string]string{
	".py":       "python",
	".pyw":      "python",
	".pyi":      "python",
	".go":       "go",
	".js":       "javascript",
	".jsx":      "javascript",
	".mjs":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".rs":       "rust",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".hpp":      "cpp",
	".rb":       "ruby",
	".php":      "php",
	".md":       "markdown",
	".markdown": "markdown",
	".yaml":     "yaml",
	".yml":      "yaml",
	".json":     "json",
	".toml":     "toml",
	".txt":      "txt",
	".rst":      "txt",
	".sh":       "shell",
	".bash":     "shell",
	".sql":      "sql",
	".html":     "html",
	".css":      "css",
}

var codeLanguages = map[string]bool{
	"python": true, "go": true, "javascript": true, "typescript": true,
	"rust": true, "java": true, "c": true, "cpp": true, "ruby": true,
	"php": true, "shell": true,
}

// MetadataCache lets the analyzer skip line counting for files whose size
// and mtime have not changed since the last run.
type MetadataCache interface {
	Lookup(relPath string, sizeBytes int64, modTime time.Time) (lineCount int, language string, ok bool)
	Store(relPath string, sizeBytes int64, modTime time.Time, lineCount int, language string) error
}

type Analyzer struct {
	root           string
	ignorePatterns []string
	important      map[string]bool
	cache          MetadataCache
}

type AnalyzerOption func(*Analyzer)

// WithIgnorePatterns appends extra doublestar patterns to the default set.
func WithIgnorePatterns(patterns []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.ignorePatterns = append(a.ignorePatterns, patterns...)
	}
}

// WithImportantFiles adds basenames to the important-file set.
func WithImportantFiles(names []string) AnalyzerOption {
	return func(a *Analyzer) {
		for _, n := range names {
			a.important[n] = true
		}
	}
}

// WithCache attaches a metadata cache. Without one every file is re-read.
func WithCache(cache MetadataCache) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = cache
	}
}

func NewAnalyzer(root string, opts ...AnalyzerOption) (*Analyzer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", abs)
	}

	a := &Analyzer{
		root:           abs,
		ignorePatterns: append([]string(nil), DefaultIgnorePatterns...),
		important:      make(map[string]bool),
	}
	for _, name := range DefaultImportantFiles {
		a.important[name] = true
	}
	for _, opt := range opts {
		opt(a)
	}

	a.ignorePatterns = append(a.ignorePatterns, loadGitignorePatterns(abs)...)

	return a, nil
}

// Analyze walks the project and returns its snapshot with files sorted by
// descending priority. Unreadable files are skipped, not fatal.
func (a *Analyzer) Analyze() (*Info, error) {
	var files []FileRecord
	structure := make(map[string][]string)

	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("walk error", "path", path, "error", err)
			return nil
		}
		if path == a.root {
			return nil
		}

		rel, relErr := filepath.Rel(a.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if a.shouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rec, recErr := a.fileRecord(path, rel)
		if recErr != nil {
			log.Debug("skipping unreadable file", "path", rel, "error", recErr)
			return nil
		}

		files = append(files, rec)

		dir := filepath.ToSlash(filepath.Dir(rel))
		if dir == "." {
			dir = "/"
		}
		structure[dir] = append(structure[dir], rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project: %w", err)
	}

	// Stable so equal priorities keep walk order.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Priority > files[j].Priority
	})

	for _, paths := range structure {
		sort.Strings(paths)
	}

	info := &Info{
		Root:         a.root,
		RootName:     filepath.Base(a.root),
		Description:  extractDescription(a.root),
		ProjectType:  detectProjectType(a.root),
		Dependencies: extractDependencies(a.root),
		Files:        files,
		Structure:    structure,
	}

	log.Info("project analyzed", "root", a.root, "files", len(files))
	return info, nil
}

func (a *Analyzer) shouldIgnore(rel string, isDir bool) bool {
	// Directory patterns like **/venv/** only match paths below the
	// directory, so probe with a synthetic child as well.
	probe := rel + "/x"
	for _, pattern := range a.ignorePatterns {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
		if isDir {
			if match, _ := doublestar.Match(pattern, probe); match {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) fileRecord(path, rel string) (FileRecord, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileRecord{}, err
	}

	language := detectLanguage(rel)
	lineCount := -1

	if a.cache != nil {
		if cached, cachedLang, ok := a.cache.Lookup(rel, stat.Size(), stat.ModTime()); ok {
			lineCount = cached
			language = cachedLang
		}
	}

	if lineCount < 0 {
		lineCount, err = countLines(path)
		if err != nil {
			return FileRecord{}, err
		}
		if a.cache != nil {
			if err := a.cache.Store(rel, stat.Size(), stat.ModTime(), lineCount, language); err != nil {
				log.Debug("cache store failed", "path", rel, "error", err)
			}
		}
	}

	isImportant := a.isImportant(rel)

	return FileRecord{
		Path:         path,
		RelativePath: rel,
		SizeBytes:    stat.Size(),
		LineCount:    lineCount,
		Language:     language,
		IsImportant:  isImportant,
		Priority:     a.priority(rel, language, isImportant),
	}, nil
}

func (a *Analyzer) isImportant(rel string) bool {
	if a.important[filepath.Base(rel)] {
		return true
	}
	for name := range a.important {
		if strings.Contains(rel, name) {
			return true
		}
	}
	return false
}

func (a *Analyzer) priority(rel, language string, isImportant bool) int {
	p := 0
	if isImportant {
		p += 10
	}
	if codeLanguages[language] {
		p += 5
	}
	lower := strings.ToLower(rel)
	if strings.Contains(lower, "test") {
		p -= 2
	}
	if strings.Contains(lower, "example") || strings.Contains(lower, "demo") {
		p--
	}
	return p
}

func detectLanguage(rel string) string {
	base := filepath.Base(rel)
	if base == "Dockerfile" || base == ".dockerignore" {
		return "docker"
	}
	if base == "Makefile" {
		return "make"
	}
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	return "unknown"
}

// countLines counts line terminators, matching wc -l.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// loadGitignorePatterns reads a root .gitignore and converts its entries to
// doublestar patterns. Not full gitignore semantics: negations and anchored
// rules are skipped.
func loadGitignorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		if strings.HasSuffix(line, "/") {
			patterns = append(patterns, "**/"+strings.TrimSuffix(line, "/")+"/**")
			continue
		}
		if strings.ContainsAny(line, "*?[") {
			patterns = append(patterns, "**/"+line)
		} else {
			patterns = append(patterns, "**/"+line, "**/"+line+"/**")
		}
	}
	return patterns
}
