package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relPaths(files []FileRecord) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelativePath)
	}
	return out
}

func TestAnalyzeWalksAndIgnoresDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "src/util.py", "x = 1\n")
	writeFile(t, root, "__pycache__/junk.pyc", "junk")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}")
	writeFile(t, root, ".git/config", "[core]")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)

	paths := relPaths(info.Files)
	assert.Contains(t, paths, "main.py")
	assert.Contains(t, paths, "src/util.py")
	assert.NotContains(t, paths, "__pycache__/junk.pyc")
	assert.NotContains(t, paths, "node_modules/pkg/index.js")
	assert.NotContains(t, paths, ".git/config")
}

func TestAnalyzeSortsByPriority(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "notes\n")
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "lib.py", "x = 1\n")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)
	require.NotEmpty(t, info.Files)

	// main.py is important and code, so it must lead.
	assert.Equal(t, "main.py", info.Files[0].RelativePath)
	for i := 1; i < len(info.Files); i++ {
		assert.GreaterOrEqual(t, info.Files[i-1].Priority, info.Files[i].Priority)
	}
}

func TestAnalyzeFileRecordFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.go", "package main\n\nfunc main() {}\n")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)
	require.Len(t, info.Files, 1)

	f := info.Files[0]
	assert.Equal(t, "app.go", f.RelativePath)
	assert.Equal(t, "go", f.Language)
	assert.Equal(t, 3, f.LineCount)
	assert.Equal(t, int64(len("package main\n\nfunc main() {}\n")), f.SizeBytes)
}

func TestAnalyzeImportantDetection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "setup.py", "")
	writeFile(t, root, "helper.py", "")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)

	byPath := map[string]FileRecord{}
	for _, f := range info.Files {
		byPath[f.RelativePath] = f
	}
	assert.True(t, byPath["setup.py"].IsImportant)
	assert.False(t, byPath["helper.py"].IsImportant)
}

func TestAnalyzeCustomIgnoreAndImportant(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/big.csv", "a,b\n")
	writeFile(t, root, "core.py", "x = 1\n")

	a, err := NewAnalyzer(root,
		WithIgnorePatterns([]string{"**/data/**"}),
		WithImportantFiles([]string{"core.py"}),
	)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)

	paths := relPaths(info.Files)
	assert.NotContains(t, paths, "data/big.csv")
	require.Contains(t, paths, "core.py")
	assert.True(t, info.Files[0].IsImportant)
}

func TestAnalyzeGitignoreApplied(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "secrets/\n*.log\n")
	writeFile(t, root, "secrets/key.pem", "key")
	writeFile(t, root, "run.log", "log line\n")
	writeFile(t, root, "app.py", "x = 1\n")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)

	paths := relPaths(info.Files)
	assert.NotContains(t, paths, "secrets/key.pem")
	assert.NotContains(t, paths, "run.log")
	assert.Contains(t, paths, "app.py")
}

func TestAnalyzeStructureGrouping(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.py", "")
	writeFile(t, root, "pkg/a.py", "")
	writeFile(t, root, "pkg/b.py", "")

	a, err := NewAnalyzer(root)
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)

	assert.Equal(t, []string{"top.py"}, info.Structure["/"])
	assert.Equal(t, []string{"pkg/a.py", "pkg/b.py"}, info.Structure["pkg"])
}

func TestNewAnalyzerRejectsFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "f.txt", "")

	_, err := NewAnalyzer(filepath.Join(root, "f.txt"))
	assert.Error(t, err)
}

type memCache struct {
	entries map[string]memEntry
	lookups int
	stores  int
}

type memEntry struct {
	size      int64
	modNanos  int64
	lineCount int
	language  string
}

func (c *memCache) Lookup(relPath string, sizeBytes int64, modTime time.Time) (int, string, bool) {
	c.lookups++
	e, ok := c.entries[relPath]
	if !ok || e.size != sizeBytes || e.modNanos != modTime.UnixNano() {
		return 0, "", false
	}
	return e.lineCount, e.language, true
}

func (c *memCache) Store(relPath string, sizeBytes int64, modTime time.Time, lineCount int, language string) error {
	c.stores++
	c.entries[relPath] = memEntry{sizeBytes, modTime.UnixNano(), lineCount, language}
	return nil
}

func TestAnalyzeUsesCacheOnSecondRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\ny = 2\n")

	mc := &memCache{entries: map[string]memEntry{}}

	a, err := NewAnalyzer(root, WithCache(mc))
	require.NoError(t, err)

	info, err := a.Analyze()
	require.NoError(t, err)
	require.Len(t, info.Files, 1)
	assert.Equal(t, 2, info.Files[0].LineCount)
	assert.Equal(t, 1, mc.stores)

	// Second run hits the cache and stores nothing new.
	info, err = a.Analyze()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Files[0].LineCount)
	assert.Equal(t, 1, mc.stores)
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"a.py":       "python",
		"b.go":       "go",
		"c.ts":       "typescript",
		"Dockerfile": "docker",
		"Makefile":   "make",
		"x.weird":    "unknown",
		"UPPER.PY":   "python",
	}
	for rel, want := range cases {
		assert.Equal(t, want, detectLanguage(rel), rel)
	}
}
