package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementsTxtDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "requests==2.31.0\n# a comment\n\nflask>=2.0\n")

	deps := extractDependencies(root)
	assert.Equal(t, []string{"requests==2.31.0", "flask>=2.0"}, deps)
}

func TestPyprojectDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", `[project]
name = "demo"
dependencies = [
    "click>=8.0",
    "rich",
]
`)

	deps := extractDependencies(root)
	assert.Equal(t, []string{"click>=8.0", "rich"}, deps)
}

func TestGoModDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", `module example.com/demo

go 1.24

require (
	github.com/spf13/cobra v1.10.1
	gopkg.in/yaml.v3 v3.0.1 // indirect
)
`)

	deps := extractDependencies(root)
	assert.Equal(t, []string{
		"github.com/spf13/cobra v1.10.1",
		"gopkg.in/yaml.v3 v3.0.1",
	}, deps)
}

func TestPackageJSONDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{
  "dependencies": {"express": "^4.18.0"},
  "devDependencies": {"jest": "^29.0.0"}
}`)

	deps := extractDependencies(root)
	assert.Contains(t, deps, "express@^4.18.0")
	assert.Contains(t, deps, "jest@^29.0.0 (dev)")
}

func TestExtractDescription(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Demo\n\nA tool for things.\nIt does things well.\n\n## Usage\n")

	desc := extractDescription(root)
	assert.Equal(t, "A tool for things. It does things well.", desc)
}

func TestExtractDescriptionMissingReadme(t *testing.T) {
	assert.Equal(t, "", extractDescription(t.TempDir()))
}

func TestDetectProjectType(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "unknown", detectProjectType(root))

	writeFile(t, root, "requirements.txt", "")
	assert.Equal(t, "python", detectProjectType(root))

	// go.mod takes precedence over python markers.
	writeFile(t, root, "go.mod", "module x")
	require.Equal(t, "go", detectProjectType(root))
}
