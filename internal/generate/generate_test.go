package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEndToEnd(t *testing.T) {
	info := testInfo()

	renderer := NewRendererWithReader(func(path string) (string, error) {
		return "content of " + path, nil
	})

	cfg := DefaultConfig()
	g := NewWithParts(cfg, nil, renderer)

	doc, result := g.Generate(context.Background(), info)

	require.Len(t, result.Selections, 2)
	// Pre-sorted input order: the important file leads.
	assert.Equal(t, "main.py", result.Selections[0].Record.RelativePath)

	assert.Contains(t, doc, "# Project Context: demo")
	assert.Contains(t, doc, "## File Contents")
	assert.Contains(t, doc, "content of ")
	assert.NotContains(t, doc, "## Recent Git History")
}

func TestGenerateRespectsBudget(t *testing.T) {
	info := testInfo()

	renderer := NewRendererWithReader(func(path string) (string, error) {
		return "x", nil
	})

	cfg := DefaultConfig()
	cfg.MaxFiles = 1
	g := NewWithParts(cfg, nil, renderer)

	doc, result := g.Generate(context.Background(), info)

	assert.Len(t, result.Selections, 1)
	assert.Contains(t, doc, "#### File: `main.py`")
	assert.NotContains(t, doc, "#### File: `src/util.py`")
}
