package generate

import (
	"fmt"
	"strings"

	"github.com/kurtatter/cmforai/internal/lang"
	"github.com/kurtatter/cmforai/internal/project"
	"github.com/kurtatter/cmforai/internal/textenc"
)

// Renderer caps for compressed digests. Language-independent: strategies
// decide what counts as an import or declaration, the shape stays fixed.
const (
	digestMaxImports       = 20
	digestMaxDeclarations  = 30
	digestDeclContextLines = 4
	digestEdgeLines        = 50
)

// FileReader reads a file as UTF-8 text. Swappable in tests.
type FileReader func(path string) (string, error)

func defaultReader(path string) (string, error) {
	content, _, err := textenc.ReadFile(path)
	return content, err
}

// Renderer turns a selected record into its textual representation. The
// selector decides whether a file is compressed; the renderer only enforces
// the per-file line cap and produces the chosen representation.
type Renderer struct {
	read FileReader
}

func NewRenderer() *Renderer {
	return &Renderer{read: defaultReader}
}

func NewRendererWithReader(read FileReader) *Renderer {
	if read == nil {
		read = defaultReader
	}
	return &Renderer{read: read}
}

// Render returns the body for one file. Read or decode failures yield an
// inline placeholder, never an error: one bad file must not abort the run.
func (r *Renderer) Render(rec project.FileRecord, compressed bool, cfg Config) string {
	content, err := r.read(rec.Path)
	if err != nil {
		return fmt.Sprintf("*Error reading file: %v*", err)
	}

	strategy := lang.Lookup(rec.Language)

	if compressed {
		return r.capLines(digest(content, strategy), cfg)
	}

	if !cfg.IncludeComments {
		content = strategy.StripComments(content)
	}
	return r.capLines(content, cfg)
}

func (r *Renderer) capLines(content string, cfg Config) string {
	if cfg.MaxLinesPerFile <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= cfg.MaxLinesPerFile {
		return content
	}
	kept := lines[:cfg.MaxLinesPerFile]
	return strings.Join(kept, "\n") +
		fmt.Sprintf("\n\n... (%d more lines)", len(lines)-cfg.MaxLinesPerFile)
}

// digest builds the structural summary of a file: imports, top-level
// declarations with immediate context, then a head/tail excerpt.
func digest(content string, strategy lang.Strategy) string {
	lines := strings.Split(content, "\n")
	var out []string

	out = append(out, "# File structure and key components:", "")
	out = append(out, digestImports(lines, strategy)...)
	out = append(out, digestDeclarations(lines, strategy)...)
	out = append(out, digestEdges(lines)...)

	return strings.Join(out, "\n")
}

func digestImports(lines []string, strategy lang.Strategy) []string {
	var imports []string
	for _, line := range lines {
		if strategy.IsImportLine(line) {
			imports = append(imports, line)
		}
	}
	if len(imports) == 0 {
		return nil
	}

	out := []string{"## Imports:"}
	shown := imports
	if len(shown) > digestMaxImports {
		shown = shown[:digestMaxImports]
	}
	out = append(out, shown...)
	if rest := len(imports) - digestMaxImports; rest > 0 {
		out = append(out, fmt.Sprintf("# ... and %d more imports", rest))
	}
	return append(out, "")
}

func digestDeclarations(lines []string, strategy lang.Strategy) []string {
	var declIdx []int
	for i, line := range lines {
		if strategy.IsDeclarationLine(line) {
			declIdx = append(declIdx, i)
		}
	}
	if len(declIdx) == 0 {
		return nil
	}

	out := []string{"## Key Definitions:"}
	shown := declIdx
	if len(shown) > digestMaxDeclarations {
		shown = shown[:digestMaxDeclarations]
	}

	for _, idx := range shown {
		out = append(out, lines[idx])
		// Trailing context: docstrings and doc comments directly below the
		// declaration, ending at the first non-comment line.
		for j := idx + 1; j <= idx+digestDeclContextLines && j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			out = append(out, lines[j])
			if !strategy.IsCommentLine(lines[j]) {
				break
			}
		}
		out = append(out, "")
	}

	if rest := len(declIdx) - digestMaxDeclarations; rest > 0 {
		out = append(out, fmt.Sprintf("# ... and %d more definitions", rest))
	}
	return out
}

func digestEdges(lines []string) []string {
	out := []string{
		"# Full content excerpt (middle omitted for large files):",
		"",
	}

	if len(lines) <= digestEdgeLines*2 {
		return append(out, lines...)
	}

	out = append(out, lines[:digestEdgeLines]...)
	out = append(out, "", fmt.Sprintf("... (%d lines omitted) ...", len(lines)-digestEdgeLines*2), "")
	out = append(out, lines[len(lines)-digestEdgeLines:]...)
	return out
}
