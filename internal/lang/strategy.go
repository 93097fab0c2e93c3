// Package lang holds per-language strategies for comment stripping and
// structural digest classification. New languages register a strategy
// instead of adding branches to the renderer.
package lang

import "strings"

// Strategy classifies lines for one language family and strips comments.
type Strategy interface {
	Tag() string

	// StripComments removes comments while keeping line structure intact
	// enough for digests and line caps to stay meaningful.
	StripComments(content string) string

	// IsImportLine reports whether a line references a module/import.
	IsImportLine(line string) bool

	// IsDeclarationLine reports whether a line opens a top-level
	// function/type/class declaration.
	IsDeclarationLine(line string) bool

	// IsCommentLine reports whether a line is pure comment/docstring,
	// used when collecting trailing context after a declaration.
	IsCommentLine(line string) bool
}

var registry = map[string]Strategy{}

func Register(s Strategy) {
	registry[s.Tag()] = s
}

// Lookup returns the strategy for a language tag, falling back to a no-op
// strategy for unknown tags.
func Lookup(tag string) Strategy {
	if s, ok := registry[tag]; ok {
		return s
	}
	return noop{}
}

func init() {
	Register(Python{})
	Register(Shell{})
	for _, tag := range []string{"go", "javascript", "typescript", "java", "c", "cpp", "rust", "php"} {
		Register(CStyle{Lang: tag})
	}
}

// noop passes content through untouched and matches nothing; the renderer
// degrades to its head/tail fallback for such languages.
type noop struct{}

func (noop) Tag() string                         { return "unknown" }
func (noop) StripComments(content string) string { return content }
func (noop) IsImportLine(string) bool            { return false }
func (noop) IsDeclarationLine(string) bool       { return false }
func (noop) IsCommentLine(line string) bool      { return strings.TrimSpace(line) == "" }
