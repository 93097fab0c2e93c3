package lang

import (
	"regexp"
	"strings"
)

type Shell struct{}

func (Shell) Tag() string { return "shell" }

var shellDeclRe = regexp.MustCompile(`^\s*(function\s+[A-Za-z_][A-Za-z0-9_]*|[A-Za-z_][A-Za-z0-9_]*\s*\(\)\s*\{?)`)

func (Shell) IsImportLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "source ") || strings.HasPrefix(trimmed, ". ")
}

func (Shell) IsDeclarationLine(line string) bool {
	return shellDeclRe.MatchString(line)
}

func (Shell) IsCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func (Shell) StripComments(content string) string {
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for i, line := range lines {
		// Keep the shebang.
		if i == 0 && strings.HasPrefix(line, "#!") {
			cleaned = append(cleaned, line)
			continue
		}
		cleaned = append(cleaned, cutHashComment(line))
	}
	return strings.Join(cleaned, "\n")
}
