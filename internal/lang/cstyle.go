package lang

import (
	"regexp"
	"strings"
)

// CStyle covers the brace-and-slash family: go, javascript, typescript,
// java, c, cpp, rust, php. Declaration patterns differ per tag; comment
// syntax is shared.
type CStyle struct {
	Lang string
}

func (s CStyle) Tag() string { return s.Lang }

var cstyleDeclRes = map[string]*regexp.Regexp{
	"go":         regexp.MustCompile(`^(func|type|var|const)\s+[A-Za-z_(]`),
	"javascript": regexp.MustCompile(`^\s*(export\s+)?(async\s+)?(function|class|const|let|var)\s+[A-Za-z_$]`),
	"typescript": regexp.MustCompile(`^\s*(export\s+)?(async\s+)?(function|class|interface|type|enum|const|let)\s+[A-Za-z_$]`),
	"java":       regexp.MustCompile(`^\s*(public|protected|private|static|final|abstract)\s+.*[({]`),
	"rust":       regexp.MustCompile(`^\s*(pub\s+)?(fn|struct|enum|trait|impl|mod|const)\s+`),
	"php":        regexp.MustCompile(`^\s*(abstract\s+|final\s+)?(function|class|interface|trait)\s+[A-Za-z_]`),
}

var cstyleDefaultDeclRe = regexp.MustCompile(`^[A-Za-z_].*\(.*\)\s*\{?\s*$|^\s*(struct|enum|union|typedef)\s+`)

var cstyleImportRe = regexp.MustCompile(`^\s*(import\s|package\s|#include\s|use\s|require\s*\(|require\s+['"])`)

func (s CStyle) IsImportLine(line string) bool {
	return cstyleImportRe.MatchString(line)
}

func (s CStyle) IsDeclarationLine(line string) bool {
	if re, ok := cstyleDeclRes[s.Lang]; ok {
		return re.MatchString(line)
	}
	return cstyleDefaultDeclRe.MatchString(line)
}

func (s CStyle) IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

// StripComments removes // line comments and /* */ blocks. String literals
// containing comment markers survive a simple quote scan; backtick and
// escape edge cases degrade to keeping the line.
func (s CStyle) StripComments(content string) string {
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	inBlock := false

	for _, line := range lines {
		if inBlock {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				inBlock = false
				rest := strings.TrimSpace(line[idx+2:])
				if rest != "" {
					cleaned = append(cleaned, line[idx+2:])
				}
			}
			continue
		}

		out, startsBlock := stripLineComments(line)
		inBlock = startsBlock
		if strings.TrimSpace(out) != "" || strings.TrimSpace(line) == "" {
			cleaned = append(cleaned, out)
		}
	}

	return strings.Join(cleaned, "\n")
}

func stripLineComments(line string) (string, bool) {
	inString := false
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]

		if inString {
			if c == '\\' {
				i++
			} else if c == quote {
				inString = false
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			inString = true
			quote = c
		case '/':
			if i+1 < len(line) {
				if line[i+1] == '/' {
					return strings.TrimRight(line[:i], " \t"), false
				}
				if line[i+1] == '*' {
					if end := strings.Index(line[i+2:], "*/"); end >= 0 {
						rest, blocked := stripLineComments(line[i+2+end+2:])
						return strings.TrimRight(line[:i], " \t") + rest, blocked
					}
					return strings.TrimRight(line[:i], " \t"), true
				}
			}
		}
	}

	return line, false
}
