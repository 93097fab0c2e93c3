package lang

import (
	"regexp"
	"strings"
)

type Python struct{}

func (Python) Tag() string { return "python" }

var pythonDeclRe = regexp.MustCompile(`^\s*(class|def|async def)\s+[A-Za-z_]`)

func (Python) IsImportLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")
}

func (Python) IsDeclarationLine(line string) bool {
	return pythonDeclRe.MatchString(line)
}

func (Python) IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, `"""`) ||
		strings.HasPrefix(trimmed, "'''")
}

// StripComments drops # comments outside string literals. Triple-quoted
// blocks are kept: docstrings carry signal and full string tracking is not
// worth the complexity.
func (Python) StripComments(content string) string {
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	inTriple := false
	var tripleQuote string

	for _, line := range lines {
		if inTriple {
			cleaned = append(cleaned, line)
			if strings.Contains(line, tripleQuote) {
				inTriple = false
			}
			continue
		}

		if q := firstTripleQuote(line); q != "" {
			cleaned = append(cleaned, line)
			if strings.Count(line, q) == 1 {
				inTriple = true
				tripleQuote = q
			}
			continue
		}

		cleaned = append(cleaned, cutHashComment(line))
	}

	return strings.Join(cleaned, "\n")
}

func firstTripleQuote(line string) string {
	di := strings.Index(line, `"""`)
	si := strings.Index(line, "'''")
	switch {
	case di >= 0 && (si < 0 || di < si):
		return `"""`
	case si >= 0:
		return "'''"
	default:
		return ""
	}
}

func cutHashComment(line string) string {
	inString := false
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' || c == '\'' {
			if i > 0 && line[i-1] == '\\' {
				continue
			}
			if !inString {
				inString = true
				quote = c
			} else if c == quote {
				inString = false
			}
			continue
		}
		if c == '#' && !inString {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
