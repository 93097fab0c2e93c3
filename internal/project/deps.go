package project

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// extractDependencies collects dependency strings from whichever ecosystem
// manifests exist at the project root. Best effort: unreadable or malformed
// manifests contribute nothing.
func extractDependencies(root string) []string {
	var deps []string

	deps = append(deps, requirementsTxtDeps(root)...)
	deps = append(deps, pyprojectDeps(root)...)
	deps = append(deps, goModDeps(root)...)
	deps = append(deps, packageJSONDeps(root)...)

	return deps
}

func requirementsTxtDeps(root string) []string {
	f, err := os.Open(filepath.Join(root, "requirements.txt"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var deps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			deps = append(deps, line)
		}
	}
	return deps
}

// pyprojectDeps scans the [project] dependencies array line by line. A full
// TOML parse is not worth a dependency for one string array.
func pyprojectDeps(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return nil
	}

	var deps []string
	inArray := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !inArray {
			if strings.HasPrefix(trimmed, "dependencies") && strings.Contains(trimmed, "[") {
				inArray = true
				trimmed = trimmed[strings.Index(trimmed, "[")+1:]
			} else {
				continue
			}
		}
		if idx := strings.Index(trimmed, "]"); idx >= 0 {
			trimmed = trimmed[:idx]
			inArray = false
		}
		for _, part := range strings.Split(trimmed, ",") {
			dep := strings.Trim(strings.TrimSpace(part), `"'`)
			if dep != "" {
				deps = append(deps, dep)
			}
		}
		if !inArray {
			break
		}
	}
	return deps
}

func goModDeps(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return nil
	}

	var deps []string
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "require ("):
			inBlock = true
		case inBlock && trimmed == ")":
			inBlock = false
		case inBlock && trimmed != "":
			deps = append(deps, strings.TrimSuffix(trimmed, " // indirect"))
		case strings.HasPrefix(trimmed, "require "):
			deps = append(deps, strings.TrimPrefix(trimmed, "require "))
		}
	}
	return deps
}

func packageJSONDeps(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	var deps []string
	for name, version := range manifest.Dependencies {
		deps = append(deps, name+"@"+version)
	}
	for name, version := range manifest.DevDependencies {
		deps = append(deps, name+"@"+version+" (dev)")
	}
	return deps
}

// extractDescription takes the first non-heading lines of a README.
func extractDescription(root string) string {
	for _, name := range []string{"README.md", "README.rst", "README.txt", "README"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}

		var picked []string
		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			if i >= 10 {
				break
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			picked = append(picked, line)
			if len(picked) >= 3 {
				break
			}
		}
		if len(picked) > 0 {
			return strings.Join(picked, " ")
		}
	}
	return ""
}

func detectProjectType(root string) string {
	markers := []struct {
		file string
		kind string
	}{
		{"go.mod", "go"},
		{"pyproject.toml", "python"},
		{"setup.py", "python"},
		{"requirements.txt", "python"},
		{"package.json", "node"},
		{"Cargo.toml", "rust"},
		{"pom.xml", "java"},
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			return m.kind
		}
	}
	return "unknown"
}
