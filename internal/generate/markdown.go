package generate

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/kurtatter/cmforai/internal/project"
)

// RenderedFile pairs a selection with its rendered body.
type RenderedFile struct {
	Selection Selection
	Body      string
}

// Assembler concatenates the optional document sections in fixed order:
// header, metadata, structure, dependencies, git history, file contents.
// Sections with a false toggle or no backing data are skipped.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Assemble(info *project.Info, cfg Config, files []RenderedFile, gitHistory string) string {
	var parts []string

	if cfg.AddInstructions {
		parts = append(parts, a.header(info))
	}
	if cfg.IncludeMetadata {
		parts = append(parts, a.metadata(info))
	}
	if cfg.IncludeStructure {
		parts = append(parts, a.structure(info))
	}
	if cfg.IncludeDependencies && len(info.Dependencies) > 0 {
		parts = append(parts, a.dependencies(info))
	}
	if gitHistory != "" {
		parts = append(parts, a.gitSection(gitHistory))
	}
	parts = append(parts, a.filesContent(files, cfg))

	return strings.Join(parts, "\n\n")
}

func (a *Assembler) header(info *project.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Project Context: %s\n\n", info.RootName)
	fmt.Fprintf(&b, "This document contains the context of the project located at `%s`.\n\n", info.Root)
	b.WriteString("**Instructions for LLM:**\n")
	b.WriteString("- This is a codebase context for analysis, modification, or understanding\n")
	b.WriteString("- Files are organized by their directory structure\n")
	b.WriteString("- Important files are marked and prioritized\n")
	b.WriteString("- Use this context to understand the project architecture, dependencies, and implementation details\n")
	b.WriteString("- When referencing files, use the relative paths provided\n\n")
	b.WriteString("---")
	return b.String()
}

func (a *Assembler) metadata(info *project.Info) string {
	var b strings.Builder
	b.WriteString("## Project Metadata\n\n")
	fmt.Fprintf(&b, "- **Project Root:** `%s`\n", info.Root)
	fmt.Fprintf(&b, "- **Total Files:** %d\n", len(info.Files))
	if info.ProjectType != "" && info.ProjectType != "unknown" {
		fmt.Fprintf(&b, "- **Project Type:** %s\n", info.ProjectType)
	}
	if info.Description != "" {
		fmt.Fprintf(&b, "- **Description:** %s\n", info.Description)
	}
	fmt.Fprintf(&b, "- **Total Size:** %.2f MB\n", float64(info.TotalSizeBytes())/(1024*1024))

	counts := info.LanguageCounts()
	if len(counts) > 0 {
		b.WriteString("\n**Files by Language:**\n")
		type langCount struct {
			lang  string
			count int
		}
		sorted := make([]langCount, 0, len(counts))
		for l, c := range counts {
			sorted = append(sorted, langCount{l, c})
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count > sorted[j].count
			}
			return sorted[i].lang < sorted[j].lang
		})
		for _, lc := range sorted {
			fmt.Fprintf(&b, "  - %s: %d files\n", lc.lang, lc.count)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (a *Assembler) structure(info *project.Info) string {
	var b strings.Builder
	b.WriteString("## Project Structure\n\n```\n")
	b.WriteString(buildTree(info))
	b.WriteString("```")
	return b.String()
}

func (a *Assembler) dependencies(info *project.Info) string {
	var b strings.Builder
	b.WriteString("## Dependencies\n\n```\n")
	for _, dep := range info.Dependencies {
		b.WriteString(dep)
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

func (a *Assembler) gitSection(history string) string {
	var b strings.Builder
	b.WriteString("## Recent Git History\n\n```\n")
	b.WriteString(strings.TrimRight(history, "\n"))
	b.WriteString("\n```")
	return b.String()
}

// filesContent groups rendered files by directory, preserving the
// selector's order. Rendering never reorders selections.
func (a *Assembler) filesContent(files []RenderedFile, cfg Config) string {
	var b strings.Builder
	b.WriteString("## File Contents\n")

	currentDir := ""
	for _, rf := range files {
		rec := rf.Selection.Record
		dir := path.Dir(rec.RelativePath)
		if dir == "." {
			dir = "/"
		}

		if dir != currentDir {
			if currentDir != "" {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "\n### Directory: `%s`\n\n", dir)
			currentDir = dir
		}

		b.WriteString(a.fileSection(rf, cfg))
		b.WriteString(cfg.FileSeparator)
	}

	return strings.TrimSuffix(b.String(), cfg.FileSeparator)
}

func (a *Assembler) fileSection(rf RenderedFile, cfg Config) string {
	rec := rf.Selection.Record

	var b strings.Builder
	marker := ""
	if rec.IsImportant {
		marker = " ⭐"
	}
	fmt.Fprintf(&b, "#### File: `%s`%s\n", rec.RelativePath, marker)
	fmt.Fprintf(&b, "*Language: %s | Lines: %d | Size: %d bytes*", rec.Language, rec.LineCount, rec.SizeBytes)
	if rf.Selection.Compressed {
		b.WriteString(" *(compressed)*")
	}
	b.WriteString("\n\n")

	tag := rec.Language
	if tag == "unknown" {
		tag = ""
	}
	fmt.Fprintf(&b, "```%s\n%s\n```", tag, rf.Body)
	return b.String()
}

// buildTree renders the project structure with box-drawing connectors.
func buildTree(info *project.Info) string {
	root := &treeNode{}
	var dirs []string
	for dir := range info.Structure {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		for _, file := range info.Structure[dir] {
			root.insert(strings.Split(file, "/"))
		}
	}

	var b strings.Builder
	b.WriteString(info.RootName + "/\n")
	for i, child := range root.children {
		child.write(&b, "", i == len(root.children)-1)
	}
	return b.String()
}

type treeNode struct {
	name     string
	isDir    bool
	children []*treeNode
}

func (n *treeNode) insert(parts []string) {
	if len(parts) == 0 {
		return
	}
	name := parts[0]
	var child *treeNode
	for _, c := range n.children {
		if c.name == name {
			child = c
			break
		}
	}
	if child == nil {
		child = &treeNode{name: name, isDir: len(parts) > 1}
		n.children = append(n.children, child)
		n.sortChildren()
	}
	if len(parts) > 1 {
		child.isDir = true
		child.insert(parts[1:])
	}
}

func (n *treeNode) sortChildren() {
	sort.Slice(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.isDir != b.isDir {
			return !a.isDir
		}
		return a.name < b.name
	})
}

func (n *treeNode) write(b *strings.Builder, prefix string, isLast bool) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if isLast {
		connector = "└── "
		childPrefix = prefix + "    "
	}

	name := n.name
	if n.isDir {
		name += "/"
	}
	b.WriteString(prefix + connector + name + "\n")

	for i, child := range n.children {
		child.write(b, childPrefix, i == len(n.children)-1)
	}
}
