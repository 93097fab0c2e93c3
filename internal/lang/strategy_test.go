package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownTags(t *testing.T) {
	for _, tag := range []string{"python", "shell", "go", "javascript", "typescript", "rust", "c", "cpp", "java", "php"} {
		s := Lookup(tag)
		assert.Equal(t, tag, s.Tag(), tag)
	}
}

func TestLookupUnknownTagIsNoop(t *testing.T) {
	s := Lookup("brainfuck")
	content := "// not actually a comment here\nwhatever"
	assert.Equal(t, content, s.StripComments(content))
	assert.False(t, s.IsImportLine("import x"))
	assert.False(t, s.IsDeclarationLine("def f():"))
}

func TestPythonStripComments(t *testing.T) {
	py := Lookup("python")

	in := strings.Join([]string{
		"#!/usr/bin/env python",
		"x = 1  # trailing",
		`s = "# not a comment"`,
		`'''`,
		"# kept inside docstring",
		`'''`,
	}, "\n")

	out := py.StripComments(in)

	assert.NotContains(t, out, "trailing")
	assert.NotContains(t, out, "env python")
	assert.Contains(t, out, `s = "# not a comment"`)
	assert.Contains(t, out, "# kept inside docstring")
}

func TestPythonClassifiers(t *testing.T) {
	py := Lookup("python")

	assert.True(t, py.IsImportLine("import os"))
	assert.True(t, py.IsImportLine("from sys import path"))
	assert.False(t, py.IsImportLine("x = important"))

	assert.True(t, py.IsDeclarationLine("def run():"))
	assert.True(t, py.IsDeclarationLine("    async def fetch():"))
	assert.True(t, py.IsDeclarationLine("class Worker:"))
	assert.False(t, py.IsDeclarationLine("default = 1"))

	assert.True(t, py.IsCommentLine("  # note"))
	assert.True(t, py.IsCommentLine(`"""doc"""`))
	assert.False(t, py.IsCommentLine("x = 1"))
}

func TestGoClassifiers(t *testing.T) {
	g := Lookup("go")

	assert.True(t, g.IsImportLine(`import "fmt"`))
	assert.True(t, g.IsImportLine("package main"))
	assert.True(t, g.IsDeclarationLine("func main() {"))
	assert.True(t, g.IsDeclarationLine("type Config struct {"))
	assert.False(t, g.IsDeclarationLine("\treturn nil"))
}

func TestCStyleStripComments(t *testing.T) {
	g := Lookup("go")

	in := strings.Join([]string{
		"x := 1 // trailing",
		`s := "// in string"`,
		"/* block",
		"still block */ y := 2",
		"z := 3",
	}, "\n")

	out := g.StripComments(in)

	assert.NotContains(t, out, "trailing")
	assert.Contains(t, out, `s := "// in string"`)
	assert.NotContains(t, out, "block")
	assert.Contains(t, out, "y := 2")
	assert.Contains(t, out, "z := 3")
}

func TestCStyleInlineBlockComment(t *testing.T) {
	g := Lookup("go")

	out := g.StripComments("a /* mid */ b")
	assert.Equal(t, "a b", out)
}

func TestShellStripKeepsShebang(t *testing.T) {
	sh := Lookup("shell")

	in := "#!/bin/bash\necho hi # say hi\n# pure comment"
	out := sh.StripComments(in)

	assert.Contains(t, out, "#!/bin/bash")
	assert.NotContains(t, out, "say hi")
	assert.NotContains(t, out, "pure comment")
	assert.Contains(t, out, "echo hi")
}

func TestShellClassifiers(t *testing.T) {
	sh := Lookup("shell")

	assert.True(t, sh.IsImportLine("source ./lib.sh"))
	assert.True(t, sh.IsImportLine(". ./env.sh"))
	assert.True(t, sh.IsDeclarationLine("my_func() {"))
	assert.True(t, sh.IsDeclarationLine("function deploy {"))
	assert.False(t, sh.IsDeclarationLine("echo hi"))
}

func TestJavascriptDeclarations(t *testing.T) {
	js := Lookup("javascript")

	assert.True(t, js.IsDeclarationLine("export async function load() {"))
	assert.True(t, js.IsDeclarationLine("class App {"))
	assert.True(t, js.IsDeclarationLine("const handler = () => {}"))
	assert.False(t, js.IsDeclarationLine("  return x"))
}

func TestRustDeclarations(t *testing.T) {
	rs := Lookup("rust")

	assert.True(t, rs.IsDeclarationLine("pub fn run() {"))
	assert.True(t, rs.IsDeclarationLine("struct Point {"))
	assert.True(t, rs.IsDeclarationLine("impl Point {"))
	assert.False(t, rs.IsDeclarationLine("    let x = 1;"))
}
