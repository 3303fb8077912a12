package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zorby-dev/ender-script/pkg/datapack"
	"github.com/Zorby-dev/ender-script/pkg/project"
)

type fauxSyncWriter struct {
	b bytes.Buffer
}

func (f *fauxSyncWriter) Write(p []byte) (int, error) { return f.b.Write(p) }

func (f *fauxSyncWriter) Sync() error { return nil }

func (f *fauxSyncWriter) String() string { return f.b.String() }

func runEsc(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout bytes.Buffer
	stderr := &fauxSyncWriter{}
	code := run(&env{stdout: &stdout, stderr: stderr}, append([]string{"esc", "--no-color"}, args...))
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestInitThenBuild(t *testing.T) {
	root := filepath.Join(t.TempDir(), "My Pack")

	code, _, stderr := runEsc(t, "init", "--yes", root)
	require.Equal(t, 0, code, stderr)

	cfg, err := project.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "My Pack", cfg.Name)
	assert.Equal(t, "my_pack", cfg.Namespace)
	require.FileExists(t, filepath.Join(cfg.SourceDir(root), project.StarterFile))

	writeFile(t, filepath.Join(cfg.SourceDir(root), "util", "math.es"),
		"function double(n: int) {\n\tlet r = n * 2\n}\n")

	code, _, stderr = runEsc(t, "--verbose", "build", "--project", cfg.SourceDir(root))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "wrote")

	out := cfg.OutputDir(root)
	assert.FileExists(t, filepath.Join(out, datapack.MetaFile))
	assert.FileExists(t, filepath.Join(out, "data", "my_pack", "functions", "main", "main.mcfunction"))
	assert.FileExists(t, filepath.Join(out, "data", "my_pack", "functions", "util", "math", "double.mcfunction"))
	assert.FileExists(t, filepath.Join(out, "data", "my_pack", "functions", "util", "math", "main.mcfunction"))
}

func TestBuild_RemovesStaleFunctions(t *testing.T) {
	root := t.TempDir()
	code, _, stderr := runEsc(t, "init", "--yes", root)
	require.Equal(t, 0, code, stderr)
	cfg, err := project.Load(root)
	require.NoError(t, err)

	extra := filepath.Join(cfg.SourceDir(root), "extra.es")
	writeFile(t, extra, "let a = 1\n")
	code, _, stderr = runEsc(t, "build", "--project", root)
	require.Equal(t, 0, code, stderr)
	built := filepath.Join(cfg.OutputDir(root), "data", cfg.Namespace, "functions", "extra", "main.mcfunction")
	require.FileExists(t, built)

	require.NoError(t, os.Remove(extra))
	code, _, stderr = runEsc(t, "build", "--project", root)
	require.Equal(t, 0, code, stderr)
	assert.NoFileExists(t, built)
}

func TestBuild_NoProject(t *testing.T) {
	code, _, stderr := runEsc(t, "build", "--project", t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "esc: no esconfig.json found")
}

func TestCompile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "demo.es")
	writeFile(t, file, "let x = 5\nlet y = x + 3\n")

	code, stdout, stderr := runEsc(t, "compile", "--namespace", "demo", file)
	require.Equal(t, 0, code, stderr)

	expected := "# demo:main\n" +
		"scoreboard objectives add main dummy\n" +
		"scoreboard players set $x main 5\n" +
		"scoreboard players operation $y main = $x main\n" +
		"scoreboard players add $y main 3\n" +
		"scoreboard objectives remove main\n"
	assert.Equal(t, expected, stdout)
}

func TestCompile_Dumps(t *testing.T) {
	file := filepath.Join(t.TempDir(), "demo.es")
	writeFile(t, file, "let x = 5\n")

	code, stdout, stderr := runEsc(t, "compile", "--tokens", "--ast", file)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Tokens (")
	assert.Contains(t, stdout, "AST\n")
	assert.Contains(t, stdout, "# enderscript:main\n")
}

func TestCompile_Diagnostic(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.es")
	writeFile(t, file, "let y = nope\n")

	code, stdout, stderr := runEsc(t, "compile", file)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error ES103E: Unknown member")
	assert.Contains(t, stderr, " 1 │ let y = nope\n")
	assert.NotContains(t, stderr, "\x1b[")
}

func TestCompile_WrongArgs(t *testing.T) {
	code, _, stderr := runEsc(t, "compile")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "esc: compile takes exactly one FILE")
}
