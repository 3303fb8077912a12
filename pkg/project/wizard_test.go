package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(answers ...string) (*Wizard, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Wizard{
		In:          strings.NewReader(strings.Join(answers, "\n") + "\n"),
		Out:         out,
		Interactive: true,
	}, out
}

func TestWizard_Defaults(t *testing.T) {
	w, out := scripted("", "", "", "", "", "")
	answers, err := w.Run("demo")
	require.NoError(t, err)
	require.NotNil(t, answers)
	assert.Equal(t, Default("demo"), answers.Config)
	assert.True(t, answers.Generate)

	prompt := out.String()
	assert.Contains(t, prompt, "Project name (demo): ")
	assert.Contains(t, prompt, "Source folder (./src): ")
	assert.Contains(t, prompt, "Proceed? (Y/n): ")
}

func TestWizard_CustomAnswers(t *testing.T) {
	w, _ := scripted("Cool Pack", "cool", "scripts", "build", "n", "y")
	answers, err := w.Run("demo")
	require.NoError(t, err)
	require.NotNil(t, answers)
	assert.Equal(t, &Config{Name: "Cool Pack", Namespace: "cool", Source: "scripts", Output: "build"}, answers.Config)
	assert.False(t, answers.Generate)
}

func TestWizard_RepeatsUnclearConfirmation(t *testing.T) {
	w, out := scripted("", "", "", "", "maybe", "yes", "")
	answers, err := w.Run("demo")
	require.NoError(t, err)
	require.NotNil(t, answers)
	assert.True(t, answers.Generate)
	assert.Contains(t, out.String(), "Please answer y or n.")
}

func TestWizard_Declined(t *testing.T) {
	w, _ := scripted("", "", "", "", "", "no")
	answers, err := w.Run("demo")
	require.NoError(t, err)
	assert.Nil(t, answers)
}

func TestWizard_InvalidNamespace(t *testing.T) {
	w, _ := scripted("", "Bad Space", "", "")
	_, err := w.Run("demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestWizard_InputClosed(t *testing.T) {
	w, _ := scripted("demo")
	_, err := w.Run("demo")
	require.Error(t, err)
}

func TestWizard_NonInteractive(t *testing.T) {
	out := &bytes.Buffer{}
	w := &Wizard{In: strings.NewReader("ignored\n"), Out: out}
	answers, err := w.Run("quiet")
	require.NoError(t, err)
	assert.Equal(t, Default("quiet"), answers.Config)
	assert.True(t, answers.Generate)
	assert.Empty(t, out.String())
}

func TestGenerate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, Generate(root, &Answers{Config: Default("demo"), Generate: true}))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, Default("demo"), cfg)

	assert.DirExists(t, filepath.Join(root, "out"))
	starter := filepath.Join(root, "src", "demo", StarterFile)
	assert.FileExists(t, starter)

	// An existing starter file survives a second run.
	require.NoError(t, os.WriteFile(starter, []byte("let mine = 1\n"), 0644))
	require.NoError(t, Generate(root, &Answers{Config: Default("demo"), Generate: true}))
	got, err := os.ReadFile(starter)
	require.NoError(t, err)
	assert.Equal(t, "let mine = 1\n", string(got))
}

func TestGenerate_ConfigOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Generate(root, &Answers{Config: Default("demo")}))
	assert.FileExists(t, filepath.Join(root, ConfigFile))
	assert.NoDirExists(t, filepath.Join(root, "src"))
}
