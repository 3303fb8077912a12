package project

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// StarterFile is written into a freshly generated source folder.
const StarterFile = "main.es"

const starterSource = `// Entry point of the datapack.
let counter: int = 0
counter = counter + 1
`

// Wizard asks for the settings of a new project, one line per question.
type Wizard struct {
	In  io.Reader
	Out io.Writer
	// Interactive is false when nobody can answer, e.g. stdin is a pipe. All
	// defaults are accepted then.
	Interactive bool

	scanner *bufio.Scanner
	accent  *color.Color
}

// NewWizard asks on stdin when it is a terminal.
func NewWizard(in *os.File, out io.Writer, colored bool) *Wizard {
	w := &Wizard{In: in, Out: out, Interactive: term.IsTerminal(int(in.Fd()))}
	w.accent = color.New(color.FgHiCyan, color.Bold)
	if !colored {
		w.accent.DisableColor()
	}
	return w
}

// Answers is what the wizard collected.
type Answers struct {
	Config *Config
	// Generate asks for the source and output folders to be created.
	Generate bool
}

func (w *Wizard) ask(question, fallback string) (string, error) {
	if !w.Interactive {
		return fallback, nil
	}
	if w.scanner == nil {
		w.scanner = bufio.NewScanner(w.In)
	}
	label := question
	if w.accent != nil {
		label = w.accent.Sprint(question)
	}
	if fallback != "" {
		fmt.Fprintf(w.Out, "%s (%s): ", label, fallback)
	} else {
		fmt.Fprintf(w.Out, "%s: ", label)
	}
	if !w.scanner.Scan() {
		if err := w.scanner.Err(); err != nil {
			return "", errors.Wrap(err, "reading answer")
		}
		return "", errors.New("input closed before the wizard finished")
	}
	answer := strings.TrimSpace(w.scanner.Text())
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (w *Wizard) confirm(question string, fallback bool) (bool, error) {
	hint := "y/N"
	if fallback {
		hint = "Y/n"
	}
	for {
		answer, err := w.ask(question, hint)
		if err != nil {
			return false, err
		}
		if answer == hint {
			return fallback, nil
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w.Out, "Please answer y or n.")
	}
}

// Run asks every question. It returns nil answers when the user declines
// the summary.
func (w *Wizard) Run(defaultName string) (*Answers, error) {
	name, err := w.ask("Project name", defaultName)
	if err != nil {
		return nil, err
	}
	cfg := Default(name)
	if cfg.Namespace, err = w.ask("Namespace", cfg.Namespace); err != nil {
		return nil, err
	}
	if cfg.Source, err = w.ask("Source folder", cfg.Source); err != nil {
		return nil, err
	}
	if cfg.Output, err = w.ask("Output folder", cfg.Output); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	generate, err := w.confirm("Generate file structure?", true)
	if err != nil {
		return nil, err
	}

	if w.Interactive {
		fmt.Fprintf(w.Out, "\n  name:      %s\n  namespace: %s\n  source:    %s\n  output:    %s\n\n",
			cfg.Name, cfg.Namespace, cfg.Source, cfg.Output)
	}
	proceed, err := w.confirm("Proceed?", true)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return nil, nil
	}
	return &Answers{Config: cfg, Generate: generate}, nil
}

// Generate writes root/esconfig.json and, when asked to, the source and
// output folders with a starter file. Existing files are left alone.
func Generate(root string, answers *Answers) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", root)
	}
	if err := answers.Config.Save(root); err != nil {
		return err
	}
	if !answers.Generate {
		return nil
	}

	src := answers.Config.SourceDir(root)
	for _, dir := range []string{src, answers.Config.OutputDir(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	starter := filepath.Join(src, StarterFile)
	if exists(starter) {
		return nil
	}
	return errors.Wrapf(os.WriteFile(starter, []byte(starterSource), 0644), "writing %s", starter)
}
