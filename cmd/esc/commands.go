package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Zorby-dev/ender-script/pkg/compiler"
	"github.com/Zorby-dev/ender-script/pkg/message"
	"github.com/Zorby-dev/ender-script/pkg/project"
)

func initCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a new project.",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    yesFlagName,
				Aliases: []string{"y"},
				Usage:   "Accept every default without asking.",
			},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				dir = "."
			}
			root, _, err := project.ResolvePath(dir)
			if err != nil {
				return err
			}

			var wizard *project.Wizard
			if c.Bool(yesFlagName) || e.stdin == nil {
				wizard = &project.Wizard{Out: e.stdout}
			} else {
				wizard = project.NewWizard(e.stdin, e.stdout, e.colored)
			}
			answers, err := wizard.Run(filepath.Base(root))
			if err != nil {
				return err
			}
			if answers == nil {
				e.log.Infof("nothing was created")
				return nil
			}
			if err := project.Generate(root, answers); err != nil {
				return err
			}
			e.log.Infof("created project %q in %s", answers.Config.Name, root)
			return nil
		},
	}
}

func buildCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Compile the project into a datapack.",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  projectFlagName,
				Value: ".",
				Usage: "Folder inside the project to build.",
			},
		},
		Action: func(c *cli.Context) error {
			root, err := project.FindRoot(c.Path(projectFlagName))
			if err != nil {
				return err
			}
			cfg, err := project.Load(root)
			if err != nil {
				return err
			}
			b := &project.Builder{Root: root, Config: cfg, Log: e.log}
			_, err = b.BuildAndWrite(ctxOf(c))
			return err
		},
	}
}

func compileCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile one file and print its functions.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  namespaceFlagName,
				Value: compiler.DefaultNamespace,
				Usage: "Namespace used in function references.",
			},
			&cli.BoolFlag{
				Name:  tokensFlagName,
				Usage: "Print the tokens first.",
			},
			&cli.BoolFlag{
				Name:  astFlagName,
				Usage: "Print the syntax tree first.",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("compile takes exactly one FILE")
			}
			file := c.Args().First()
			src, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrapf(err, "reading %s", file)
			}

			tokens := compiler.Lex(file, string(src))
			if c.Bool(tokensFlagName) {
				fmt.Fprintf(e.stdout, "Tokens (%d)\n", len(tokens))
				for _, tok := range tokens {
					fmt.Fprintln(e.stdout, " ", tok)
				}
				fmt.Fprintln(e.stdout)
			}

			program, err := compiler.Parse(tokens)
			if err != nil {
				return err
			}
			if c.Bool(astFlagName) {
				fmt.Fprintln(e.stdout, "AST")
				for _, stmt := range program {
					fmt.Fprintln(e.stdout, " ", stmt)
				}
				fmt.Fprintln(e.stdout)
			}

			opts := compiler.Options{Namespace: c.String(namespaceFlagName)}
			blocks, err := compiler.Compile(program, opts)
			if err != nil {
				return err
			}
			for i, block := range blocks {
				if i > 0 {
					fmt.Fprintln(e.stdout)
				}
				fmt.Fprintf(e.stdout, "# %s\n", opts.Resource(block.Name))
				fmt.Fprint(e.stdout, block.Text())
			}
			return nil
		},
	}
}

func ctxOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// report prints a diagnostic as a boxed report and anything else as a
// single line.
func (e *env) report(err error) {
	if m, ok := message.AsMessage(err); ok {
		if rerr := message.Render(e.stderr, m, e.colored); rerr == nil {
			return
		}
	}
	fmt.Fprintf(e.stderr, "esc: %s\n", err)
}
