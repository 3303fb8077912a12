// esc is the EnderScript compiler. It scaffolds projects, builds them into
// Minecraft datapacks and compiles single files for inspection.
package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jcgregorio/logger"
	"github.com/urfave/cli/v2"
)

// flag names
const (
	verboseFlagName   = "verbose"
	noColorFlagName   = "no-color"
	yesFlagName       = "yes"
	projectFlagName   = "project"
	namespaceFlagName = "namespace"
	tokensFlagName    = "tokens"
	astFlagName       = "ast"
)

// syncWriter is what the logger writes to.
type syncWriter interface {
	io.Writer
	Sync() error
}

// env carries the streams and the settings decided by the global flags.
type env struct {
	stdin  *os.File
	stdout io.Writer
	stderr syncWriter

	colored bool
	log     *logger.Logger
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:      "esc",
		Usage:     "esc compiles EnderScript into Minecraft datapacks.",
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    verboseFlagName,
				Aliases: []string{"v"},
				Usage:   "Log every compiled and staged function.",
			},
			&cli.BoolFlag{
				Name:  noColorFlagName,
				Usage: "Do not color diagnostics and prompts.",
			},
		},
		Before: func(c *cli.Context) error {
			e.colored = !c.Bool(noColorFlagName) && !color.NoColor
			e.log = logger.NewFromOptions(&logger.Options{
				SyncWriter:   e.stderr,
				IncludeDebug: c.Bool(verboseFlagName),
			})
			return nil
		},
		Commands: []*cli.Command{
			initCommand(e),
			buildCommand(e),
			compileCommand(e),
		},
	}
}

// run executes the command line and reports failures. It returns the
// process exit code.
func run(e *env, args []string) int {
	if err := newApp(e).Run(args); err != nil {
		e.report(err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(&env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}, os.Args))
}
