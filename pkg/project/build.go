package project

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Zorby-dev/ender-script/pkg/compiler"
	"github.com/Zorby-dev/ender-script/pkg/datapack"
)

// SourceExt is the extension of EnderScript source files.
const SourceExt = ".es"

// Logger is the part of a leveled logger the builder uses.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warningf(format string, v ...interface{})
}

// Unit is the compiled form of one source file.
type Unit struct {
	// File is the path of the source file relative to the project root.
	File string
	// Group is the function folder the blocks go to: the file's path below
	// the namespace folder, without extension.
	Group  string
	Blocks []compiler.InstructionBlock
}

// Builder compiles a project into a datapack.
type Builder struct {
	Root   string
	Config *Config
	Log    Logger
	// Parallelism caps concurrent compilations; 0 means one per CPU.
	Parallelism int
}

// Sources lists the source files below the namespace folder, relative to
// it, with slashes, sorted.
func (b *Builder) Sources() ([]string, error) {
	dir := b.Config.SourceDir(b.Root)
	var files []string
	err := filepath.WalkDir(dir, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(full) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(dir, full)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing sources in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Compile compiles every source file concurrently. Diagnostics do not stop
// other files; the one from the first file in sorted order is returned so
// the result does not depend on scheduling.
func (b *Builder) Compile(ctx context.Context) ([]Unit, error) {
	files, err := b.Sources()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		b.Log.Warningf("no %s files in %s", SourceExt, b.Config.SourceDir(b.Root))
	}

	units := make([]Unit, len(files))
	diagnostics := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	limit := b.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(b.Config.SourceDir(b.Root), filepath.FromSlash(file))
			src, err := os.ReadFile(full)
			if err != nil {
				return errors.Wrapf(err, "reading %s", full)
			}

			display := filepath.ToSlash(filepath.Join(b.Config.Source, b.Config.Namespace, file))
			group := strings.TrimSuffix(file, SourceExt)
			blocks, err := compiler.CompileSource(display, string(src), compiler.Options{
				Namespace: b.Config.Namespace,
				Path:      group,
			})
			if err != nil {
				diagnostics[i] = err
				return nil
			}
			units[i] = Unit{File: path.Clean(display), Group: group, Blocks: blocks}
			b.Log.Debugf("compiled %s into %d function(s)", display, len(blocks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range diagnostics {
		if err != nil {
			return nil, err
		}
	}
	return units, nil
}

// Stage replaces the namespace's functions in pack with units and sets the
// pack metadata. Functions that no unit produced any more are removed.
func (b *Builder) Stage(pack *datapack.Pack, units []Unit) error {
	if err := pack.SetMeta(b.Config.Name); err != nil {
		return err
	}
	staged := make(map[string]bool)
	for _, unit := range units {
		for _, block := range unit.Blocks {
			name, err := pack.AddFunction(b.Config.Namespace, unit.Group, block)
			if err != nil {
				return errors.Wrapf(err, "staging %s", unit.File)
			}
			staged[name] = true
			b.Log.Debugf("staged %s", name)
		}
	}
	if n := pack.Prune(path.Join("data", b.Config.Namespace, "functions"), staged); n > 0 {
		b.Log.Debugf("dropped %d stale function(s)", n)
	}
	return nil
}

// Build compiles the project on top of what is already in the output
// folder, so functions whose source disappeared are deleted on write.
func (b *Builder) Build(ctx context.Context) (*datapack.Pack, error) {
	units, err := b.Compile(ctx)
	if err != nil {
		return nil, err
	}
	pack := datapack.New()
	if err := pack.LoadFrom(b.Config.OutputDir(b.Root)); err != nil {
		return nil, err
	}
	if err := b.Stage(pack, units); err != nil {
		return nil, err
	}
	return pack, nil
}

// BuildAndWrite builds the project and writes the datapack to the output
// folder.
func (b *Builder) BuildAndWrite(ctx context.Context) (*datapack.Pack, error) {
	pack, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	out := b.Config.OutputDir(b.Root)
	if !pack.Dirty() {
		b.Log.Infof("%s is up to date", out)
		return pack, nil
	}
	if err := pack.PersistTo(out); err != nil {
		return nil, errors.Wrapf(err, "writing datapack to %s", out)
	}
	b.Log.Infof("wrote %d file(s) to %s", len(pack.List()), out)
	return pack, nil
}
