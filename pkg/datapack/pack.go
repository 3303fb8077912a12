// Package datapack stages the files of a Minecraft datapack in memory and
// writes them out in one pass.
package datapack

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Zorby-dev/ender-script/pkg/compiler"
)

// PackFormat is the pack.mcmeta format of the datapack layout written here
// (a "functions" folder per namespace).
const PackFormat = 15

// MetaFile is the name of the pack metadata file at the datapack root.
const MetaFile = "pack.mcmeta"

// validName matches slash separated resource paths: lowercase segments made
// of letters, digits, '_', '-' and '.'.
var validName = regexp.MustCompile(`^[a-z0-9_.-]+(/[a-z0-9_.-]+)*$`)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid resource path")
)

func checkName(name string) error {
	if !validName.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "." || segment == ".." {
			return errors.Wrapf(ErrInvalidName, "%q", name)
		}
	}
	return nil
}

// Pack is an in-memory datapack. Files are keyed by their slash separated
// path relative to the datapack root. It is safe for concurrent use.
type Pack struct {
	mu    sync.RWMutex
	files map[string][]byte
	// dirty holds paths written or deleted since the last PersistTo.
	dirty map[string]bool
}

func New() *Pack {
	return &Pack{
		files: make(map[string][]byte),
		dirty: make(map[string]bool),
	}
}

// Write stores a copy of data under name, replacing any previous content.
// Writing the content a file already has leaves it clean.
func (p *Pack) Write(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.files[name]; ok && bytes.Equal(old, data) {
		return nil
	}
	p.files[name] = append([]byte(nil), data...)
	p.dirty[name] = true
	return nil
}

func (p *Pack) Read(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, ok := p.files[name]
	if !ok {
		return nil, errors.Wrapf(ErrFileNotFound, "%q", name)
	}
	return data, nil
}

// Delete removes a file. The next PersistTo removes it from disk too.
func (p *Pack) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.files[name]; !ok {
		return errors.Wrapf(ErrFileNotFound, "%q", name)
	}
	delete(p.files, name)
	p.dirty[name] = true
	return nil
}

// Prune removes every file under dir that is not in keep and returns how
// many it removed.
func (p *Pack) Prune(dir string, keep map[string]bool) int {
	prefix := strings.TrimSuffix(dir, "/") + "/"

	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for name := range p.files {
		if strings.HasPrefix(name, prefix) && !keep[name] {
			delete(p.files, name)
			p.dirty[name] = true
			n++
		}
	}
	return n
}

// List returns every file path, sorted.
func (p *Pack) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty reports whether anything changed since the last PersistTo.
func (p *Pack) Dirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.dirty) > 0
}

// FunctionDir is the folder holding the functions of one group, e.g. the
// blocks compiled from one source file.
func FunctionDir(namespace, group string) string {
	return path.Join("data", namespace, "functions", group)
}

// AddFunction stores a compiled block as
// data/<namespace>/functions/<group>/<block>.mcfunction.
func (p *Pack) AddFunction(namespace, group string, block compiler.InstructionBlock) (string, error) {
	name := path.Join(FunctionDir(namespace, group), block.Name+".mcfunction")
	if err := p.Write(name, []byte(block.Text())); err != nil {
		return "", errors.Wrapf(err, "function %s", block.Name)
	}
	return name, nil
}

type meta struct {
	Pack struct {
		PackFormat  int    `json:"pack_format"`
		Description string `json:"description"`
	} `json:"pack"`
}

// SetMeta writes pack.mcmeta.
func (p *Pack) SetMeta(description string) error {
	var m meta
	m.Pack.PackFormat = PackFormat
	m.Pack.Description = description
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return p.Write(MetaFile, append(data, '\n'))
}

// LoadFrom reads every validly named file under dir. The loaded files are
// not dirty. A missing dir is not an error.
func (p *Pack) LoadFrom(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err := filepath.WalkDir(dir, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, full)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if checkName(name) != nil {
			return nil
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return err
		}
		p.files[name] = data
		return nil
	})
	return errors.Wrapf(err, "loading datapack from %s", dir)
}

// PersistTo writes every dirty file below dir and removes files deleted
// since the last call. All failures are reported together; paths that
// failed stay dirty.
func (p *Pack) PersistTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	p.mu.Lock()
	snapshot := make(map[string][]byte)
	var deleted []string
	for name := range p.dirty {
		if data, ok := p.files[name]; ok {
			snapshot[name] = data
		} else {
			deleted = append(deleted, name)
		}
		delete(p.dirty, name)
	}
	p.mu.Unlock()

	var result *multierror.Error
	failed := func(name string, err error) {
		p.mu.Lock()
		p.dirty[name] = true
		p.mu.Unlock()
		result = multierror.Append(result, err)
	}

	sort.Strings(deleted)
	for _, name := range deleted {
		if err := os.Remove(filepath.Join(dir, filepath.FromSlash(name))); err != nil && !os.IsNotExist(err) {
			failed(name, errors.Wrapf(err, "removing %s", name))
		}
	}

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			failed(name, errors.Wrapf(err, "creating folder for %s", name))
			continue
		}
		if err := os.WriteFile(full, snapshot[name], 0644); err != nil {
			failed(name, errors.Wrapf(err, "writing %s", name))
		}
	}

	return result.ErrorOrNil()
}
