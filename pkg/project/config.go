// Package project handles EnderScript projects on disk: the esconfig.json
// file, the init wizard and building every source file into a datapack.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/flynn/json5"
	"github.com/pkg/errors"
)

// ConfigFile is the name of the project file at the project root.
const ConfigFile = "esconfig.json"

const (
	DefaultSource = "./src"
	DefaultOutput = "./out"
)

var validNamespace = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Config is the content of esconfig.json. Paths are relative to the folder
// holding the file. The file may use JSON5 (comments, trailing commas).
type Config struct {
	// Name of the project, also the datapack description.
	Name string `json:"name"`

	// Namespace of the datapack. Defaults to a sanitized Name.
	Namespace string `json:"namespace" optional:"true"`

	// Source folder. Source files live in <source>/<namespace>/.
	Source string `json:"source"`

	// Output folder the datapack is written to.
	Output string `json:"output"`
}

// Default returns the configuration the init wizard proposes for name.
func Default(name string) *Config {
	return &Config{
		Name:      name,
		Namespace: Namespace(name),
		Source:    DefaultSource,
		Output:    DefaultOutput,
	}
}

// Namespace turns a project name into a valid namespace: lowercase, with
// anything outside [a-z0-9_.-] replaced by '_'.
func Namespace(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "enderscript"
	}
	return b.String()
}

// Load reads dir/esconfig.json.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading project config")
	}
	defer f.Close()

	var cfg Config
	if err := json5.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = Namespace(cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return &cfg, nil
}

// Save writes the config to dir/esconfig.json.
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Validate checks required fields and the namespace.
func (c *Config) Validate() error {
	if err := checkRequired(reflect.ValueOf(c).Elem()); err != nil {
		return err
	}
	if !validNamespace.MatchString(c.Namespace) {
		return errors.Errorf("namespace %q may only contain a-z, 0-9, '_', '-' and '.'", c.Namespace)
	}
	return nil
}

// checkRequired returns an error if a string field is empty unless it is
// tagged optional:"true".
func checkRequired(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.String || field.Tag.Get("optional") == "true" {
			continue
		}
		if v.Field(i).String() == "" {
			name := strings.Split(field.Tag.Get("json"), ",")[0]
			return errors.Errorf("required field %q is missing", name)
		}
	}
	return nil
}

// SourceDir is the absolute folder holding the namespace's source files.
func (c *Config) SourceDir(root string) string {
	return filepath.Join(root, c.Source, c.Namespace)
}

// OutputDir is the folder the datapack is written to.
func (c *Config) OutputDir(root string) string {
	return filepath.Join(root, c.Output)
}
