package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ManifestNames lists the file names FindManifest looks for, in order.
var ManifestNames = []string{"yaiba.yml", "yaiba.yaml", "yaiba.toml"}

var ErrManifestNotFound = errors.New("manifest not found")

// Manifest holds run settings read from yaiba.yml or yaiba.toml. Unset
// booleans stay nil so command line flags can tell "absent" from "false".
type Manifest struct {
	Path     string
	Program  string
	ASCII    *bool
	Echo     *bool
	Stats    *bool
	Inputs   []int64
	LogLevel string
}

type manifestDisk struct {
	Program  string  `yaml:"program" toml:"program"`
	ASCII    *bool   `yaml:"ascii" toml:"ascii"`
	Echo     *bool   `yaml:"echo" toml:"echo"`
	Stats    *bool   `yaml:"stats" toml:"stats"`
	Inputs   []int64 `yaml:"inputs" toml:"inputs"`
	LogLevel string  `yaml:"log_level" toml:"log_level"`
}

// FindManifest returns the path of the first manifest in dir.
func FindManifest(dir string) (string, error) {
	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrManifestNotFound, dir)
}

// LoadManifest parses a manifest, choosing YAML or TOML by extension.
// Unknown keys are rejected in both formats.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}

	var raw manifestDisk
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".toml":
		if err := decodeTOML(abs, &raw); err != nil {
			return nil, err
		}
	case ".yml", ".yaml":
		if err := decodeYAML(abs, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("manifest: %s: unsupported format (expected .yml, .yaml or .toml)", abs)
	}

	manifest := raw.toManifest()
	manifest.Path = abs
	if err := manifest.validate(); err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", abs, err)
	}
	return manifest, nil
}

func decodeYAML(path string, raw *manifestDisk) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return nil
}

func decodeTOML(path string, raw *manifestDisk) error {
	meta, err := toml.DecodeFile(path, raw)
	if err != nil {
		return fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("manifest: parse %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (d manifestDisk) toManifest() *Manifest {
	return &Manifest{
		Program:  strings.TrimSpace(d.Program),
		ASCII:    d.ASCII,
		Echo:     d.Echo,
		Stats:    d.Stats,
		Inputs:   append([]int64(nil), d.Inputs...),
		LogLevel: strings.ToLower(strings.TrimSpace(d.LogLevel)),
	}
}

func (m *Manifest) validate() error {
	switch m.LogLevel {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
		return nil
	default:
		return fmt.Errorf("unknown log_level %q", m.LogLevel)
	}
}

// Dir is the directory program paths are resolved against.
func (m *Manifest) Dir() string {
	if m == nil || m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// Loader returns a source loader rooted at the manifest's directory.
func (m *Manifest) Loader() *Loader {
	return &Loader{Base: m.Dir()}
}
