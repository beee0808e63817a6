package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName is written next to the manifest that names a git program.
const LockfileName = "yaiba.lock"

// Lockfile pins git program sources to the commit they first resolved to.
type Lockfile struct {
	Path      string
	Generated string
	Tool      string
	Sources   []*LockedSource

	changed bool
}

// LockedSource is one pinned git source.
type LockedSource struct {
	// Source is the git source argument as written.
	Source   string
	Commit   string
	Checksum string
}

func NewLockfile(tool string) *Lockfile {
	return &Lockfile{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Sources:   []*LockedSource{},
	}
}

// LoadLockfile parses a lockfile from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// LoadOrCreateLockfile loads path, or returns an empty lockfile bound to path
// when it does not exist yet.
func LoadOrCreateLockfile(path, tool string) (*Lockfile, error) {
	lock, err := LoadLockfile(path)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	lock = NewLockfile(tool)
	lock.Path = path
	return lock, nil
}

// WriteLockfile serialises the lockfile to path, or to lock.Path when path
// is empty.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	lock.changed = false
	return nil
}

// Lookup returns the pin for source, or nil.
func (l *Lockfile) Lookup(source string) *LockedSource {
	if l == nil {
		return nil
	}
	for _, entry := range l.Sources {
		if entry != nil && entry.Source == source {
			return entry
		}
	}
	return nil
}

// Record pins source and reports whether the lockfile changed.
func (l *Lockfile) Record(source, commit, checksum string) bool {
	if entry := l.Lookup(source); entry != nil {
		if entry.Commit == commit && entry.Checksum == checksum {
			return false
		}
		entry.Commit = commit
		entry.Checksum = checksum
		l.changed = true
		return true
	}
	l.Sources = append(l.Sources, &LockedSource{Source: source, Commit: commit, Checksum: checksum})
	l.normalize()
	l.changed = true
	return true
}

// Changed reports whether Record altered the lockfile since it was loaded
// or last written.
func (l *Lockfile) Changed() bool {
	return l != nil && l.changed
}

// Checksum is the hex sha256 of program text.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (l *Lockfile) normalize() {
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Sources, func(i, j int) bool {
		return l.Sources[i].Source < l.Sources[j].Source
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	sources := make([]lockfileSource, 0, len(l.Sources))
	for _, entry := range l.Sources {
		if entry == nil {
			continue
		}
		sources = append(sources, lockfileSource{
			Source:   entry.Source,
			Commit:   entry.Commit,
			Checksum: entry.Checksum,
		})
	}
	return lockfileDisk{
		Generated: l.Generated,
		Tool:      l.Tool,
		Sources:   sources,
	}
}

type lockfileDisk struct {
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Sources   []lockfileSource `yaml:"sources"`
}

type lockfileSource struct {
	Source   string `yaml:"source"`
	Commit   string `yaml:"commit"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Sources:   make([]*LockedSource, 0, len(d.Sources)),
	}
	for _, entry := range d.Sources {
		lock.Sources = append(lock.Sources, &LockedSource{
			Source:   strings.TrimSpace(entry.Source),
			Commit:   strings.TrimSpace(entry.Commit),
			Checksum: strings.TrimSpace(entry.Checksum),
		})
	}
	lock.normalize()
	return lock
}
