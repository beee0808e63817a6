// Package driver resolves the program a run should execute and the run
// settings that go with it.
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LyricLy/yaiba/pkg/program"
)

type SourceKind int

const (
	SourceLiteral SourceKind = iota
	SourceFile
	SourceGit
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceGit:
		return "git"
	default:
		return "literal"
	}
}

// Source is raw program text together with where it came from.
type Source struct {
	Name string
	Kind SourceKind
	Text string
	// Commit is the resolved commit of a git source.
	Commit string
}

// Program strips the source and builds its line index.
func (s *Source) Program() *program.Program {
	return program.FromSource(s.Name, s.Text)
}

// Loader resolves source arguments. Relative file paths are resolved
// against Base.
type Loader struct {
	Base string
	// Fetch clones git sources; nil uses CloneRepository.
	Fetch Fetcher
	// Lock, when set, pins git sources and records new pins.
	Lock *Lockfile
}

// LoadSource resolves arg relative to the working directory.
func LoadSource(arg string) (*Source, error) {
	return (&Loader{}).Load(arg)
}

// Load resolves a source argument. A git+ URL is fetched, an existing file
// is read, and anything else is taken as literal program text.
func (l *Loader) Load(arg string) (*Source, error) {
	if arg == "" {
		return nil, errors.New("loader: empty program")
	}
	if spec, ok, err := ParseGitSpec(arg); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return l.loadGit(spec)
	}
	if path, ok := l.existingFile(arg); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", path, err)
		}
		return &Source{Name: path, Kind: SourceFile, Text: string(data)}, nil
	}
	return &Source{Name: "<literal>", Kind: SourceLiteral, Text: arg}, nil
}

func (l *Loader) existingFile(arg string) (string, bool) {
	// Program text routinely contains newlines; never treat it as a path.
	if strings.ContainsAny(arg, "\n\x00") {
		return "", false
	}
	path := arg
	if l.Base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Base, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, true
	}
	return abs, true
}

func (l *Loader) loadGit(spec GitSpec) (*Source, error) {
	fetch := l.Fetch
	if fetch == nil {
		fetch = CloneRepository
	}
	key := spec.String()
	pinned := l.Lock.Lookup(key)
	if pinned != nil && pinned.Commit != "" {
		spec.Rev = pinned.Commit
	}
	text, commit, err := FetchGitFile(fetch, spec)
	if err != nil {
		return nil, err
	}
	sum := Checksum(text)
	if pinned != nil && pinned.Commit == commit && pinned.Checksum != "" && pinned.Checksum != sum {
		return nil, fmt.Errorf("lockfile: checksum mismatch for %s at %s", key, commit)
	}
	if l.Lock != nil {
		l.Lock.Record(key, commit, sum)
	}
	return &Source{Name: key, Kind: SourceGit, Text: text, Commit: commit}, nil
}
