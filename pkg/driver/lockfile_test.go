package driver

import (
	"path/filepath"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
)

func TestLockfileRoundTripSortsSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileName)

	lock := NewLockfile("yaiba test")
	lock.Record("git+https://example.com/b.git#b.rui", "bbbb", Checksum("=2!"))
	lock.Record("git+https://example.com/a.git#a.rui", "aaaa", Checksum("=1!"))
	if !lock.Changed() {
		t.Fatalf("expected lockfile to be marked changed")
	}
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	if lock.Changed() {
		t.Fatalf("write should clear the changed flag")
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Tool != "yaiba test" || len(loaded.Sources) != 2 {
		t.Fatalf("unexpected lockfile %#v", loaded)
	}
	if loaded.Sources[0].Commit != "aaaa" || loaded.Sources[1].Commit != "bbbb" {
		t.Fatalf("expected sources sorted by name, got %v, %v", loaded.Sources[0], loaded.Sources[1])
	}
	if loaded.Record("git+https://example.com/a.git#a.rui", "aaaa", Checksum("=1!")) {
		t.Fatalf("recording an identical pin should not change the lockfile")
	}
}

func TestLoadOrCreateLockfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock, err := LoadOrCreateLockfile(path, "yaiba")
	if err != nil {
		t.Fatalf("LoadOrCreateLockfile: %v", err)
	}
	if lock.Path != path || len(lock.Sources) != 0 {
		t.Fatalf("unexpected fresh lockfile %#v", lock)
	}

	writeFile(t, path, "generated: now\nunknown: 1\n")
	if _, err := LoadOrCreateLockfile(path, "yaiba"); err == nil {
		t.Fatalf("expected parse error for unknown field")
	}
}

func TestLoaderPinsGitSources(t *testing.T) {
	repo, hash := newMemoryRepo(t, map[string]string{"prog.rui": "=1w!"})
	const arg = "git+https://example.com/progs.git#prog.rui"

	var revs []string
	fetch := func(spec GitSpec) (*git.Repository, error) {
		revs = append(revs, spec.Rev)
		return repo, nil
	}

	lock := NewLockfile("yaiba")
	loader := &Loader{Fetch: fetch, Lock: lock}
	if _, err := loader.Load(arg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	pinned := lock.Lookup(arg)
	if pinned == nil || pinned.Commit != hash || pinned.Checksum != Checksum("=1w!") {
		t.Fatalf("expected pin at %s, got %#v", hash, pinned)
	}

	if _, err := loader.Load(arg); err != nil {
		t.Fatalf("Load pinned: %v", err)
	}
	if len(revs) != 2 || revs[0] != "" || revs[1] != hash {
		t.Fatalf("expected second fetch at the pinned commit, got %v", revs)
	}

	pinned.Checksum = Checksum("tampered")
	if _, err := loader.Load(arg); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}
