package driver

import (
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

const gitPrefix = "git+"

// GitSpec addresses one file inside a git repository:
// git+<url>#<path>[@<rev>].
type GitSpec struct {
	URL  string
	Path string
	Rev  string
}

func (g GitSpec) String() string {
	s := gitPrefix + g.URL + "#" + g.Path
	if g.Rev != "" {
		s += "@" + g.Rev
	}
	return s
}

// ParseGitSpec reports whether arg is a git source and, if so, decodes it.
func ParseGitSpec(arg string) (GitSpec, bool, error) {
	if !strings.HasPrefix(arg, gitPrefix) {
		return GitSpec{}, false, nil
	}
	rest := strings.TrimPrefix(arg, gitPrefix)
	hash := strings.LastIndex(rest, "#")
	if hash <= 0 || hash == len(rest)-1 {
		return GitSpec{}, true, fmt.Errorf("git source %q: expected git+<url>#<path>[@<rev>]", arg)
	}
	spec := GitSpec{URL: rest[:hash], Path: rest[hash+1:]}
	if at := strings.LastIndex(spec.Path, "@"); at >= 0 {
		spec.Rev = spec.Path[at+1:]
		spec.Path = spec.Path[:at]
		if spec.Rev == "" || spec.Path == "" {
			return GitSpec{}, true, fmt.Errorf("git source %q: empty path or revision", arg)
		}
	}
	spec.Path = strings.TrimPrefix(spec.Path, "/")
	return spec, true, nil
}

// Fetcher produces a repository for a git source.
type Fetcher func(spec GitSpec) (*git.Repository, error)

// CloneRepository clones spec.URL into memory. Without a revision only the
// tip of the default branch is fetched.
func CloneRepository(spec GitSpec) (*git.Repository, error) {
	opts := &git.CloneOptions{URL: spec.URL}
	if spec.Rev == "" {
		opts.Depth = 1
		opts.SingleBranch = true
	}
	repo, err := git.Clone(memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, fmt.Errorf("git: clone %s: %w", spec.URL, err)
	}
	return repo, nil
}

// FetchGitFile fetches the repository and returns the file's contents and
// the commit they were read from.
func FetchGitFile(fetch Fetcher, spec GitSpec) (string, string, error) {
	repo, err := fetch(spec)
	if err != nil {
		return "", "", err
	}
	return ReadGitFile(repo, spec.Path, spec.Rev)
}

// ReadGitFile reads path from the commit rev resolves to (HEAD when empty).
func ReadGitFile(repo *git.Repository, path, rev string) (string, string, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", "", fmt.Errorf("git: resolve %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", "", fmt.Errorf("git: commit %s: %w", hash, err)
	}
	file, err := commit.File(path)
	if err != nil {
		return "", "", fmt.Errorf("git: %s at %s: %w", path, rev, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return "", "", fmt.Errorf("git: read %s: %w", path, err)
	}
	return contents, commit.Hash.String(), nil
}
