// Package gitstate inspects the git working tree of a target package.
package gitstate

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	git "github.com/go-git/go-git/v5"
)

// ErrNotRepository indicates the path is not inside a git repository.
var ErrNotRepository = errors.New("gitstate: not a git repository")

// Status is the working tree state of a repository.
type Status struct {
	Staged    []string
	Modified  []string
	Untracked []string
}

// Clean reports whether nothing is staged, modified or untracked.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// Read returns the working tree status of the repository containing dir.
func Read(dir string) (*Status, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open %s: %w", dir, ErrNotRepository)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	out := &Status{}
	for file, fs := range st {
		file = filepath.ToSlash(file)
		switch {
		case fs.Worktree == git.Untracked:
			out.Untracked = append(out.Untracked, file)
		default:
			if fs.Staging != git.Unmodified {
				out.Staged = append(out.Staged, file)
			}
			if fs.Worktree != git.Unmodified {
				out.Modified = append(out.Modified, file)
			}
		}
	}
	slices.Sort(out.Staged)
	slices.Sort(out.Modified)
	slices.Sort(out.Untracked)
	return out, nil
}

// Dirty reports whether the repository containing dir has uncommitted
// changes. A directory outside any repository is not dirty.
func Dirty(dir string) (bool, error) {
	st, err := Read(dir)
	if errors.Is(err, ErrNotRepository) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !st.Clean(), nil
}
