// Package git reads source revisions of a service checkout.
package git

import (
	stderrors "errors"

	"github.com/go-git/go-git/v5"
)

// HeadRevision returns the commit hash HEAD points at for the repository
// containing path. Parent directories are searched for .git. It returns ""
// with a nil error when path is not inside a repository or HEAD has no commit yet.
func HeadRevision(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		// Fresh repository without commits.
		return "", nil
	}
	return ref.Hash().String(), nil
}

// Short abbreviates a commit hash for display.
func Short(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
