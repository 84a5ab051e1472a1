package output

import (
	"github.com/go-git/go-git/v5"

	"github.com/openactive/models-lib/errors"
)

// shortHashLength matches git's default abbreviation.
const shortHashLength = 7

// SourceVersion returns the abbreviated HEAD commit of the git repository
// containing path.
func SourceVersion(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.Wrapf(err, "failed to open repository at %s", path)
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve HEAD of %s", path)
	}
	return head.Hash().String()[:shortHashLength], nil
}
