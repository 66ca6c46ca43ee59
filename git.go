package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// forgeHosts are hosting domains whose plain https URLs are treated as
// clonable repositories even without a .git suffix.
var forgeHosts = map[string]struct{}{
	"github.com":    {},
	"gitlab.com":    {},
	"bitbucket.org": {},
	"codeberg.org":  {},
}

// isGitURL checks whether the target looks like a Git repository rather
// than a web page. Local paths are resolved before this is consulted.
func isGitURL(target string) bool {
	if strings.HasSuffix(target, ".git") ||
		strings.HasPrefix(target, "git@") ||
		strings.HasPrefix(target, "ssh://") {
		return true
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		u, err := url.Parse(target)
		if err != nil {
			return false
		}
		if _, ok := forgeHosts[strings.ToLower(u.Hostname())]; ok {
			// A bare host or a single path segment is a user page, not a
			// repository.
			return strings.Count(strings.Trim(u.Path, "/"), "/") >= 1
		}
	}
	return false
}

// cloneRepo clones the repository's default branch into a temporary
// directory and returns its path. The caller removes the directory when
// done.
func cloneRepo(target string, progress io.Writer) (string, error) {
	tempDir, err := os.MkdirTemp("", "ctxfit-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           target,
		Progress:      progress,
		ReferenceName: plumbing.HEAD, // Checkout default branch
		SingleBranch:  true,          // Only fetch the default branch
	})
	if err != nil {
		// Attempt cleanup even if clone failed
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone repository '%s': %w", target, err)
	}
	return tempDir, nil
}
