package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGitURL(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"https://github.com/user/repo", true},
		{"https://github.com/user/repo.git", true},
		{"git@github.com:user/repo.git", true},
		{"git@github.com:user/repo", true},
		{"ssh://git@host/repo", true},
		{"https://gitlab.com/group/project", true},
		{"https://bitbucket.org/team/repo", true},
		{"https://example.com/repo.git", true},
		{"https://github.com/user", false},
		{"https://github.com", false},
		{"https://example.com/user/repo", false},
		{"./local/dir", false},
		{"not-a-url", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isGitURL(tt.target), tt.target)
	}
}
