package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatingTokenizer(t *testing.T) {
	tok := EstimatingTokenizer{}
	defer tok.Close()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"under half a token", "a", 0},
		{"half rounds up", "ab", 1},
		{"exactly one token", "abcd", 1},
		{"one and a half", "abcdef", 2},
		{"runes not bytes", "héllo", 1},
		{"long input", strings.Repeat("a", 400), 100},
		{"multibyte runes", "€€€€", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tok.CountTokens(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTokenizer(t *testing.T) {
	t.Run("estimate backend", func(t *testing.T) {
		tok, err := newTokenizer(TokenizerConfig{Type: "estimate"})
		require.NoError(t, err)
		defer tok.Close()

		assert.IsType(t, EstimatingTokenizer{}, tok)
		n, err := tok.CountTokens("abcd")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("type is case-insensitive", func(t *testing.T) {
		tok, err := newTokenizer(TokenizerConfig{Type: "Estimate"})
		require.NoError(t, err)
		defer tok.Close()
		assert.IsType(t, EstimatingTokenizer{}, tok)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := newTokenizer(TokenizerConfig{Type: "bert"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported tokenizer type")
	})
}
