package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binaryProbeSize is the number of leading bytes sampled when deciding
// whether a file is binary. Binary content past this window is invisible
// to the probe; the full-content check in the aggregator catches it.
const binaryProbeSize = 1024

// Classifier decides which files are analyzable and maps their extensions
// to technology labels.
type Classifier struct {
	table map[string]string
}

// NewClassifier builds a Classifier from the given mappings. A duplicate
// extension is a configuration bug and is rejected outright instead of
// being resolved by whichever entry happens to come last.
func NewClassifier(mappings []ExtensionMapping) (*Classifier, error) {
	table := make(map[string]string, len(mappings))
	for _, m := range mappings {
		ext := strings.ToLower(m.Ext)
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("extension %q must start with a dot", m.Ext)
		}
		if m.Technology == "" {
			return nil, fmt.Errorf("extension %q has an empty technology label", m.Ext)
		}
		if prev, ok := table[ext]; ok {
			return nil, fmt.Errorf("duplicate extension %q (%s and %s)", ext, prev, m.Technology)
		}
		table[ext] = m.Technology
	}
	return &Classifier{table: table}, nil
}

// normalizeExt returns the lowercased final extension of name, including
// the leading dot, or "" when there is none. A leading dot alone (".env",
// ".gitignore") is a hidden file name, not an extension.
func normalizeExt(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(ext)
}

// Known reports whether ext is in the extension table. It expects the
// normalizeExt form of the extension.
func (c *Classifier) Known(ext string) bool {
	_, ok := c.table[ext]
	return ok
}

// Technology returns the technology label for a known extension, or ""
// for an unknown one.
func (c *Classifier) Technology(ext string) string {
	return c.table[ext]
}

// IsBinary samples the first binaryProbeSize bytes of the file and
// reports whether they fail to decode as UTF-8. An empty file is text.
// A multi-byte rune split by the window edge does not count against the
// file.
func (c *Classifier) IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binaryProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	probe := buf[:n]
	if n == binaryProbeSize {
		probe = trimPartialRune(probe)
	}
	return !utf8.Valid(probe), nil
}

// trimPartialRune drops a trailing byte sequence that could be the start
// of a rune cut off by the probe window. Only 0xC2 through 0xF4 can lead
// a multi-byte rune; any other trailing byte is left for the validity
// check.
func trimPartialRune(p []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(p); i++ {
		b := p[len(p)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if b >= 0xC2 && b <= 0xF4 && !utf8.Valid(p[len(p)-i:]) {
			return p[:len(p)-i]
		}
		break
	}
	return p
}
