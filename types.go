package main

import "sort"

// FileRecord is the per-file outcome that flows from the worker pool to
// the collector. Exactly one outcome holds: the file was counted (Err nil,
// Binary false), skipped silently as binary (Binary true), or failed with
// a recoverable error (Err non-nil).
type FileRecord struct {
	Path       string
	Ext        string
	Technology string
	Tokens     int
	Binary     bool
	Err        error
}

// FileError records a file skipped because of a recoverable error. Such a
// file contributes to no aggregate at all, not even the file counts.
type FileError struct {
	Path string
	Err  error
}

// Report is the aggregated result of one run. The technology maps are
// derived from the extension maps through the extension table, so the two
// views always sum to the same totals.
type Report struct {
	Total             int
	ByExtension       map[string]int
	FilesByExtension  map[string]int
	ByTechnology      map[string]int
	FilesByTechnology map[string]int
	Errors            []FileError
}

func newReport() *Report {
	return &Report{
		ByExtension:       make(map[string]int),
		FilesByExtension:  make(map[string]int),
		ByTechnology:      make(map[string]int),
		FilesByTechnology: make(map[string]int),
	}
}

// FileCount returns the number of files that were counted.
func (r *Report) FileCount() int {
	total := 0
	for _, n := range r.FilesByExtension {
		total += n
	}
	return total
}

// CountEntry is one row of a token breakdown table.
type CountEntry struct {
	Key    string
	Tokens int
	Files  int
}

// ExtensionEntries returns the per-extension breakdown sorted by token
// count, highest first, with ties broken by key so repeated runs render
// identically.
func (r *Report) ExtensionEntries() []CountEntry {
	return sortedEntries(r.ByExtension, r.FilesByExtension)
}

// TechnologyEntries returns the per-technology breakdown in the same
// order.
func (r *Report) TechnologyEntries() []CountEntry {
	return sortedEntries(r.ByTechnology, r.FilesByTechnology)
}

func sortedEntries(tokens, files map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(tokens))
	for key, n := range tokens {
		entries = append(entries, CountEntry{Key: key, Tokens: n, Files: files[key]})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Tokens != entries[j].Tokens {
			return entries[i].Tokens > entries[j].Tokens
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
