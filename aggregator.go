package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	gitignore "github.com/monochromegane/go-gitignore"
)

// errMalformedContent marks a file whose leading bytes pass the binary
// probe but whose remainder is not valid UTF-8.
var errMalformedContent = errors.New("content is not valid UTF-8")

// Options tunes a traversal run. The zero value means one worker per CPU,
// no extra excludes, no ignore matcher, no size or depth limit and no
// observer.
type Options struct {
	Workers      int
	ExcludeGlobs []string
	Ignore       gitignore.IgnoreMatcher
	MaxFileSize  int64
	MaxDepth     int
	Progress     func(FileRecord)
}

// candidate is a file that passed the traversal filters and awaits
// reading and tokenizing by a worker.
type candidate struct {
	path string
	ext  string
}

// Aggregator walks a source tree and folds per-file token counts into a
// Report. The tokenizer is injected, so the same tree is countable under
// any backend.
type Aggregator struct {
	classifier *Classifier
	tokenizer  Tokenizer
	opts       Options
}

func NewAggregator(classifier *Classifier, tokenizer Tokenizer, opts Options) *Aggregator {
	return &Aggregator{classifier: classifier, tokenizer: tokenizer, opts: opts}
}

// Run traverses root and returns the aggregated report. Candidates stream
// from a single walker through a bounded worker pool to a single
// collector goroutine, which is the only writer of the report, so no
// aggregate is ever half-updated. A cancelled context aborts the run and
// returns the cancellation error, never a partial report.
func (a *Aggregator) Run(ctx context.Context, root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	workers := a.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan candidate, workers)
	results := make(chan FileRecord, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go a.worker(ctx, jobs, results, &wg)
	}

	report := newReport()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for rec := range results {
			a.collect(report, rec)
		}
	}()

	walkErr := a.walk(ctx, root, jobs, results)
	close(jobs)
	wg.Wait()
	close(results)
	<-done

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}
	if walkErr != nil {
		return nil, walkErr
	}

	a.finalize(report)
	return report, nil
}

// walk feeds candidates to the worker pool. Excluded directory names are
// pruned before descent, so nothing below them is ever read. Traversal
// errors below the root are recoverable and routed through results; an
// error on the root itself aborts the run.
func (a *Aggregator) walk(ctx context.Context, root string, jobs chan<- candidate, results chan<- FileRecord) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return fmt.Errorf("cannot access %s: %w", root, walkErr)
			}
			results <- FileRecord{Path: path, Err: walkErr}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			// The root is walked even if its own name is excluded; the
			// user asked for it explicitly.
			if path == root {
				return nil
			}
			if _, ok := excludedDirs[name]; ok {
				return fs.SkipDir
			}
			if matchesAnyGlob(name, a.opts.ExcludeGlobs) {
				return fs.SkipDir
			}
			if a.opts.MaxDepth > 0 && pathDepth(root, path) >= a.opts.MaxDepth {
				return fs.SkipDir
			}
			// Match wants the walk path itself; the matcher resolves it
			// against the root the .gitignore was loaded from.
			if a.opts.Ignore != nil && a.opts.Ignore.Match(path, true) {
				return fs.SkipDir
			}
			return nil
		}

		ext := normalizeExt(name)
		if ext == "" || !a.classifier.Known(ext) {
			return nil
		}
		if matchesAnyGlob(name, a.opts.ExcludeGlobs) {
			return nil
		}
		if a.opts.Ignore != nil && a.opts.Ignore.Match(path, false) {
			return nil
		}
		if a.opts.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				results <- FileRecord{Path: path, Ext: ext, Err: err}
				return nil
			}
			if info.Size() > a.opts.MaxFileSize {
				return nil
			}
		}

		select {
		case jobs <- candidate{path: path, ext: ext}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

// worker reads, probes and tokenizes candidates. Every candidate yields
// exactly one FileRecord, whatever the outcome.
func (a *Aggregator) worker(ctx context.Context, jobs <-chan candidate, results chan<- FileRecord, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case c, ok := <-jobs:
			if !ok {
				return
			}
			results <- a.process(c)
		case <-ctx.Done():
			return
		}
	}
}

// process runs the per-file pipeline: binary probe, full read, UTF-8
// validation, token count. Binary files are skipped silently; any other
// failure is recoverable and recorded against the file alone.
func (a *Aggregator) process(c candidate) FileRecord {
	rec := FileRecord{Path: c.path, Ext: c.ext, Technology: a.classifier.Technology(c.ext)}

	binary, err := a.classifier.IsBinary(c.path)
	if err != nil {
		rec.Err = fmt.Errorf("probe: %w", err)
		return rec
	}
	if binary {
		rec.Binary = true
		return rec
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		rec.Err = fmt.Errorf("read: %w", err)
		return rec
	}
	if !utf8.Valid(data) {
		rec.Err = errMalformedContent
		return rec
	}

	tokens, err := a.tokenizer.CountTokens(string(data))
	if err != nil {
		rec.Err = fmt.Errorf("tokenize: %w", err)
		return rec
	}
	rec.Tokens = tokens
	return rec
}

// collect folds one record into the report. It runs on the collector
// goroutine only.
func (a *Aggregator) collect(report *Report, rec FileRecord) {
	switch {
	case rec.Err != nil:
		report.Errors = append(report.Errors, FileError{Path: rec.Path, Err: rec.Err})
	case rec.Binary:
		// Binary files are excluded silently, like unknown extensions.
	default:
		report.Total += rec.Tokens
		report.ByExtension[rec.Ext] += rec.Tokens
		report.FilesByExtension[rec.Ext]++
	}
	// Walker-emitted directory errors carry no extension. They join the
	// error list but are not files; the observer sees file records only.
	if a.opts.Progress != nil && rec.Ext != "" {
		a.opts.Progress(rec)
	}
}

// finalize derives the technology aggregates from the extension
// aggregates by folding through the extension table. Errors are sorted so
// reports come out byte-identical across runs.
func (a *Aggregator) finalize(report *Report) {
	for ext, tokens := range report.ByExtension {
		report.ByTechnology[a.classifier.Technology(ext)] += tokens
	}
	for ext, files := range report.FilesByExtension {
		report.FilesByTechnology[a.classifier.Technology(ext)] += files
	}
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Path < report.Errors[j].Path
	})
}

// matchesAnyGlob reports whether name matches any of the glob patterns.
// Patterns are validated up front, so Match cannot fail here.
func matchesAnyGlob(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// pathDepth counts directory levels of path below root.
func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(strings.Trim(rel, "/"), "/")
}
