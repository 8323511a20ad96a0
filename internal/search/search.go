// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package search ranks repository files against a query and the detected
// project type, and runs regular-expression line searches.
package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/internal/metrics"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// DefaultMaxFileSize is the largest file read when Config leaves it unset.
const DefaultMaxFileSize = 1 << 20

// ErrInvalidPattern is returned by Grep for a pattern that does not compile.
var ErrInvalidPattern = errors.New("invalid search pattern")

// Config controls an Engine.
type Config struct {
	MaxFileSize int64               // Files above this are skipped (default 1 MiB)
	MaxDepth    int                 // Deepest file depth scanned; 0 means unlimited
	Workers     int                 // Concurrent file readers (default NumCPU)
	Exclude     []string            // Extra exclude globs
	Logger      *zap.Logger         // Defaults to a no-op logger
	Metrics     *metrics.Collectors // May be nil
}

// Engine searches repositories. It holds no state between calls and is
// safe for concurrent use.
type Engine struct {
	cfg Config
	log *zap.Logger
}

// Result is the outcome of one search.
type Result struct {
	Hits         []types.SearchHit
	Diagnostics  []types.Diagnostic
	FilesScanned int
}

// NewEngine creates an engine, filling defaults for zero fields.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: cfg.Logger}
}

// fileOutcome is the per-file slot a worker fills.
type fileOutcome struct {
	hit    types.SearchHit
	ok     bool
	diag   *types.Diagnostic
	greps  []types.GrepMatch
	opened bool
}

// Search scores every eligible file under root and returns at most limit
// hits sorted by score descending, then path ascending. A limit <= 0
// returns every scoring file. Each file is read once; scores and excerpts
// come from that read.
func (e *Engine) Search(ctx context.Context, root, query string, p Project, limit int) (*Result, error) {
	start := time.Now()
	defer e.cfg.Metrics.ObserveSearch("search", start)

	entries, diags, err := e.files(ctx, root)
	if err != nil {
		return nil, err
	}

	sc := newScorer(query, p)
	out := make([]fileOutcome, len(entries))
	err = walk.Each(ctx, e.cfg.Workers, len(entries), func(_ context.Context, i int) error {
		ent := entries[i]
		o := &out[i]
		if ent.Size > e.cfg.MaxFileSize {
			o.diag = &types.Diagnostic{Path: ent.Path, Kind: types.TooLarge,
				Message: fmt.Sprintf("%d bytes exceeds limit of %d", ent.Size, e.cfg.MaxFileSize)}
			return nil
		}
		data, err := os.ReadFile(ent.AbsPath)
		if err != nil {
			o.diag = &types.Diagnostic{Path: ent.Path, Kind: types.IOError, Message: err.Error()}
			return nil
		}
		o.opened = true
		o.hit, o.ok = sc.score(ent.Path, data)
		if lang.IsBinary(data) {
			o.diag = &types.Diagnostic{Path: ent.Path, Kind: types.EncodingError, Message: "binary or non-UTF-8 content"}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Diagnostics: diags}
	for i := range out {
		res.merge(&out[i], e.cfg.Metrics)
	}
	sortHits(res.Hits)
	if limit > 0 && len(res.Hits) > limit {
		res.Hits = res.Hits[:limit]
	}
	e.cfg.Metrics.Scanned("search", res.FilesScanned)
	e.log.Debug("search complete",
		zap.String("query", query),
		zap.Stringer("project_type", p.Type),
		zap.Int("scanned", res.FilesScanned),
		zap.Int("hits", len(res.Hits)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Grep returns the lines matching pattern, sorted by path then line. At
// most limit matches are returned; limit <= 0 returns all. Binary files
// are skipped.
func (e *Engine) Grep(ctx context.Context, root, pattern string, limit int) ([]types.GrepMatch, error) {
	start := time.Now()
	defer e.cfg.Metrics.ObserveSearch("grep", start)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	entries, _, err := e.files(ctx, root)
	if err != nil {
		return nil, err
	}

	out := make([]fileOutcome, len(entries))
	err = walk.Each(ctx, e.cfg.Workers, len(entries), func(_ context.Context, i int) error {
		ent := entries[i]
		if ent.Size > e.cfg.MaxFileSize {
			return nil
		}
		data, err := os.ReadFile(ent.AbsPath)
		if err != nil || lang.IsBinary(data) {
			return nil
		}
		out[i].opened = true
		out[i].greps = grepLines(ent.Path, data, re)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var matches []types.GrepMatch
	scanned := 0
	for _, o := range out {
		if o.opened {
			scanned++
		}
		matches = append(matches, o.greps...)
	}
	e.cfg.Metrics.Scanned("grep", scanned)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (e *Engine) files(ctx context.Context, root string) ([]walk.Entry, []types.Diagnostic, error) {
	ig, err := walk.NewIgnorer(root, e.cfg.Exclude, e.cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building ignore rules: %w", err)
	}
	return walk.Files(ctx, root, ig, walk.Options{MaxDepth: e.cfg.MaxDepth})
}

func (r *Result) merge(o *fileOutcome, m *metrics.Collectors) {
	if o.opened {
		r.FilesScanned++
	}
	if o.diag != nil {
		r.Diagnostics = append(r.Diagnostics, *o.diag)
		m.Skipped(o.diag.Kind.String())
	}
	if o.ok {
		r.Hits = append(r.Hits, o.hit)
	}
}

func sortHits(hits []types.SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FilePath < hits[j].FilePath
	})
}

func grepLines(relPath string, data []byte, re *regexp.Regexp) []types.GrepMatch {
	var out []types.GrepMatch
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	num := 0
	for sc.Scan() {
		num++
		if re.Match(sc.Bytes()) {
			out = append(out, types.GrepMatch{FilePath: relPath, Line: num, Text: excerpt(sc.Text())})
		}
	}
	return out
}
