// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assemble fuses the project type, ranked search hits, and parsed
// file summaries into a context package that never exceeds its budget.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/internal/metrics"
	"github.com/petar-djukic/codeassist/internal/parser"
	"github.com/petar-djukic/codeassist/internal/search"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

const defaultLimit = 20

// Searcher ranks repository files. *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, root, query string, p search.Project, limit int) (*search.Result, error)
}

// Config controls an Assembler.
type Config struct {
	Searcher    Searcher            // Required
	Parser      parser.Parser       // Structural parser options
	Limit       int                 // Hits requested from the searcher (default 20)
	MaxFileSize int64               // Files above this are not parsed (default 1 MiB)
	Logger      *zap.Logger         // Defaults to a no-op logger
	Metrics     *metrics.Collectors // May be nil
}

// Assembler builds context packages.
type Assembler struct {
	cfg Config
	log *zap.Logger
}

// New creates an assembler, filling defaults for zero fields.
func New(cfg Config) *Assembler {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = search.DefaultMaxFileSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Assembler{cfg: cfg, log: cfg.Logger}
}

// Build searches root for query and packs the results into at most budget
// bytes. Citations for every ranked hit come first; citations that do not
// fit are dropped from the tail, and then no summaries are added.
// Otherwise files are parsed in rank order and their summaries appended
// until the first one that would overflow. Unknown-language files are
// cited but never parsed.
func (a *Assembler) Build(ctx context.Context, root, query string, p search.Project, budget int) (*types.ContextPackage, error) {
	res, err := a.cfg.Searcher.Search(ctx, root, query, p, a.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	absRoot, err := walk.CheckRoot(root)
	if err != nil {
		return nil, err
	}

	pkg := &types.ContextPackage{
		ProjectType:     p.Type,
		Query:           query,
		ParsedSummaries: make(map[string]types.ParseResult),
		Budget:          budget,
		Diagnostics:     res.Diagnostics,
	}

	header := renderHeader(p.Type, query)
	if len(header) > budget {
		a.log.Debug("budget too small for header", zap.Int("budget", budget), zap.Int("header", len(header)))
		return pkg, nil
	}
	var buf strings.Builder
	buf.WriteString(header)

	truncated := false
	for i, hit := range res.Hits {
		line := renderCitation(i+1, hit)
		if buf.Len()+len(line) > budget {
			truncated = true
			break
		}
		buf.WriteString(line)
		pkg.RankedFiles = append(pkg.RankedFiles, hit)
	}

	if !truncated {
		memo := make(map[string][]byte)
		for _, hit := range pkg.RankedFiles {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if hit.Language == types.Unknown {
				continue
			}
			pr, diag := a.parse(ctx, absRoot, hit, memo)
			if diag != nil {
				pkg.Diagnostics = append(pkg.Diagnostics, *diag)
				continue
			}
			section := renderSummary(pr)
			if buf.Len()+len(section) > budget {
				break
			}
			buf.WriteString(section)
			pkg.ParsedSummaries[hit.FilePath] = pr
			pkg.SummaryOrder = append(pkg.SummaryOrder, hit.FilePath)
		}
	}

	pkg.Text = buf.String()
	pkg.TotalSizeBytes = len(pkg.Text)
	a.cfg.Metrics.ObserveContext(pkg.TotalSizeBytes)
	a.log.Debug("context assembled",
		zap.String("query", query),
		zap.Int("cited", len(pkg.RankedFiles)),
		zap.Int("hits", len(res.Hits)),
		zap.Int("parsed", pkg.ParsedCount()),
		zap.Int("bytes", pkg.TotalSizeBytes),
		zap.Int("budget", budget),
	)
	return pkg, nil
}

// parse reads and parses one hit. Reads are memoised for the lifetime of
// one Build call.
func (a *Assembler) parse(ctx context.Context, absRoot string, hit types.SearchHit, memo map[string][]byte) (types.ParseResult, *types.Diagnostic) {
	data, ok := memo[hit.FilePath]
	if !ok {
		abs := filepath.Join(absRoot, filepath.FromSlash(hit.FilePath))
		info, err := os.Stat(abs)
		if err != nil {
			return types.ParseResult{}, &types.Diagnostic{Path: hit.FilePath, Kind: types.IOError, Message: err.Error()}
		}
		if info.Size() > a.cfg.MaxFileSize {
			return types.ParseResult{}, &types.Diagnostic{Path: hit.FilePath, Kind: types.TooLarge,
				Message: fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), a.cfg.MaxFileSize)}
		}
		data, err = os.ReadFile(abs)
		if err != nil {
			return types.ParseResult{}, &types.Diagnostic{Path: hit.FilePath, Kind: types.IOError, Message: err.Error()}
		}
		memo[hit.FilePath] = data
	}
	if lang.IsBinary(data) {
		return types.ParseResult{}, &types.Diagnostic{Path: hit.FilePath, Kind: types.EncodingError, Message: "binary or non-UTF-8 content"}
	}

	pr := a.cfg.Parser.ParseFile(ctx, hit.FilePath, string(data), hit.Language)
	a.cfg.Metrics.Anomalies(hit.Language.String(), len(pr.ParseErrors))
	return pr, nil
}
