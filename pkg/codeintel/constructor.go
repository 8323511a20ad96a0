// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package codeintel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/assemble"
	"github.com/petar-djukic/codeassist/internal/detect"
	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/internal/metrics"
	"github.com/petar-djukic/codeassist/internal/parser"
	"github.com/petar-djukic/codeassist/internal/search"
	"github.com/petar-djukic/codeassist/internal/session"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

const (
	defaultBudgetBytes = 24 << 10
	defaultSearchLimit = 20
	defaultMaxFileSize = 1 << 20
	defaultMaxDepth    = 5
)

// New validates the config and returns a ready-to-use Engine. It does not
// scan the repository; detection happens on first use.
func New(cfg Config) (Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	var m *metrics.Collectors
	if cfg.Registerer != nil {
		m = metrics.New(cfg.Registerer)
	}
	det := detect.NewDetector(detect.Config{
		MaxDepth: cfg.MaxDepth,
		Exclude:  cfg.Exclude,
		Logger:   cfg.Logger.Named("detect"),
	})
	searcher := search.NewEngine(search.Config{
		MaxFileSize: cfg.MaxFileSize,
		Workers:     cfg.Workers,
		Exclude:     cfg.Exclude,
		Logger:      cfg.Logger.Named("search"),
		Metrics:     m,
	})
	p := parser.Parser{SyntaxCheck: cfg.SyntaxCheck}

	return &engine{
		cfg:      cfg,
		log:      cfg.Logger,
		metrics:  m,
		session:  session.New(cfg.Root, det, cfg.Logger.Named("session"), m),
		searcher: searcher,
		parser:   p,
		assembler: assemble.New(assemble.Config{
			Searcher:    searcher,
			Parser:      p,
			Limit:       cfg.SearchLimit,
			MaxFileSize: cfg.MaxFileSize,
			Logger:      cfg.Logger.Named("assemble"),
			Metrics:     m,
		}),
	}, nil
}

// validateConfig checks that required fields are present and usable.
func validateConfig(cfg Config) error {
	if cfg.Root == "" {
		return fmt.Errorf("Root is required")
	}
	if _, err := walk.CheckRoot(cfg.Root); err != nil {
		return err
	}
	switch {
	case cfg.BudgetBytes < 0:
		return fmt.Errorf("BudgetBytes must not be negative, got %d", cfg.BudgetBytes)
	case cfg.SearchLimit < 0:
		return fmt.Errorf("SearchLimit must not be negative, got %d", cfg.SearchLimit)
	case cfg.MaxFileSize < 0:
		return fmt.Errorf("MaxFileSize must not be negative, got %d", cfg.MaxFileSize)
	case cfg.MaxDepth < 0:
		return fmt.Errorf("MaxDepth must not be negative, got %d", cfg.MaxDepth)
	case cfg.Workers < 0:
		return fmt.Errorf("Workers must not be negative, got %d", cfg.Workers)
	}
	if _, err := walk.NewIgnorer(cfg.Root, cfg.Exclude, cfg.Logger); err != nil {
		return err
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.BudgetBytes == 0 {
		cfg.BudgetBytes = defaultBudgetBytes
	}
	if cfg.SearchLimit == 0 {
		cfg.SearchLimit = defaultSearchLimit
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// engine wires the internal components behind the public Engine interface.
type engine struct {
	cfg       Config
	log       *zap.Logger
	metrics   *metrics.Collectors
	session   *session.Session
	searcher  *search.Engine
	parser    parser.Parser
	assembler *assemble.Assembler
}

func (e *engine) DetectFeatures(ctx context.Context) (types.ProjectFeatures, error) {
	snap, err := e.session.Snapshot(ctx)
	if err != nil {
		return types.ProjectFeatures{}, err
	}
	return snap.Features, nil
}

func (e *engine) Classify(f types.ProjectFeatures) types.ProjectType {
	return detect.Classify(f)
}

func (e *engine) ProjectType(ctx context.Context) (types.ProjectType, error) {
	snap, err := e.session.Snapshot(ctx)
	if err != nil {
		return types.ProjectType{}, err
	}
	return snap.Type, nil
}

func (e *engine) Refresh(ctx context.Context) (types.ProjectType, error) {
	snap, err := e.session.Refresh(ctx)
	if err != nil {
		return types.ProjectType{}, err
	}
	return snap.Type, nil
}

func (e *engine) SetRoot(_ context.Context, root string) error {
	return e.session.SetRoot(root)
}

func (e *engine) Root() string {
	return e.session.Root()
}

func (e *engine) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	snap, err := e.session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	res, err := e.searcher.Search(ctx, snap.Root, query, project(snap), limit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		ProjectType:  snap.Type,
		Hits:         res.Hits,
		Diagnostics:  res.Diagnostics,
		FilesScanned: res.FilesScanned,
	}, nil
}

func (e *engine) Grep(ctx context.Context, pattern string, limit int) ([]types.GrepMatch, error) {
	return e.searcher.Grep(ctx, e.session.Root(), pattern, limit)
}

func (e *engine) Parse(text string, language types.Language) types.ParseResult {
	return e.parser.ParseFile(context.Background(), "", text, language)
}

func (e *engine) ParseFile(ctx context.Context, path string) (types.ParseResult, error) {
	root := e.session.Root()
	abs := path
	if !filepath.IsAbs(path) {
		abs = filepath.Join(root, path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() > e.cfg.MaxFileSize {
		return types.ParseResult{}, fmt.Errorf("reading %s: %d bytes exceeds limit of %d", path, info.Size(), e.cfg.MaxFileSize)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	rel := path
	if r, relErr := filepath.Rel(root, abs); relErr == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		rel = filepath.ToSlash(r)
	}
	if lang.IsBinary(data) {
		return types.ParseResult{FilePath: rel, Language: types.Unknown, Symbols: []types.Symbol{}}, nil
	}
	language := lang.Detect(rel, data)
	res := e.parser.ParseFile(ctx, rel, string(data), language)
	e.metrics.Anomalies(language.String(), len(res.ParseErrors))
	return res, nil
}

func (e *engine) Budget() int {
	return e.cfg.BudgetBytes
}

func (e *engine) BuildContext(ctx context.Context, query string, budget int) (*types.ContextPackage, error) {
	if budget < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative, got %d", ErrInvalidConfig, budget)
	}
	snap, err := e.session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pkg, err := e.assembler.Build(ctx, snap.Root, query, project(snap), budget)
	if err != nil {
		return nil, err
	}
	e.log.Debug("context built",
		zap.String("snapshot", snap.ID),
		zap.Int("parsed", pkg.ParsedCount()),
		zap.Int("bytes", pkg.TotalSizeBytes),
	)
	return pkg, nil
}

// project is the scoring context of a detection snapshot.
func project(snap *session.Snapshot) search.Project {
	return search.Project{Type: snap.Type, DrupalModules: snap.Features.DrupalModules()}
}
