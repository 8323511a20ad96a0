// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package codeintel is the public interface of the code intelligence
// engine: project detection, relevance search, structural parsing, and
// budget-bounded context assembly over one repository root.
package codeintel

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/search"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// Error types for the Engine API.
var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrRootNotFound   = walk.ErrRootNotFound
	ErrInvalidPattern = search.ErrInvalidPattern
)

// Config configures an Engine.
type Config struct {
	Root        string                // Repository root (required)
	BudgetBytes int                   // Context package size limit (default 24 KiB)
	SearchLimit int                   // Maximum search hits (default 20)
	MaxFileSize int64                 // Larger files are skipped (default 1 MiB)
	MaxDepth    int                   // Feature detection depth (default 5)
	Workers     int                   // Concurrent file readers (default GOMAXPROCS)
	Exclude     []string              // Extra exclude globs
	SyntaxCheck bool                  // Add grammar errors to parse results
	Logger      *zap.Logger           // Defaults to a no-op logger
	Registerer  prometheus.Registerer // Metrics are not recorded when nil
}

// SearchResult is the outcome of Engine.Search.
type SearchResult struct {
	ProjectType  types.ProjectType  `json:"project_type"`
	Hits         []types.SearchHit  `json:"hits"`
	Diagnostics  []types.Diagnostic `json:"diagnostics,omitempty"`
	FilesScanned int                `json:"files_scanned"`
}

// Engine answers code intelligence queries about one repository root.
// Project detection runs once per root and is cached until Refresh or
// SetRoot. All methods are safe for concurrent use.
type Engine interface {
	// DetectFeatures returns the cached project features, scanning the
	// repository on first use.
	DetectFeatures(ctx context.Context) (types.ProjectFeatures, error)

	// Classify maps features to a project type.
	Classify(f types.ProjectFeatures) types.ProjectType

	// ProjectType returns the cached project type.
	ProjectType(ctx context.Context) (types.ProjectType, error)

	// Refresh rescans the repository and replaces the cached detection.
	Refresh(ctx context.Context) (types.ProjectType, error)

	// SetRoot points the engine at another repository and drops the
	// cached detection.
	SetRoot(ctx context.Context, root string) error

	// Root returns the current repository root.
	Root() string

	// Search ranks files against query. A limit <= 0 uses the configured
	// SearchLimit.
	Search(ctx context.Context, query string, limit int) (*SearchResult, error)

	// Grep returns lines matching a regular expression.
	Grep(ctx context.Context, pattern string, limit int) ([]types.GrepMatch, error)

	// Parse extracts the structural summary of text.
	Parse(text string, language types.Language) types.ParseResult

	// ParseFile reads and parses one file. Relative paths resolve against
	// the root.
	ParseFile(ctx context.Context, path string) (types.ParseResult, error)

	// Budget returns the configured BudgetBytes.
	Budget() int

	// BuildContext assembles a context package for query in at most budget
	// bytes. A zero budget yields an empty package; a negative one is
	// ErrInvalidConfig.
	BuildContext(ctx context.Context, query string, budget int) (*types.ContextPackage, error)
}
