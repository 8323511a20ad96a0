// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package detect finds project markers in a repository and classifies the
// project type from them.
package detect

import (
	"context"
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

const (
	defaultMaxDepth = 5
	maxManifestSize = 1 << 20
)

// Config controls a Detector.
type Config struct {
	MaxDepth int         // Deepest file depth scanned (default 5)
	Exclude  []string    // Extra exclude globs
	Logger   *zap.Logger // Defaults to a no-op logger
}

// Detector scans a repository for project markers.
type Detector struct {
	maxDepth int
	exclude  []string
	log      *zap.Logger
}

// NewDetector creates a detector, filling defaults for zero fields.
func NewDetector(cfg Config) *Detector {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Detector{maxDepth: cfg.MaxDepth, exclude: cfg.Exclude, log: cfg.Logger}
}

// Detect walks root once and records every marker file it finds, the
// dependencies their manifests declare, and per-language source file
// counts. Only an unreadable root is an error; unreadable or malformed
// manifests are logged and their dependencies skipped.
func (d *Detector) Detect(ctx context.Context, root string) (types.ProjectFeatures, error) {
	ig, err := walk.NewIgnorer(root, d.exclude, d.log)
	if err != nil {
		return types.ProjectFeatures{}, fmt.Errorf("building ignore rules: %w", err)
	}
	entries, diags, err := walk.Files(ctx, root, ig, walk.Options{MaxDepth: d.maxDepth})
	if err != nil {
		return types.ProjectFeatures{}, err
	}
	for _, diag := range diags {
		d.log.Debug("skipped during detection", zap.String("path", diag.Path), zap.String("reason", diag.Message))
	}

	fs := types.NewFeatureSet()
	for _, e := range entries {
		if lang.DrupalExtension(e.Path) {
			fs.CountFile(types.PHP)
		} else {
			fs.CountFile(lang.ForExtension(path.Ext(e.Path)))
		}

		m, ok := manifestFor(path.Base(e.Path))
		if !ok {
			continue
		}
		fs.Mark(m.feature)
		if m.parse == nil {
			continue
		}
		if e.Size > maxManifestSize {
			d.log.Debug("manifest too large", zap.String("path", e.Path), zap.Int64("size", e.Size))
			continue
		}
		data, err := os.ReadFile(e.AbsPath)
		if err != nil {
			d.log.Debug("unreadable manifest", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		if err := m.parse(fs, e.Path, data); err != nil {
			d.log.Debug("malformed manifest", zap.String("path", e.Path), zap.Error(err))
		}
	}

	features := fs.Freeze()
	d.log.Debug("features detected",
		zap.String("root", root),
		zap.Int("files", len(entries)),
		zap.Any("features", features.Features()),
	)
	return features, nil
}
