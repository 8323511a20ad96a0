// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session holds the per-repository detection state. Features and
// the project type are computed lazily on first use and replaced only by
// an explicit refresh or a root change.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/detect"
	"github.com/petar-djukic/codeassist/internal/metrics"
	"github.com/petar-djukic/codeassist/internal/walk"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// Detector computes project features. *detect.Detector satisfies it.
type Detector interface {
	Detect(ctx context.Context, root string) (types.ProjectFeatures, error)
}

// Snapshot is one immutable detection result.
type Snapshot struct {
	ID         string
	Root       string
	Features   types.ProjectFeatures
	Type       types.ProjectType
	DetectedAt time.Time
}

// Session owns the detection state of one repository root. Readers always
// observe a complete snapshot; computations run one at a time.
type Session struct {
	detector Detector
	log      *zap.Logger
	metrics  *metrics.Collectors

	mu   sync.Mutex // serialises computations and root changes
	root string
	snap atomic.Pointer[Snapshot]
}

// New creates a session for root. Nothing is computed until first use.
func New(root string, d Detector, log *zap.Logger, m *metrics.Collectors) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{detector: d, log: log, metrics: m, root: root}
}

// Root returns the current repository root.
func (s *Session) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Snapshot returns the cached snapshot, computing it on first use.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	return s.compute(ctx)
}

// Refresh recomputes the snapshot and swaps it in. On error the previous
// snapshot stays in place.
func (s *Session) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute(ctx)
}

// SetRoot switches the session to a new root and invalidates the cached
// snapshot. The root must be a readable directory.
func (s *Session) SetRoot(root string) error {
	if _, err := walk.CheckRoot(root); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.snap.Store(nil)
	s.log.Debug("session root changed", zap.String("root", root))
	return nil
}

// compute must be called with mu held.
func (s *Session) compute(ctx context.Context) (*Snapshot, error) {
	features, err := s.detector.Detect(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("detecting features: %w", err)
	}
	snap := &Snapshot{
		ID:         uuid.NewString(),
		Root:       s.root,
		Features:   features,
		Type:       detect.Classify(features),
		DetectedAt: time.Now(),
	}
	s.snap.Store(snap)
	s.metrics.Refreshed()
	s.log.Debug("project detected",
		zap.String("snapshot", snap.ID),
		zap.String("root", snap.Root),
		zap.Stringer("type", snap.Type),
	)
	return snap, nil
}
