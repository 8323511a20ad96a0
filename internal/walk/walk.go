// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package walk enumerates the files of a repository, applying version
// control ignore files, default skip directories, user exclude globs, and
// binary-extension filtering.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// ErrRootNotFound is returned when the repository root cannot be read.
var ErrRootNotFound = errors.New("repository root not readable")

// skipDirs contains directory names that are never descended into.
var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	"vendor":        true,
	"target":        true,
	"build":         true,
	"dist":          true,
	"__pycache__":   true,
	"venv":          true,
	".venv":         true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".ruff_cache":   true,
	".next":         true,
	".idea":         true,
	".vscode":       true,
}

// Options bound a walk.
type Options struct {
	MaxDepth int      // Deepest file depth to return, root children are depth 1 (0 = unlimited)
	Exclude  []string // Extra glob patterns matched against slash-separated relative paths
}

// Entry is one file found by the walk.
type Entry struct {
	Path    string // Slash-separated path relative to the root
	AbsPath string // Absolute path on disk
	Size    int64  // Size in bytes at walk time
}

// Ignorer is the ignore-rule predicate shared by every scan.
type Ignorer struct {
	matcher  gitignore.Matcher
	excludes []glob.Glob
}

// NewIgnorer loads .gitignore files (and .git/info/exclude) beneath root
// and compiles the exclude globs. Unreadable ignore files are logged and
// treated as empty. log may be nil.
func NewIgnorer(root string, exclude []string, log *zap.Logger) (*Ignorer, error) {
	ig := &Ignorer{}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil && log != nil {
		log.Debug("reading ignore files", zap.String("root", root), zap.Error(err))
	}
	if len(patterns) > 0 {
		ig.matcher = gitignore.NewMatcher(patterns)
	}
	for _, p := range exclude {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		ig.excludes = append(ig.excludes, g)
	}
	return ig, nil
}

// IsIgnored reports whether the slash-separated relative path is excluded.
func (ig *Ignorer) IsIgnored(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		return false
	}
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}
	if isDir && skipDirs[base] {
		return true
	}
	if strings.HasPrefix(base, ".") {
		return true
	}
	if ig == nil {
		return false
	}
	if ig.matcher != nil && ig.matcher.Match(strings.Split(rel, "/"), isDir) {
		return true
	}
	for _, g := range ig.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// CheckRoot resolves root to an absolute directory path.
func CheckRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, abs)
	}
	return abs, nil
}

// Files walks root and returns every eligible file sorted by path.
// Unreadable directories are reported as diagnostics and skipped. Only an
// unreadable root is an error.
func Files(ctx context.Context, root string, ig *Ignorer, opts Options) ([]Entry, []types.Diagnostic, error) {
	absRoot, err := CheckRoot(root)
	if err != nil {
		return nil, nil, err
	}

	var (
		entries []Entry
		diags   []types.Diagnostic
	)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if err != nil {
			if path == absRoot {
				return fmt.Errorf("%w: %v", ErrRootNotFound, err)
			}
			diags = append(diags, types.Diagnostic{Path: rel, Kind: types.IOError, Message: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		depth := strings.Count(rel, "/") + 1
		if d.IsDir() {
			if ig.IsIgnored(rel, true) || (opts.MaxDepth > 0 && depth >= opts.MaxDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if ig.IsIgnored(rel, false) || lang.BinaryExtension(rel) {
			return nil
		}
		var size int64
		if info, infoErr := d.Info(); infoErr == nil {
			size = info.Size()
		}
		entries = append(entries, Entry{Path: rel, AbsPath: path, Size: size})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRootNotFound) {
			return nil, nil, err
		}
		return nil, diags, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, diags, nil
}
