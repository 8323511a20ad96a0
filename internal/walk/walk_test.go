// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestRepo creates a temporary directory with the given files.
func setupTestRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestFiles_SkipsDefaultDirectoriesAndBinaries(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"main.go":                       "package main",
		"src/app.js":                    "x",
		"node_modules/lib/index.js":     "x",
		"vendor/pkg/a.go":               "x",
		"target/debug/out.rs":           "x",
		".hidden/secret.py":             "x",
		".env":                          "x",
		"assets/logo.png":               "x",
		"web/modules/custom/m/m.module": "<?php",
	})

	ig, err := NewIgnorer(dir, nil, nil)
	require.NoError(t, err)
	entries, diags, err := Files(context.Background(), dir, ig, Options{})
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, []string{"main.go", "src/app.js", "web/modules/custom/m/m.module"}, paths(entries))
	for _, e := range entries {
		assert.True(t, filepath.IsAbs(e.AbsPath))
	}
}

func TestFiles_RespectsGitignore(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		".gitignore":          "*.log\ngenerated/\n",
		"app.py":              "x",
		"debug.log":           "x",
		"generated/models.py": "x",
		"pkg/.gitignore":      "local.go\n",
		"pkg/local.go":        "x",
		"pkg/kept.go":         "x",
	})

	ig, err := NewIgnorer(dir, nil, nil)
	require.NoError(t, err)
	entries, _, err := Files(context.Background(), dir, ig, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py", "pkg/kept.go"}, paths(entries))
}

func TestFiles_ExcludeGlobs(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"a.go":               "x",
		"a_test.go":          "x",
		"docs/guide.md":      "x",
		"internal/b.go":      "x",
		"internal/b_test.go": "x",
	})

	ig, err := NewIgnorer(dir, []string{"*_test.go", "docs/**"}, nil)
	require.NoError(t, err)
	entries, _, err := Files(context.Background(), dir, ig, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.go", "internal/b.go"}, paths(entries))
}

func TestNewIgnorer_InvalidGlob(t *testing.T) {
	_, err := NewIgnorer(t.TempDir(), []string{"[unclosed"}, nil)
	require.Error(t, err)
}

func TestNewIgnorer_LogsUnreadableIgnoreFiles(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	missing := filepath.Join(t.TempDir(), "missing")

	ig, err := NewIgnorer(missing, nil, zap.New(core))
	require.NoError(t, err)
	assert.False(t, ig.IsIgnored("main.go", false))

	entries := logs.FilterMessage("reading ignore files").All()
	require.Len(t, entries, 1)
	assert.Equal(t, missing, entries[0].ContextMap()["root"])
}

func TestFiles_MaxDepth(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"a.txt":           "x",
		"one/b.txt":       "x",
		"one/two/c.txt":   "x",
		"one/two/three/d": "x",
	})

	ig, err := NewIgnorer(dir, nil, nil)
	require.NoError(t, err)
	entries, _, err := Files(context.Background(), dir, ig, Options{MaxDepth: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "one/b.txt"}, paths(entries))
}

func TestFiles_RootErrors(t *testing.T) {
	_, _, err := Files(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, Options{})
	require.ErrorIs(t, err, ErrRootNotFound)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, _, err = Files(context.Background(), file, nil, Options{})
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestFiles_Cancelled(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"a.go": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Files(ctx, dir, nil, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFiles_SkipsSymlinks(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"real.go": "x"})
	if err := os.Symlink(filepath.Join(dir, "real.go"), filepath.Join(dir, "link.go")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	entries, _, err := Files(context.Background(), dir, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.go"}, paths(entries))
}

func TestIgnorer_IsIgnored(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{".gitignore": "dist-*\n"})
	ig, err := NewIgnorer(dir, []string{"**/*.min.js"}, nil)
	require.NoError(t, err)

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"src", true, false},
		{"node_modules", true, true},
		{"a/node_modules", true, true},
		{"node_modules", false, false},
		{".git", true, true},
		{"dist-old", true, true},
		{"web/app.min.js", false, true},
		{"web/app.js", false, false},
		{".", true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ig.IsIgnored(tt.rel, tt.isDir), tt.rel)
	}
}

func TestEach_VisitsEveryIndexOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	const n = 100
	var hits [n]int32
	err := Each(context.Background(), 4, n, func(_ context.Context, i int) error {
		atomic.AddInt32(&hits[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i := range hits {
		assert.Equal(t, int32(1), hits[i], "index %d", i)
	}
}

func TestEach_StopsOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	err := Each(context.Background(), 2, 50, func(_ context.Context, i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestEach_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	err := Each(ctx, 2, 10, func(_ context.Context, _ int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
