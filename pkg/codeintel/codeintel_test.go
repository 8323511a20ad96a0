// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package codeintel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/codeassist/pkg/types"
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

func newEngine(t *testing.T, cfg Config) Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing root", Config{}},
		{"nonexistent root", Config{Root: filepath.Join(dir, "nope")}},
		{"negative budget", Config{Root: dir, BudgetBytes: -1}},
		{"negative limit", Config{Root: dir, SearchLimit: -1}},
		{"negative workers", Config{Root: dir, Workers: -2}},
		{"bad exclude glob", Config{Root: dir, Exclude: []string{"[oops"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(Config{Root: filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestEngine_RustScenario(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"auth\"\n\n[dependencies]\nserde = \"1\"\n",
		"src/auth.rs": "fn reset_password() {\n    let _ = 1;\n}\n",
		"src/main.rs": "mod auth;\n\nfn main() {}\n",
	})
	e := newEngine(t, Config{Root: dir})
	ctx := context.Background()

	pt, err := e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectType{Kind: types.KindRust}, pt)

	pr, err := e.ParseFile(ctx, "src/auth.rs")
	require.NoError(t, err)
	assert.Equal(t, "src/auth.rs", pr.FilePath)
	assert.Equal(t, []types.Symbol{{Name: "reset_password", Kind: types.Function, StartLine: 1, EndLine: 3}}, pr.Symbols)

	res, err := e.Search(ctx, "reset_password", 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "src/auth.rs", res.Hits[0].FilePath)
	require.NotEmpty(t, res.Hits[0].MatchedLines)
	assert.Contains(t, res.Hits[0].MatchedLines[0].Excerpt, "fn reset_password()")

	pkg, err := e.BuildContext(ctx, "reset_password", e.Budget())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/auth.rs"}, pkg.SummaryOrder)
	assert.Equal(t, 24<<10, pkg.Budget)
	assert.LessOrEqual(t, pkg.TotalSizeBytes, pkg.Budget)
	assert.True(t, strings.HasPrefix(pkg.Text, "Project: rust\nQuery: reset_password\n"))
}

func TestEngine_ReactScenario(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"package.json": `{"dependencies": {"react": "^18.0.0"}}`,
		"src/Button.jsx": `import React from 'react';

export function Button({ label }) {
  return (
    <button className="btn">
      {label}
    </button>
  );
}
`,
	})
	e := newEngine(t, Config{Root: dir})
	ctx := context.Background()

	pt, err := e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectType{Kind: types.KindJavaScript, Framework: types.React}, pt)

	pr, err := e.ParseFile(ctx, "src/Button.jsx")
	require.NoError(t, err)
	require.Len(t, pr.Symbols, 1)
	assert.Equal(t, types.Component, pr.Symbols[0].Kind)
	assert.Equal(t, "Button", pr.Symbols[0].Name)
}

func TestEngine_DrupalScenario(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"modules/mymodule/mymodule.info.yml": "name: My Module\ntype: module\ncore_version_requirement: ^10\n",
		"modules/mymodule/mymodule.module":   "<?php\n\n/**\n * Implements hook_menu().\n */\nfunction mymodule_menu() {\n  return [];\n}\n",
		"lib/Other.php":                      "<?php\n\nfunction other_menu() {\n  return [];\n}\n",
	})
	e := newEngine(t, Config{Root: dir})
	ctx := context.Background()

	pt, err := e.ProjectType(ctx)
	require.NoError(t, err)
	assert.True(t, pt.IsDrupal())

	res, err := e.Search(ctx, "menu", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "modules/mymodule/mymodule.module", res.Hits[0].FilePath)

	pr, err := e.ParseFile(ctx, "modules/mymodule/mymodule.module")
	require.NoError(t, err)
	require.Len(t, pr.Symbols, 1)
	assert.Equal(t, types.Hook, pr.Symbols[0].Kind)
	assert.Equal(t, "mymodule_menu", pr.Symbols[0].Name)
}

func TestEngine_DrupalHookInPHPFile(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"mymodule.info.yml":      "name: My Module\ntype: module\n",
		"mymodule/src/hooks.php": "<?php\nfunction mymodule_menu() { return render(); }\n",
		"lib/a_other.php":        "<?php\nfunction build() { return render(); }\n",
	})
	e := newEngine(t, Config{Root: dir})

	res, err := e.Search(context.Background(), "render", 10)
	require.NoError(t, err)
	assert.True(t, res.ProjectType.IsDrupal())
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "mymodule/src/hooks.php", res.Hits[0].FilePath)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)
}

func TestEngine_BuildContextBudget(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"auth\"\n",
		"src/auth.rs": "fn reset_password() {\n    let _ = 1;\n}\n",
	})
	e := newEngine(t, Config{Root: dir})
	ctx := context.Background()

	_, err := e.BuildContext(ctx, "reset_password", -1)
	require.ErrorIs(t, err, ErrInvalidConfig)

	empty, err := e.BuildContext(ctx, "reset_password", 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Text)
	assert.Zero(t, empty.TotalSizeBytes)
	assert.Zero(t, empty.ParsedCount())
	assert.Zero(t, empty.Budget)

	prev := 0
	for _, budget := range []int{0, 10, 64, 256, 1 << 10, e.Budget()} {
		pkg, err := e.BuildContext(ctx, "reset_password", budget)
		require.NoError(t, err)
		assert.LessOrEqual(t, pkg.TotalSizeBytes, budget)
		assert.GreaterOrEqual(t, pkg.ParsedCount(), prev, "budget %d", budget)
		prev = pkg.ParsedCount()
	}
	assert.Equal(t, 1, prev)
}

func TestEngine_DetectionCachedUntilRefresh(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"main.py": "print('hi')\n"})
	e := newEngine(t, Config{Root: dir})
	ctx := context.Background()

	pt, err := e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindPython, pt.Kind)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	pt, err = e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindPython, pt.Kind)

	pt, err = e.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindGo, pt.Kind)

	f, err := e.DetectFeatures(ctx)
	require.NoError(t, err)
	assert.True(t, f.Has(types.FeatureGoMod))
	assert.Equal(t, pt, e.Classify(f))
}

func TestEngine_SetRoot(t *testing.T) {
	a := setupTestRepo(t, map[string]string{"go.mod": "module a\n"})
	b := setupTestRepo(t, map[string]string{"composer.json": `{"require": {}}`})
	e := newEngine(t, Config{Root: a})
	ctx := context.Background()

	pt, err := e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindGo, pt.Kind)

	require.NoError(t, e.SetRoot(ctx, b))
	assert.Equal(t, b, e.Root())
	pt, err = e.ProjectType(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindPHP, pt.Kind)

	require.ErrorIs(t, e.SetRoot(ctx, filepath.Join(b, "missing")), ErrRootNotFound)
}

func TestEngine_GrepAndParse(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"a.go": "package a\n\n// FIXME: handle errors\nfunc A() {}\n",
	})
	e := newEngine(t, Config{Root: dir})

	matches, err := e.Grep(context.Background(), `FIXME`, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.GrepMatch{{FilePath: "a.go", Line: 3, Text: "// FIXME: handle errors"}}, matches)

	_, err = e.Grep(context.Background(), `(`, 0)
	require.ErrorIs(t, err, ErrInvalidPattern)

	pr := e.Parse("def f():\n    pass\n", types.Python)
	assert.Equal(t, []types.Symbol{{Name: "f", Kind: types.Function, StartLine: 1, EndLine: 2}}, pr.Symbols)

	_, err = e.ParseFile(context.Background(), "missing.go")
	require.Error(t, err)
}

func TestEngine_BinaryFileParsesAsUnknown(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"data.py": "\x00\x01\x02"})
	e := newEngine(t, Config{Root: dir})
	pr, err := e.ParseFile(context.Background(), "data.py")
	require.NoError(t, err)
	assert.Equal(t, types.Unknown, pr.Language)
	assert.Empty(t, pr.Symbols)
}

func TestEngine_Metrics(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"src/lib.rs": "fn handler() {}\n", "Cargo.toml": "[package]\n"})
	reg := prometheus.NewRegistry()
	e := newEngine(t, Config{Root: dir, Registerer: reg})
	ctx := context.Background()

	_, err := e.BuildContext(ctx, "handler", e.Budget())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "codeassist_detection_refresh_total", "codeassist_context_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
