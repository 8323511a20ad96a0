// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/codeassist/pkg/types"
)

var (
	genericProject = Project{Type: types.GenericProject}
	rustProject    = Project{Type: types.ProjectType{Kind: types.KindRust}}
	drupalProject  = Project{Type: types.ProjectType{Kind: types.KindPHP, Framework: types.Drupal}}
	reactProject   = Project{Type: types.ProjectType{Kind: types.KindTypeScript, Framework: types.React}}
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"reset_password", []string{"reset_password"}},
		{"How does the Login work?", []string{"login", "work"}},
		{"login LOGIN, login!", []string{"login"}},
		{"a b c x y", nil},
		{"hook_menu in drupal", []string{"hook_menu", "drupal"}},
		{"(parse) `config`", []string{"parse", "config"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.query))
		})
	}
}

func TestScore_WordBoundaryBeatsSubstring(t *testing.T) {
	exact, ok := Score("a.txt", []byte("user logs in\n"), "user", genericProject)
	require.True(t, ok)
	partial, ok := Score("b.txt", []byte("username field\n"), "user", genericProject)
	require.True(t, ok)
	assert.Greater(t, exact.Score, partial.Score)
	assert.InDelta(t, 1.0, exact.Score, 1e-9)
	assert.InDelta(t, 0.5, partial.Score, 1e-9)
}

func TestScore_DiminishingRepetition(t *testing.T) {
	once, _ := Score("a.txt", []byte("token\n"), "token", genericProject)
	many, _ := Score("b.txt", []byte(strings.Repeat("token\n", 100)), "token", genericProject)
	assert.Greater(t, many.Score, once.Score)
	assert.Less(t, many.Score, 10*once.Score)
}

func TestScore_CoverageRewardsAllTerms(t *testing.T) {
	both, _ := Score("a.txt", []byte("session cookie\n"), "session cookie", genericProject)
	one, _ := Score("b.txt", []byte("session session\n"), "session cookie", genericProject)
	assert.Greater(t, both.Score, one.Score)
}

func TestScore_PathMatch(t *testing.T) {
	hit, ok := Score("src/auth/login.rs", []byte("fn main() {}\n"), "login", rustProject)
	require.True(t, ok)
	assert.Empty(t, hit.MatchedLines)
	assert.InDelta(t, pathWeight*primaryFactor, hit.Score, 1e-9)
}

func TestScore_ExcerptsRecordedInSamePass(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("  let cache = Cache::new(); \n")
	}
	b.WriteString(strings.Repeat("cache ", 60) + "\n")
	hit, ok := Score("src/cache.rs", []byte(b.String()), "cache", rustProject)
	require.True(t, ok)
	require.Len(t, hit.MatchedLines, MaxExcerpts)
	assert.Equal(t, types.LineMatch{Line: 1, Excerpt: "let cache = Cache::new();"}, hit.MatchedLines[0])
	assert.Equal(t, 5, hit.MatchedLines[4].Line)

	long, ok := Score("x.txt", []byte(strings.Repeat("cache ", 60)), "cache", genericProject)
	require.True(t, ok)
	assert.LessOrEqual(t, len(long.MatchedLines[0].Excerpt), MaxExcerptBytes)
}

func TestScore_LanguageBoost(t *testing.T) {
	content := []byte("function login() {}\n")
	ts, _ := Score("a.ts", content, "login", reactProject)
	js, _ := Score("a.js", content, "login", reactProject)
	py, _ := Score("a.py", []byte("def login(): pass\n"), "login", reactProject)
	assert.Greater(t, ts.Score, js.Score)
	assert.Greater(t, js.Score, py.Score)
}

func TestScore_QueryIntent(t *testing.T) {
	plain, _ := Score("a.py", []byte("def parse(): pass\n"), "parse", genericProject)
	named, _ := Score("a.py", []byte("def parse(): pass\n"), "parse python", genericProject)
	assert.InDelta(t, plain.Score*intentFactor*0.75, named.Score, 1e-9)
}

func TestScore_DrupalHookBoost(t *testing.T) {
	hook := []byte("<?php\nfunction mymodule_menu() {\n  return array(); // menu items\n}\n")
	plain := []byte("<?php\nfunction build_menu() {\n  return array(); // menu items\n}\n")

	hooked, ok := Score("web/modules/mymodule/mymodule.module", hook, "menu", drupalProject)
	require.True(t, ok)
	other, ok := Score("src/Builder.php", plain, "menu", drupalProject)
	require.True(t, ok)
	assert.Greater(t, hooked.Score, other.Score)
}

func TestScore_DrupalHookInPHPFile(t *testing.T) {
	hook := []byte("<?php\nfunction mymodule_menu() { return render(); }\n")
	helper := []byte("<?php\nfunction mymodule_helper() { return render(); }\n")
	plain := []byte("<?php\nfunction build() { return render(); }\n")
	withModules := Project{Type: drupalProject.Type, DrupalModules: []string{"mymodule"}}

	other, ok := Score("lib/a_other.php", plain, "render", withModules)
	require.True(t, ok)
	assert.InDelta(t, boundaryWeight*primaryFactor, other.Score, 1e-9)

	hooked, ok := Score("mymodule/src/hooks.php", hook, "render", withModules)
	require.True(t, ok)
	assert.InDelta(t, other.Score+drupalHookBoost, hooked.Score, 1e-9)

	notHook, ok := Score("mymodule/src/helpers.php", helper, "render", withModules)
	require.True(t, ok)
	assert.InDelta(t, other.Score, notHook.Score, 1e-9)

	undetected, ok := Score("mymodule/src/hooks.php", hook, "render", drupalProject)
	require.True(t, ok)
	assert.InDelta(t, other.Score, undetected.Score, 1e-9)
}

func TestScore_DrupalIntentBoostsConfigAndTemplates(t *testing.T) {
	services := []byte("services:\n  mymodule.builder:\n    class: Drupal\\mymodule\\Builder\n")
	hit, ok := Score("mymodule.services.yml", services, "builder drupal", genericProject)
	require.True(t, ok)
	assert.Equal(t, types.Unknown, hit.Language)
	assert.InDelta(t, 2.5*intentFactor+drupalConfigBoost, hit.Score, 1e-9)

	template := []byte("{{ content }}\n<div>{{ title }}</div>\n")
	hit, ok = Score("templates/page.html.twig", template, "drupal title", genericProject)
	require.True(t, ok)
	assert.InDelta(t, 0.75*intentFactor+drupalTemplateBoost, hit.Score, 1e-9)

	plain, ok := Score("templates/page.html.twig", template, "title", genericProject)
	require.True(t, ok)
	assert.InDelta(t, boundaryWeight, plain.Score, 1e-9)
}

func TestScore_FrameworkBoostCapped(t *testing.T) {
	content := []byte("usestate useeffect component jsx props hook login\n")
	hit, ok := Score("a.tsx", content, "login", reactProject)
	require.True(t, ok)
	base := boundaryWeight * primaryFactor
	assert.InDelta(t, base+frameworkBoostCap, hit.Score, 1e-9)
}

func TestScore_EmptyQuery(t *testing.T) {
	ts, ok := Score("a.ts", []byte("const x = 1;\n"), "", reactProject)
	require.True(t, ok)
	assert.InDelta(t, emptyPrimaryBoost, ts.Score, 1e-9)

	js, ok := Score("a.js", []byte("const x = 1;\n"), "", reactProject)
	require.True(t, ok)
	assert.InDelta(t, emptyFamilyBoost, js.Score, 1e-9)

	_, ok = Score("a.py", []byte("x = 1\n"), "", reactProject)
	assert.False(t, ok)

	_, ok = Score("a.rs", []byte("fn main() {}\n"), "", genericProject)
	assert.False(t, ok)

	info, ok := Score("mymodule.info.yml", []byte("type: module\n"), "", drupalProject)
	require.True(t, ok)
	assert.InDelta(t, drupalConfigBoost, info.Score, 1e-9)
}

func TestScore_NoMatch(t *testing.T) {
	_, ok := Score("a.rs", []byte("fn main() {}\n"), "database", rustProject)
	assert.False(t, ok)
}

func TestScore_BinaryContentMatchesPathOnly(t *testing.T) {
	content := []byte("login\x00\x01\x02login")
	hit, ok := Score("assets/login.dat", content, "login", genericProject)
	require.True(t, ok)
	assert.Equal(t, types.Unknown, hit.Language)
	assert.Empty(t, hit.MatchedLines)
	assert.InDelta(t, pathWeight, hit.Score, 1e-9)

	goProject := Project{Type: types.ProjectType{Kind: types.KindGo}}
	hit, ok = Score("src/blob.go", []byte{0xff, 0xfe, 'g', 'o'}, "blob", goProject)
	require.True(t, ok)
	assert.Equal(t, types.Unknown, hit.Language)
	assert.InDelta(t, pathWeight, hit.Score, 1e-9)
}
