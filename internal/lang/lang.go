// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lang classifies files by language and extracts the lightweight
// content signatures shared by the structural parser and the search scorer.
package lang

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/petar-djukic/codeassist/pkg/types"
)

// SniffSize is how many leading bytes Detect inspects when the extension
// does not settle the language.
const SniffSize = 4096

var extensions = map[string]types.Language{
	".rs":  types.Rust,
	".py":  types.Python,
	".pyi": types.Python,
	".js":  types.JavaScript,
	".jsx": types.JavaScript,
	".mjs": types.JavaScript,
	".cjs": types.JavaScript,
	".ts":  types.TypeScript,
	".tsx": types.TypeScript,
	".mts": types.TypeScript,
	".cts": types.TypeScript,
	".php": types.PHP,
	".go":  types.Go,
}

// drupalExtensions hold PHP code in Drupal projects but are not
// conclusive on their own.
var drupalExtensions = map[string]bool{
	".module":  true,
	".install": true,
	".theme":   true,
	".inc":     true,
	".profile": true,
	".engine":  true,
}

var (
	goPackageRe = regexp.MustCompile(`(?m)^package\s+[A-Za-z_]\w*\s*$`)
	goImportRe  = regexp.MustCompile(`(?m)^(import\s*\(|import\s+"|func\s)`)
	rustTokenRe = regexp.MustCompile(`(?m)(^\s*(pub\s+)?fn\s+\w+|\blet\s+mut\b|^\s*impl\b|^\s*use\s+\w+(::\w+)+|^\s*#\[derive)`)
	pyTokenRe   = regexp.MustCompile(`(?m)(^\s*(async\s+)?def\s+\w+\s*\(.*\)\s*(->.*)?:\s*$|^\s*(from\s+[\w.]+\s+)?import\s+\w+|\bself\.)`)
	jsTokenRe   = regexp.MustCompile(`(?m)(\bfunction\s*\w*\s*\(|^\s*(const|let|var)\s+\w+\s*=|=>|\brequire\(|^\s*export\s+)`)
)

// Detect returns the language of path. The extension decides first; prefix
// (the leading bytes of the file, may be nil) breaks ties and classifies
// files with missing or ambiguous extensions. Detect never fails.
func Detect(path string, prefix []byte) types.Language {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := extensions[ext]; ok {
		return l
	}
	if len(prefix) > SniffSize {
		prefix = prefix[:SniffSize]
	}
	if drupalExtensions[ext] {
		if bytes.HasPrefix(bytes.TrimSpace(prefix), []byte("<?php")) {
			return types.PHP
		}
	}
	return sniff(prefix)
}

// ForExtension returns the language mapped to ext, or Unknown.
func ForExtension(ext string) types.Language {
	if l, ok := extensions[strings.ToLower(ext)]; ok {
		return l
	}
	return types.Unknown
}

// DrupalExtension reports whether path uses one of the PHP extensions
// Drupal reserves for module and theme code.
func DrupalExtension(path string) bool {
	return drupalExtensions[strings.ToLower(filepath.Ext(path))]
}

func sniff(prefix []byte) types.Language {
	if len(prefix) == 0 || bytes.IndexByte(prefix, 0) >= 0 {
		return types.Unknown
	}
	trimmed := bytes.TrimSpace(prefix)
	if bytes.HasPrefix(trimmed, []byte("<?php")) {
		return types.PHP
	}
	if bytes.HasPrefix(trimmed, []byte("#!")) {
		line := trimmed
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		switch {
		case bytes.Contains(line, []byte("python")):
			return types.Python
		case bytes.Contains(line, []byte("node")), bytes.Contains(line, []byte("deno")):
			return types.JavaScript
		case bytes.Contains(line, []byte("php")):
			return types.PHP
		}
	}
	if goPackageRe.Match(prefix) && goImportRe.Match(prefix) {
		return types.Go
	}

	// Keyword density: the language with the most distinctive tokens wins.
	// Ties resolve in the order listed, which favours the stricter grammars.
	candidates := []struct {
		lang types.Language
		re   *regexp.Regexp
	}{
		{types.Rust, rustTokenRe},
		{types.Python, pyTokenRe},
		{types.JavaScript, jsTokenRe},
	}
	best, bestCount := types.Unknown, 0
	for _, c := range candidates {
		n := len(c.re.FindAllIndex(prefix, -1))
		if n > bestCount {
			best, bestCount = c.lang, n
		}
	}
	if bestCount < 2 {
		return types.Unknown
	}
	return best
}
