// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package lang

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/petar-djukic/codeassist/pkg/types"
)

// Signatures are cheap content markers computed from one read of a file.
type Signatures struct {
	JSX            bool // JSX-like element syntax
	React          bool // Imports or references React
	Angular        bool // Angular decorators
	NextJS         bool // next/* imports or Next.js data functions
	Drupal         bool // Drupal API usage, hook_ references, plugin namespaces
	DrupalInfo     bool // Drupal *.info.yml content
	DrupalServices bool // Drupal *.services.yml content
	DrupalTemplate bool // Twig template with Drupal variables
	Imports        []string
}

var (
	jsxRe         = regexp.MustCompile(`(return\s*\(?\s*<[A-Za-z>]|<>|</[A-Za-z][\w.]*>|<[A-Z][\w.]*(\s[^<>]*)?/>)`)
	esImportRe    = regexp.MustCompile(`(?m)^\s*import\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`)
	requireRe     = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	pyImportRe    = regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
	goImportOneRe = regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:[\w.]+\s+)?"([^"]+)"\s*$`)
	rustUseRe     = regexp.MustCompile(`(?m)^\s*(?:pub\s+)?use\s+([\w:]+)`)
	phpUseRe      = regexp.MustCompile(`(?m)^\s*use\s+([\w\\]+)`)
)

// DetectSignatures computes content signatures for a file of the given
// language. Content is inspected case-insensitively for framework markers.
func DetectSignatures(content []byte, language types.Language) Signatures {
	lower := bytes.ToLower(content)
	var s Signatures

	s.Imports = Imports(content, language)
	switch language {
	case types.JavaScript, types.TypeScript:
		s.JSX = jsxRe.Match(content)
		s.React = bytes.Contains(lower, []byte("react")) &&
			(bytes.Contains(lower, []byte("component")) || bytes.Contains(lower, []byte("render")) ||
				bytes.Contains(lower, []byte("jsx")) || bytes.Contains(lower, []byte("usestate")) || s.JSX)
		s.Angular = bytes.Contains(lower, []byte("@component")) ||
			bytes.Contains(lower, []byte("@injectable")) ||
			bytes.Contains(lower, []byte("@ngmodule"))
		s.NextJS = bytes.Contains(lower, []byte("from 'next/")) || bytes.Contains(lower, []byte(`from "next/`)) ||
			bytes.Contains(lower, []byte("getserversideprops")) || bytes.Contains(lower, []byte("getstaticprops"))
	}

	s.Drupal = bytes.Contains(lower, []byte("drupal")) ||
		bytes.Contains(lower, []byte("hook_")) ||
		bytes.Contains(lower, []byte("module_implements")) ||
		bytes.Contains(lower, []byte("@plugin")) ||
		bytes.Contains(lower, []byte("pluginbase")) ||
		bytes.Contains(lower, []byte(`\plugin\`)) ||
		bytes.Contains(lower, []byte(`\form\`)) ||
		bytes.Contains(lower, []byte(`\entity\`))
	s.DrupalInfo = bytes.Contains(lower, []byte("type: module")) ||
		bytes.Contains(lower, []byte("core_version_requirement"))
	s.DrupalServices = bytes.Contains(lower, []byte("services:")) && bytes.Contains(lower, []byte("class:"))
	s.DrupalTemplate = bytes.Contains(lower, []byte("{{ content }}")) ||
		bytes.Contains(lower, []byte("{{ attach_library")) ||
		bytes.Contains(lower, []byte("{{ 'drupal"))
	return s
}

// Imports returns the modules, packages, or namespaces content imports, in
// order of first appearance.
func Imports(content []byte, language types.Language) []string {
	switch language {
	case types.JavaScript, types.TypeScript:
		return collect(content, esImportRe, requireRe)
	case types.Python:
		return collect(content, pyImportRe)
	case types.Go:
		return goImports(content)
	case types.Rust:
		return collect(content, rustUseRe)
	case types.PHP:
		return collect(content, phpUseRe)
	default:
		return nil
	}
}

// ContainsJSX reports whether content holds JSX element syntax.
func ContainsJSX(content []byte) bool {
	return jsxRe.Match(content)
}

// collect returns the first non-empty submatch of every regexp match, in
// order of appearance per regexp, without duplicates.
func collect(content []byte, res ...*regexp.Regexp) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range res {
		for _, m := range re.FindAllSubmatch(content, -1) {
			for _, g := range m[1:] {
				if len(g) == 0 {
					continue
				}
				name := string(g)
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
				break
			}
		}
	}
	return out
}

// goImports reads single-line imports and import blocks.
func goImports(content []byte) []string {
	var out []string
	seen := make(map[string]bool)
	inBlock := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
			continue
		case inBlock && trimmed == ")":
			inBlock = false
			continue
		case !inBlock && !strings.HasPrefix(trimmed, "import "):
			continue
		}
		if m := goImportOneRe.FindStringSubmatch(trimmed); m != nil && !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// binaryExtensions are skipped without reading.
var binaryExtensions = map[string]bool{
	".exe": true, ".dll": true, ".obj": true, ".bin": true, ".so": true,
	".dylib": true, ".a": true, ".o": true, ".class": true, ".pyc": true,
	".pyd": true, ".pyo": true, ".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".bmp": true, ".ico": true, ".webp": true, ".pdf": true,
	".zip": true, ".tar": true, ".gz": true, ".tgz": true, ".rar": true,
	".7z": true, ".jar": true, ".war": true, ".woff": true, ".woff2": true,
	".ttf": true, ".eot": true, ".mp3": true, ".mp4": true, ".wasm": true,
	".sqlite": true, ".db": true,
}

// BinaryExtension reports whether path has an extension that never holds
// text worth searching.
func BinaryExtension(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsBinary reports whether content looks binary: a NUL byte in the first
// 8 KiB or invalid UTF-8 anywhere.
func IsBinary(content []byte) bool {
	head := content
	if len(head) > 8192 {
		head = head[:8192]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	return !utf8.Valid(content)
}
