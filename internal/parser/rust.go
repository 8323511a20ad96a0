// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"regexp"
	"strings"

	"github.com/petar-djukic/codeassist/pkg/types"
)

const rustVis = `(?:pub(?:\s*\([^)]*\))?\s+)?`

var (
	rustModRe   = regexp.MustCompile(`^\s*` + rustVis + `mod\s+([A-Za-z_]\w*)`)
	rustTypeRe  = regexp.MustCompile(`^\s*` + rustVis + `(struct|enum|union|type)\s+([A-Za-z_]\w*)`)
	rustTraitRe = regexp.MustCompile(`^\s*` + rustVis + `(?:unsafe\s+)?(?:auto\s+)?trait\s+([A-Za-z_]\w*)`)
	rustImplRe  = regexp.MustCompile(`^\s*(?:unsafe\s+)?impl\b(?:\s*<[^{]*?>)?\s+(?:!?([\w:]+(?:<[^{]*?>)?)\s+for\s+)?&?(?:'\w+\s+)?(?:mut\s+)?(?:dyn\s+)?([\w:]+)`)
	rustFnRe    = regexp.MustCompile(`^\s*` + rustVis + `(?:default\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+(?:"[^"]*"\s+)?)?fn\s+([A-Za-z_]\w*)`)
	rustMacroRe = regexp.MustCompile(`^\s*macro_rules!\s*([A-Za-z_]\w*)`)
)

func parseRust(text string) ([]types.Symbol, []string) {
	lines, anomalies := scanLines(text, rustLexer)
	var (
		syms []types.Symbol
		open stack
	)
	for i, ln := range lines {
		open.advance(i)
		code := ln.code

		if m := rustFnRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			if parent, ok := open.directParent(ln.depth); ok && parent.kind == typeContainer {
				syms = append(syms, sym(m[1], types.Method, i, end, parent.name))
			} else {
				syms = append(syms, sym(m[1], types.Function, i, end, ""))
			}
			open.push(container{name: m[1], kind: functionContainer, depth: ln.depth, end: end})
			continue
		}
		if m := rustImplRe.FindStringSubmatch(code); m != nil {
			open.push(container{name: lastPathSegment(m[2]), kind: typeContainer, depth: ln.depth, end: span(lines, i)})
			continue
		}
		if m := rustTraitRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			syms = append(syms, sym(m[1], types.Interface, i, end, ""))
			open.push(container{name: m[1], kind: typeContainer, depth: ln.depth, end: end})
			continue
		}
		if m := rustTypeRe.FindStringSubmatch(code); m != nil {
			syms = append(syms, sym(m[2], types.Type, i, span(lines, i), ""))
			continue
		}
		if m := rustModRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			syms = append(syms, sym(m[1], types.Module, i, end, ""))
			open.push(container{name: m[1], kind: namespaceContainer, depth: ln.depth, end: end})
			continue
		}
		if m := rustMacroRe.FindStringSubmatch(code); m != nil {
			syms = append(syms, sym(m[1], types.Hint, i, span(lines, i), ""))
		}
	}
	return syms, anomalies
}

// lastPathSegment strips a module path and generic arguments from a type
// reference: "fmt::Display<T>" becomes "Display".
func lastPathSegment(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	return s
}
