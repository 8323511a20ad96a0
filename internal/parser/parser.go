// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parser extracts a structural summary (symbols with line spans,
// imports, and anomalies) from source text without building a full syntax
// tree. Each language has one analyzer; all of them are pure functions of
// their input.
package parser

import (
	"context"
	"sort"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// Parse returns the structural summary of text in the given language.
// Unknown languages yield an empty result. Parse never fails; structural
// problems are reported in ParseErrors.
func Parse(text string, language types.Language) types.ParseResult {
	return ParseFile("", text, language)
}

// ParseFile is Parse with the file path recorded in the result. The path
// also informs Drupal hook detection for module files.
func ParseFile(path, text string, language types.Language) types.ParseResult {
	res := types.ParseResult{
		FilePath:  path,
		Language:  language,
		Symbols:   []types.Symbol{},
		LineCount: len(splitLines(text)),
	}
	if language == "" {
		res.Language = types.Unknown
	}

	var syms []types.Symbol
	var anomalies []string
	switch language {
	case types.Rust:
		syms, anomalies = parseRust(text)
	case types.Python:
		syms, anomalies = parsePython(text)
	case types.JavaScript, types.TypeScript:
		syms, anomalies = parseJavaScript(text)
	case types.PHP:
		syms, anomalies = parsePHP(path, text)
	case types.Go:
		syms, anomalies = parseGo(text)
	default:
		return res
	}

	res.Symbols = normalize(syms, res.LineCount)
	res.ParseErrors = anomalies
	res.Imports = lang.Imports([]byte(text), language)
	return res
}

// normalize clamps spans into the file and orders symbols by start line,
// keeping emission order for symbols that start on the same line.
func normalize(syms []types.Symbol, lineCount int) []types.Symbol {
	out := make([]types.Symbol, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" || lineCount == 0 {
			continue
		}
		if s.StartLine < 1 {
			s.StartLine = 1
		}
		if s.StartLine > lineCount {
			s.StartLine = lineCount
		}
		if s.EndLine < s.StartLine {
			s.EndLine = s.StartLine
		}
		if s.EndLine > lineCount {
			s.EndLine = lineCount
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine })
	return out
}

// Parser runs the structural analyzers and, optionally, a full syntax
// check that reports where the grammar rejects the file.
type Parser struct {
	SyntaxCheck bool // Append tree-sitter syntax errors to ParseErrors
}

// ParseFile parses text and applies the configured checks. The symbols are
// identical to the package-level ParseFile.
func (p Parser) ParseFile(ctx context.Context, path, text string, language types.Language) types.ParseResult {
	res := ParseFile(path, text, language)
	if p.SyntaxCheck && res.Language != types.Unknown {
		res.ParseErrors = append(res.ParseErrors, syntaxErrors(ctx, path, []byte(text), language)...)
	}
	return res
}

// sym builds a symbol from 0-based line indexes.
func sym(name string, kind types.SymbolKind, start, end int, parent string) types.Symbol {
	return types.Symbol{Name: name, Kind: kind, StartLine: start + 1, EndLine: end + 1, Parent: parent}
}
