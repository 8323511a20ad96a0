// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/codeassist/pkg/types"
)

// grammars maps each language to its tree-sitter grammar.
var grammars = map[types.Language]*sitter.Language{
	types.Go:         golang.GetLanguage(),
	types.Python:     python.GetLanguage(),
	types.JavaScript: javascript.GetLanguage(),
	types.TypeScript: typescript.GetLanguage(),
	types.Rust:       rust.GetLanguage(),
	types.PHP:        php.GetLanguage(),
}

// grammarFor picks the grammar for a file. TSX needs its own grammar
// because the TypeScript one rejects JSX.
func grammarFor(path string, language types.Language) *sitter.Language {
	if language == types.TypeScript && strings.EqualFold(filepath.Ext(path), ".tsx") {
		return tsx.GetLanguage()
	}
	return grammars[language]
}

// syntaxErrors parses content with tree-sitter and reports the first place
// the grammar rejects it. A parse that cannot run reports nothing.
func syntaxErrors(ctx context.Context, path string, content []byte, language types.Language) []string {
	g := grammarFor(path, language)
	if g == nil || len(content) == 0 {
		return nil
	}
	root, err := sitter.ParseCtx(ctx, content, g)
	if err != nil || root == nil || !root.HasError() {
		return nil
	}
	return []string{fmt.Sprintf("syntax error near line %d", firstErrorLine(root))}
}

// firstErrorLine descends into the first erroneous child until it reaches
// an ERROR or MISSING node and returns its 1-based line.
func firstErrorLine(n *sitter.Node) int {
	for {
		if n.IsError() || n.IsMissing() {
			return int(n.StartPoint().Row) + 1
		}
		var next *sitter.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c != nil && (c.HasError() || c.IsMissing()) {
				next = c
				break
			}
		}
		if next == nil {
			return int(n.StartPoint().Row) + 1
		}
		n = next
	}
}
