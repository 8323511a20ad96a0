// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"regexp"
	"strings"

	"github.com/petar-djukic/codeassist/pkg/types"
)

var (
	goPackageRe   = regexp.MustCompile(`^package\s+([A-Za-z_]\w*)`)
	goFuncRe      = regexp.MustCompile(`^func\s*(?:\(([^)]*)\)\s*)?([A-Za-z_]\w*)`)
	goTypeRe      = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)(?:\[[^\]]*\])?\s*(=)?\s*(struct|interface)?\b`)
	goGroupTypeRe = regexp.MustCompile(`^\s+([A-Za-z_]\w*)(?:\[[^\]]*\])?\s*(=)?\s*(struct|interface)?\b`)
	goTypeGroupRe = regexp.MustCompile(`^type\s*\(\s*$`)
)

func parseGo(text string) ([]types.Symbol, []string) {
	lines, anomalies := scanLines(text, cLexer)
	var syms []types.Symbol
	inGroup := false
	for i, ln := range lines {
		code := ln.code
		if inGroup {
			if strings.TrimSpace(code) == ")" && ln.depth == 0 {
				inGroup = false
				continue
			}
			if ln.depth != 0 {
				continue
			}
			if m := goGroupTypeRe.FindStringSubmatch(code); m != nil {
				syms = append(syms, sym(m[1], goTypeKind(m[3]), i, span(lines, i), ""))
			}
			continue
		}
		if ln.depth != 0 {
			continue
		}

		switch {
		case goTypeGroupRe.MatchString(code):
			inGroup = true
		case goPackageRe.MatchString(code):
			syms = append(syms, sym(goPackageRe.FindStringSubmatch(code)[1], types.Module, i, i, ""))
		case goFuncRe.MatchString(code):
			m := goFuncRe.FindStringSubmatch(code)
			if recv := receiverType(m[1]); recv != "" {
				syms = append(syms, sym(m[2], types.Method, i, span(lines, i), recv))
			} else {
				syms = append(syms, sym(m[2], types.Function, i, span(lines, i), ""))
			}
		case goTypeRe.MatchString(code):
			m := goTypeRe.FindStringSubmatch(code)
			syms = append(syms, sym(m[1], goTypeKind(m[3]), i, span(lines, i), ""))
		}
	}
	return syms, anomalies
}

func goTypeKind(keyword string) types.SymbolKind {
	if keyword == "interface" {
		return types.Interface
	}
	return types.Type
}

// receiverType extracts the type name from a method receiver such as
// "s *Server" or "l List[T]".
func receiverType(recv string) string {
	if i := strings.IndexByte(recv, '['); i >= 0 {
		recv = recv[:i]
	}
	fields := strings.Fields(recv)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimLeft(fields[len(fields)-1], "*")
}
