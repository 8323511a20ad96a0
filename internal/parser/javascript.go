// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// componentLookahead bounds how many lines of a capitalised function are
// searched for JSX.
const componentLookahead = 40

const jsIdent = `[A-Za-z_$][\w$]*`

var (
	jsDecoratorRe = regexp.MustCompile(`^\s*@(Component|Injectable|NgModule|Directive|Pipe)\s*\(`)
	jsClassRe     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?class\s+(` + jsIdent + `)(?:\s*<[^{]*?>)?(?:\s+extends\s+([\w$.]+))?`)
	jsInterfaceRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?interface\s+(` + jsIdent + `)`)
	jsTypeRe      = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?type\s+(` + jsIdent + `)\s*(?:<[^=]*>)?\s*=`)
	jsEnumRe      = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\s+(` + jsIdent + `)`)
	jsNamespaceRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?(?:namespace|module)\s+['"]?([\w$./@-]+)['"]?\s*\{`)
	jsFunctionRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:async\s+)?function\s*\*?\s*(` + jsIdent + `)\s*(?:<[^(]*>)?\s*\(`)
	jsDefaultFnRe = regexp.MustCompile(`^\s*export\s+default\s+(?:async\s+)?function\s*\*?\s*\(`)
	jsArrowRe     = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(` + jsIdent + `)\s*(?::\s*[^=]+)?=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::\s*[^=]+)?=>|` + jsIdent + `\s*=>|\(\s*$|(?:React\.)?(?:memo|forwardRef)\s*\()`)
	jsWrapperRe   = regexp.MustCompile(`=\s*(?:React\.)?(?:memo|forwardRef)\s*\(`)
	jsMethodRe    = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|readonly|async|override|abstract|get|set)\s+)*\*?\s*(#?` + jsIdent + `)\s*(?:<[^()]*>)?\s*(?:\?\s*)?(?:\(|=\s*(?:async\s+)?(?:\([^)]*\)|` + jsIdent + `)\s*(?::\s*[^=]+)?=>)`)
	jsRouteRe     = regexp.MustCompile(`^\s*(?:\w+\.)*(app|router|server|api|\w*[Rr]outer)\.(get|post|put|patch|delete|all|use|options|head)\(\s*['"` + "`" + `]([/*][^'"` + "`" + `]*)['"` + "`" + `]`)
	jsHookRe      = regexp.MustCompile(`^use[A-Z0-9]`)
)

var jsKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "function": true, "new": true, "super": true, "with": true,
}

func parseJavaScript(text string) ([]types.Symbol, []string) {
	lines, anomalies := scanLines(text, cLexer)
	var (
		syms      []types.Symbol
		open      stack
		decorator string
		decoDepth int
	)
	for i, ln := range lines {
		open.advance(i)
		code := ln.code
		if strings.TrimSpace(code) == "" {
			continue
		}

		if m := jsRouteRe.FindStringSubmatch(code); m != nil {
			syms = append(syms, sym(strings.ToUpper(m[2])+" "+m[3], types.Hint, i, i, ""))
			continue
		}
		if m := jsDecoratorRe.FindStringSubmatch(code); m != nil {
			decorator, decoDepth = m[1], ln.depth
			continue
		}

		if m := jsClassRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			kind := types.Type
			switch {
			case decorator == "Component" || decorator == "Directive":
				kind = types.Component
			case decorator == "Injectable" || decorator == "Pipe":
				kind = types.Service
			case decorator == "NgModule":
				kind = types.Module
			case isReactBase(m[2]):
				kind = types.Component
			}
			decorator = ""
			syms = append(syms, sym(m[1], kind, i, end, ""))
			open.push(container{name: m[1], kind: typeContainer, depth: ln.depth, end: end})
			continue
		}
		if ln.depth <= decoDepth {
			decorator = ""
		}

		if m := jsInterfaceRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			syms = append(syms, sym(m[1], types.Interface, i, end, ""))
			open.push(container{name: m[1], kind: namespaceContainer, depth: ln.depth, end: end})
			continue
		}
		if m := jsTypeRe.FindStringSubmatch(code); m != nil {
			syms = append(syms, sym(m[1], types.Type, i, span(lines, i), ""))
			continue
		}
		if m := jsEnumRe.FindStringSubmatch(code); m != nil {
			syms = append(syms, sym(m[1], types.Type, i, span(lines, i), ""))
			continue
		}
		if m := jsNamespaceRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			syms = append(syms, sym(m[1], types.Module, i, end, ""))
			open.push(container{name: m[1], kind: namespaceContainer, depth: ln.depth, end: end})
			continue
		}

		if parent, ok := open.directParent(ln.depth); ok && parent.kind == typeContainer {
			if m := jsMethodRe.FindStringSubmatch(code); m != nil && !jsKeywords[m[1]] {
				end := span(lines, i)
				syms = append(syms, sym(m[1], types.Method, i, end, parent.name))
				open.push(container{name: m[1], kind: functionContainer, depth: ln.depth, end: end})
			}
			continue
		}
		if open.inside(functionContainer) {
			continue
		}

		name := ""
		wrapped := false
		if m := jsFunctionRe.FindStringSubmatch(code); m != nil {
			name = m[1]
		} else if jsDefaultFnRe.MatchString(code) {
			name = "default"
		} else if m := jsArrowRe.FindStringSubmatch(code); m != nil && ln.depth == 0 {
			name = m[1]
			wrapped = jsWrapperRe.MatchString(code)
		}
		if name == "" {
			continue
		}
		end := span(lines, i)
		syms = append(syms, sym(name, functionKind(name, lines, i, end, wrapped), i, end, ""))
		open.push(container{name: name, kind: functionContainer, depth: ln.depth, end: end})
	}
	return syms, anomalies
}

// functionKind classifies a free function as a hook, a component, or a
// plain function.
func functionKind(name string, lines []srcLine, start, end int, wrapped bool) types.SymbolKind {
	if jsHookRe.MatchString(name) {
		return types.Hook
	}
	if !startsUpper(name) {
		return types.Function
	}
	if wrapped {
		return types.Component
	}
	limit := end
	if limit > start+componentLookahead {
		limit = start + componentLookahead
	}
	var b strings.Builder
	for k := start; k <= limit && k < len(lines); k++ {
		b.WriteString(lines[k].code)
		b.WriteByte('\n')
	}
	if lang.ContainsJSX([]byte(b.String())) {
		return types.Component
	}
	return types.Function
}

func isReactBase(base string) bool {
	switch base {
	case "Component", "PureComponent", "React.Component", "React.PureComponent":
		return true
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
