// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/petar-djukic/codeassist/pkg/types"
)

var (
	pyClassRe     = regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)\s*(?:\(([^)]*)\)?)?`)
	pyDefRe       = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyInterfaceRe = regexp.MustCompile(`\b(Protocol|ABC|ABCMeta)\b`)
	pyRouteRe     = regexp.MustCompile(`^\s*@\w+(?:\.\w+)*\.(route|get|post|put|patch|delete|head|options|api_route|websocket)\(\s*(?:path\s*=\s*)?[rf]?['"]([^'"]*)['"]`)
	pyMethodsRe   = regexp.MustCompile(`methods\s*=\s*[\[(]\s*['"](\w+)['"]`)
)

// pyLine is one physical Python line with its logical-line status.
type pyLine struct {
	text    string
	indent  int
	logical bool // starts a logical line (not inside a string or brackets)
	blank   bool // empty or comment only
}

// pyBlock is an open class or def.
type pyBlock struct {
	sym    int // index into the symbol slice
	indent int
	class  bool
	name   string
}

func parsePython(text string) ([]types.Symbol, []string) {
	lines, anomalies := scanPython(text)

	var (
		syms    []types.Symbol
		open    []pyBlock
		pending []types.Symbol // route hints waiting for their function
	)
	lastSignificant := 0
	closeTo := func(indent int) {
		for len(open) > 0 && open[len(open)-1].indent >= indent {
			syms[open[len(open)-1].sym].EndLine = lastSignificant + 1
			open = open[:len(open)-1]
		}
	}

	for i, ln := range lines {
		if ln.blank {
			continue
		}
		if !ln.logical {
			lastSignificant = i
			continue
		}
		closeTo(ln.indent)
		lastSignificant = i

		if m := pyRouteRe.FindStringSubmatch(ln.text); m != nil {
			pending = append(pending, sym(routeName(m[1], m[2], ln.text), types.Hint, i, i, ""))
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(ln.text), "@") {
			continue
		}
		if m := pyDefRe.FindStringSubmatch(ln.text); m != nil {
			kind, parent := types.Function, ""
			if n := len(open); n > 0 && open[n-1].class {
				kind, parent = types.Method, open[n-1].name
			}
			for _, h := range pending {
				h.Parent = m[1]
				syms = append(syms, h)
			}
			pending = nil
			syms = append(syms, sym(m[1], kind, i, i, parent))
			open = append(open, pyBlock{sym: len(syms) - 1, indent: ln.indent, name: m[1]})
			continue
		}
		if m := pyClassRe.FindStringSubmatch(ln.text); m != nil {
			kind, parent := types.Type, ""
			if pyInterfaceRe.MatchString(m[2]) {
				kind = types.Interface
			}
			if n := len(open); n > 0 && open[n-1].class {
				parent = open[n-1].name
			}
			pending = nil
			syms = append(syms, sym(m[1], kind, i, i, parent))
			open = append(open, pyBlock{sym: len(syms) - 1, indent: ln.indent, class: true, name: m[1]})
			continue
		}
		pending = nil
	}
	closeTo(0)
	return syms, anomalies
}

// routeName renders a route decorator as "METHOD /path".
func routeName(verb, path, line string) string {
	method := strings.ToUpper(verb)
	switch verb {
	case "route", "api_route":
		method = "GET"
		if m := pyMethodsRe.FindStringSubmatch(line); m != nil {
			method = strings.ToUpper(m[1])
		}
	case "websocket":
		method = "WS"
	}
	return method + " " + path
}

// scanPython classifies each line, tracking triple-quoted strings, bracket
// nesting, and backslash continuations.
func scanPython(text string) ([]pyLine, []string) {
	raw := splitLines(text)
	out := make([]pyLine, len(raw))
	var anomalies []string

	var triple string
	tripleStart := 0
	brackets := 0
	continuation := false

	for i, t := range raw {
		ln := pyLine{text: t, indent: indentWidth(t)}
		trimmed := strings.TrimSpace(t)
		ln.logical = triple == "" && brackets == 0 && !continuation
		ln.blank = ln.logical && (trimmed == "" || strings.HasPrefix(trimmed, "#"))
		if triple != "" && trimmed == "" {
			ln.blank = true
		}

		continuation = false
		for k := 0; k < len(t); k++ {
			c := t[k]
			if triple != "" {
				if c == '\\' {
					k++
					continue
				}
				if strings.HasPrefix(t[k:], triple) {
					k += 2
					triple = ""
				}
				continue
			}
			switch {
			case c == '#':
				k = len(t)
			case strings.HasPrefix(t[k:], `"""`) || strings.HasPrefix(t[k:], `'''`):
				triple = t[k : k+3]
				tripleStart = i + 1
				k += 2
			case c == '"' || c == '\'':
				k = skipQuoted(t, k)
			case c == '(' || c == '[' || c == '{':
				brackets++
			case c == ')' || c == ']' || c == '}':
				if brackets > 0 {
					brackets--
				}
			}
		}
		if triple == "" && strings.HasSuffix(strings.TrimRight(t, " \t"), "\\") {
			continuation = true
		}
		out[i] = ln
	}

	if triple != "" {
		anomalies = append(anomalies, fmt.Sprintf("unterminated triple-quoted string starting at line %d", tripleStart))
	}
	if brackets > 0 {
		anomalies = append(anomalies, "unclosed bracket at end of file")
	}
	return out, anomalies
}

// skipQuoted returns the index of the quote closing the string that opens
// at k, or the last index of the line when it does not close.
func skipQuoted(t string, k int) int {
	q := t[k]
	for j := k + 1; j < len(t); j++ {
		switch t[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(t) - 1
}

// indentWidth measures leading whitespace, expanding tabs to multiples of 8.
func indentWidth(s string) int {
	w := 0
	for _, c := range s {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 8 - w%8
		default:
			return w
		}
	}
	return w
}
