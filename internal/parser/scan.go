// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxSignatureLines bounds how far a declaration header may run before its
// body opens.
const maxSignatureLines = 30

// lexer describes the comment and string syntax of a brace language.
type lexer struct {
	slashComments bool   // "//" line comments and "/* */" block comments
	hashComments  bool   // "#" line comments, except "#[" attributes
	quotes        string // string delimiters
	multiline     string // delimiters whose literals may span lines
	rustChars     bool   // "'" opens a char literal only when it closes nearby
	rawStrings    bool   // r"..", r#".."# and br".." raw literals
}

// rawQuote marks an open raw string literal in scanLines.
const rawQuote byte = 'r'


var (
	cLexer    = lexer{slashComments: true, quotes: "\"'`", multiline: "`"}
	rustLexer = lexer{slashComments: true, quotes: `"`, multiline: `"`, rustChars: true, rawStrings: true}
	phpLexer  = lexer{slashComments: true, hashComments: true, quotes: `"'`, multiline: `"'`}
)

// srcLine is one physical line after lexing.
type srcLine struct {
	num    int    // 1-based
	text   string // raw text
	code   string // text with comments and continued string bodies blanked
	depth  int    // brace depth at line start
	after  int    // brace depth at line end
	parens int    // net change of ( and [ on the line
}

// splitLines splits text into lines without their terminators. A trailing
// newline does not start a new line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// scanLines walks the text once, tracking brace depth outside comments and
// string literals. Structural problems are returned as anomalies; scanning
// never stops early.
func scanLines(text string, lx lexer) ([]srcLine, []string) {
	raw := splitLines(text)
	out := make([]srcLine, len(raw))
	var anomalies []string

	depth := 0
	inComment := false
	var inString byte
	rawHashes := 0
	commentStart, stringStart := 0, 0

	for i, t := range raw {
		b := []byte(t)
		code := []byte(t)
		ln := srcLine{num: i + 1, text: t, depth: depth}
		continued := inString != 0

		for k := 0; k < len(b); k++ {
			c := b[k]
			if inComment {
				if c == '*' && k+1 < len(b) && b[k+1] == '/' {
					code[k], code[k+1] = ' ', ' '
					k++
					inComment = false
					continue
				}
				code[k] = ' '
				continue
			}
			if inString == rawQuote {
				if c == '"' && closesRaw(b, k, rawHashes) {
					if continued {
						blank(code[k+1 : k+1+rawHashes])
					}
					k += rawHashes
					inString = 0
					continued = false
					continue
				}
				if continued {
					code[k] = ' '
				}
				continue
			}
			if inString != 0 {
				if c == '\\' && inString != '`' && k+1 < len(b) {
					if continued {
						code[k], code[k+1] = ' ', ' '
					}
					k++
					continue
				}
				if c == inString {
					inString = 0
					continued = false
					continue
				}
				if continued {
					code[k] = ' '
				}
				continue
			}

			switch {
			case lx.slashComments && c == '/' && k+1 < len(b) && b[k+1] == '/':
				blank(code[k:])
				k = len(b)
			case lx.slashComments && c == '/' && k+1 < len(b) && b[k+1] == '*':
				code[k], code[k+1] = ' ', ' '
				k++
				inComment = true
				commentStart = i + 1
			case lx.hashComments && c == '#' && (k+1 >= len(b) || b[k+1] != '['):
				blank(code[k:])
				k = len(b)
			case lx.rawStrings && (c == 'r' || c == 'b') && (k == 0 || !identByte(b[k-1])):
				if q, n, ok := rawStringOpen(b, k); ok {
					inString, rawHashes = rawQuote, n
					stringStart = i + 1
					k = q
				}
			case lx.rustChars && c == '\'':
				k = rustCharEnd(b, k)
			case strings.IndexByte(lx.quotes, c) >= 0:
				inString = c
				stringStart = i + 1
			case c == '{':
				depth++
			case c == '}':
				if depth == 0 {
					anomalies = append(anomalies, fmt.Sprintf("unexpected closing brace at line %d", i+1))
					continue
				}
				depth--
			case c == '(' || c == '[':
				ln.parens++
			case c == ')' || c == ']':
				ln.parens--
			}
		}
		if inString != 0 && inString != rawQuote && strings.IndexByte(lx.multiline, inString) < 0 {
			inString = 0
		}
		ln.after = depth
		ln.code = string(code)
		out[i] = ln
	}

	switch {
	case inComment:
		anomalies = append(anomalies, fmt.Sprintf("unterminated block comment starting at line %d", commentStart))
	case inString != 0:
		anomalies = append(anomalies, fmt.Sprintf("unterminated string starting at line %d", stringStart))
	}
	if depth > 0 {
		anomalies = append(anomalies, fmt.Sprintf("unterminated block at end of file (depth %d)", depth))
	}
	return out, anomalies
}

func blank(b []byte) {
	for i := range b {
		b[i] = ' '
	}
}

// rawStringOpen reports whether a raw string literal opens at k and returns
// the index of its opening quote and the number of hashes that close it.
func rawStringOpen(b []byte, k int) (quote, hashes int, ok bool) {
	j := k
	if b[j] == 'b' {
		j++
	}
	if j >= len(b) || b[j] != 'r' {
		return 0, 0, false
	}
	for j++; j < len(b) && b[j] == '#'; j++ {
		hashes++
	}
	if j >= len(b) || b[j] != '"' {
		return 0, 0, false
	}
	return j, hashes, true
}

// closesRaw reports whether the quote at k is followed by hashes '#' bytes.
func closesRaw(b []byte, k, hashes int) bool {
	if k+hashes >= len(b) {
		return false
	}
	for j := k + 1; j <= k+hashes; j++ {
		if b[j] != '#' {
			return false
		}
	}
	return true
}

func identByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// rustCharEnd returns the index of the closing quote of a char literal that
// opens at k, or k itself when the quote starts a lifetime.
func rustCharEnd(b []byte, k int) int {
	if k+1 >= len(b) {
		return k
	}
	if b[k+1] == '\\' {
		for j := k + 2; j < len(b) && j <= k+12; j++ {
			if b[j] == '\'' {
				return j
			}
		}
		return k
	}
	_, size := utf8.DecodeRune(b[k+1:])
	if end := k + 1 + size; end < len(b) && b[end] == '\'' {
		return end
	}
	return k
}

// span returns the index of the last line of the declaration that starts at
// index i. A declaration whose body opens with a brace ends where the depth
// returns to the starting depth; one without a body ends on its terminating
// line. Blocks left open at end of file end on the last line.
func span(lines []srcLine, i int) int {
	base := lines[i].depth
	parens := 0
	for j := i; j < len(lines) && j <= i+maxSignatureLines; j++ {
		ln := lines[j]
		if j > i && ln.depth < base {
			return j - 1
		}
		if ln.after > base {
			for k := j + 1; k < len(lines); k++ {
				if lines[k].after <= base {
					return k
				}
			}
			return len(lines) - 1
		}
		parens += ln.parens
		code := strings.TrimSpace(ln.code)
		if parens <= 0 && strings.HasSuffix(code, ";") {
			return j
		}
		if parens > 0 || continues(code) {
			continue
		}
		if n := nextCode(lines, j); n > j && opensBody(lines[n].code) {
			continue
		}
		return j
	}
	return i
}

var continuationSuffixes = []string{",", "(", "[", "=", "=>", "->", ":", "|", "&", "+", "<", "extends", "implements"}

// continues reports whether a trimmed header line obviously carries on.
func continues(code string) bool {
	for _, s := range continuationSuffixes {
		if strings.HasSuffix(code, s) {
			return true
		}
	}
	return false
}

var bodyPrefixes = []string{"{", "where", "->", "extends", "implements", "&&", "||", ":"}

// opensBody reports whether a line continues the header before it.
func opensBody(code string) bool {
	code = strings.TrimSpace(code)
	for _, p := range bodyPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// nextCode returns the index of the next line after j with code on it, or -1.
func nextCode(lines []srcLine, j int) int {
	for k := j + 1; k < len(lines); k++ {
		if strings.TrimSpace(lines[k].code) != "" {
			return k
		}
	}
	return -1
}

// container is an open class, impl, trait, or namespace body.
type container struct {
	name  string
	kind  containerKind
	depth int // brace depth of the declaring line
	end   int // index of the last line of the body
}

type containerKind int

const (
	typeContainer containerKind = iota
	functionContainer
	namespaceContainer
)

// stack tracks the containers enclosing the current line.
type stack []container

// advance drops containers that ended before line index i.
func (s *stack) advance(i int) {
	for len(*s) > 0 && (*s)[len(*s)-1].end < i {
		*s = (*s)[:len(*s)-1]
	}
}

func (s *stack) push(c container) { *s = append(*s, c) }

// directParent returns the innermost container when the line at depth is
// directly inside its body.
func (s stack) directParent(depth int) (container, bool) {
	if len(s) == 0 {
		return container{}, false
	}
	top := s[len(s)-1]
	return top, depth == top.depth+1
}

// inside reports whether any open container has the given kind.
func (s stack) inside(kind containerKind) bool {
	for _, c := range s {
		if c.kind == kind {
			return true
		}
	}
	return false
}
