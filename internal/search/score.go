// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package search

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/internal/parser"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// Scoring weights. Relative order matters more than absolute values.
const (
	boundaryWeight  = 1.0
	substringWeight = 0.5
	pathWeight      = 3.0

	primaryFactor = 1.5
	familyFactor  = 1.25
	intentFactor  = 1.25

	frameworkKeywordBoost = 1.5
	frameworkBoostCap     = 6.0
	drupalHookBoost       = 4.0
	drupalConfigBoost     = 3.0
	drupalTemplateBoost   = 2.0

	emptyPrimaryBoost = 1.0
	emptyFamilyBoost  = 0.5

	// MaxExcerpts is how many matched lines a hit records.
	MaxExcerpts = 5
	// MaxExcerptBytes bounds the length of one excerpt.
	MaxExcerptBytes = 160
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "i": true, "in": true, "is": true, "it": true,
	"me": true, "my": true, "of": true, "on": true, "or": true, "our": true,
	"that": true, "the": true, "this": true, "to": true, "we": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "with": true, "you": true, "your": true,
}

// frameworkKeywords are lowercase markers whose presence in a file raises
// its score when the project uses that framework.
var frameworkKeywords = map[types.Framework][]string{
	types.React:   {"usestate", "useeffect", "component", "jsx", "props", "hook"},
	types.NextJS:  {"getserversideprops", "getstaticprops", "next/", "usestate", "useeffect", "props"},
	types.Angular: {"@component", "@injectable", "@ngmodule", "ngoninit", "observable"},
	types.Django:  {"django", "models.model", "urlpatterns", "httpresponse", "queryset"},
	types.Flask:   {"flask", "@app.route", "blueprint", "jsonify", "request."},
	types.FastAPI: {"fastapi", "apirouter", "depends(", "basemodel", "@router."},
	types.Drupal:  {"hook_", "drupal", `\plugin\`, `\form\`, `\entity\`},
}

var phpFunctionRe = regexp.MustCompile(`(?mi)^[ \t]*function\s+&?\s*([a-z_]\w*)\s*\(`)

// Project is what the scorer knows about the repository being searched.
type Project struct {
	Type          types.ProjectType
	DrupalModules []string // Machine names declared by *.info.yml files
}

// Keywords splits a query into search terms: lowercased, split on
// whitespace, trimmed of punctuation, deduplicated in order of first
// appearance, with stop words and single-character terms removed.
func Keywords(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.TrimFunc(f, func(r rune) bool { return !isWordRune(r) })
		if utf8.RuneCountInString(f) < 2 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// Score rates one already-read file against query. Content that is binary
// or not UTF-8 is matched by path only. The second result is false when
// the file scores zero and should not be listed.
func Score(relPath string, content []byte, query string, p Project) (types.SearchHit, bool) {
	return newScorer(query, p).score(relPath, content)
}

type scorer struct {
	terms   []string
	pt      types.ProjectType
	primary types.Language
	modules []string
	intents []intent
	drupal  bool // the query asks about Drupal
}

func newScorer(query string, p Project) *scorer {
	terms := Keywords(query)
	s := &scorer{
		terms:   terms,
		pt:      p.Type,
		primary: p.Type.PrimaryLanguage(),
		modules: p.DrupalModules,
		intents: intentsFor(terms),
	}
	for _, t := range terms {
		if t == "drupal" || strings.HasPrefix(t, "hook_") {
			s.drupal = true
		}
	}
	return s
}

func (s *scorer) score(relPath string, content []byte) (types.SearchHit, bool) {
	language := lang.Detect(relPath, content)
	if lang.IsBinary(content) {
		content, language = nil, types.Unknown
	}
	hit := types.SearchHit{FilePath: relPath, Language: language}

	var total float64
	if len(s.terms) == 0 {
		total = s.languageBoost(language)
		if total == 0 && !s.drupalConfig(relPath) {
			return hit, false
		}
		total += s.frameworkBoost(relPath, content, language)
	} else {
		base, matched, lines := s.match(relPath, content)
		if base == 0 {
			return hit, false
		}
		total = base * (0.5 + 0.5*float64(matched)/float64(len(s.terms)))
		total *= s.languageFactor(language)
		if len(s.intents) > 0 {
			sig := lang.DetectSignatures(content, language)
			if s.intended(language, sig, content) {
				total *= intentFactor
			}
			if s.drupal {
				total += drupalIntentBoost(sig)
			}
		}
		total += s.frameworkBoost(relPath, content, language)
		hit.MatchedLines = lines
	}
	hit.Score = total
	return hit, total > 0
}

// match computes the term score of path and content in one pass and
// collects excerpts for the first matched lines.
func (s *scorer) match(relPath string, content []byte) (float64, int, []types.LineMatch) {
	var (
		base  float64
		lines []types.LineMatch
		seen  = make([]int, len(s.terms))
	)

	lowerPath := strings.ToLower(relPath)
	for i, t := range s.terms {
		if strings.Contains(lowerPath, t) {
			base += pathWeight
			seen[i]++
		}
	}

	occurrences := make([]int, len(s.terms))
	num := 0
	for len(content) > 0 {
		num++
		var line []byte
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			line, content = content, nil
		}
		lower := strings.ToLower(string(line))
		hitLine := false
		for i, t := range s.terms {
			for from := 0; ; {
				j := strings.Index(lower[from:], t)
				if j < 0 {
					break
				}
				at := from + j
				occurrences[i]++
				w := substringWeight
				if atBoundary(lower, at, len(t)) {
					w = boundaryWeight
				}
				base += w / float64(occurrences[i])
				hitLine = true
				from = at + len(t)
			}
		}
		if hitLine && len(lines) < MaxExcerpts {
			lines = append(lines, types.LineMatch{Line: num, Excerpt: excerpt(string(line))})
		}
	}

	matched := 0
	for i := range s.terms {
		if seen[i] > 0 || occurrences[i] > 0 {
			matched++
		}
	}
	return base, matched, lines
}

func (s *scorer) languageFactor(l types.Language) float64 {
	switch {
	case s.primary == types.Unknown || l == types.Unknown:
		return 1
	case l == s.primary:
		return primaryFactor
	case l.Family() == s.primary.Family():
		return familyFactor
	}
	return 1
}

func (s *scorer) languageBoost(l types.Language) float64 {
	switch {
	case s.primary == types.Unknown || l == types.Unknown:
		return 0
	case l == s.primary:
		return emptyPrimaryBoost
	case l.Family() == s.primary.Family():
		return emptyFamilyBoost
	}
	return 0
}

// frameworkBoost adds the additive boosts for the project's framework.
func (s *scorer) frameworkBoost(relPath string, content []byte, l types.Language) float64 {
	if s.pt.Framework == types.NoFramework {
		return 0
	}
	if s.drupalConfig(relPath) {
		return drupalConfigBoost
	}
	if l == types.Unknown || l.Family() != s.primary.Family() {
		return 0
	}

	lower := bytes.ToLower(content)
	var boost float64
	for _, kw := range frameworkKeywords[s.pt.Framework] {
		if bytes.Contains(lower, []byte(kw)) {
			boost += frameworkKeywordBoost
		}
	}
	if boost > frameworkBoostCap {
		boost = frameworkBoostCap
	}
	if s.pt.IsDrupal() && l == types.PHP && s.definesHook(relPath, content) {
		boost += drupalHookBoost
	}
	return boost
}

// definesHook reports whether content defines a function implementing a
// hook for one of the project's modules, or for the module a .module or
// .inc file is named after.
func (s *scorer) definesHook(relPath string, content []byte) bool {
	modules := s.modules
	if lang.DrupalExtension(relPath) {
		if m, _, _ := strings.Cut(path.Base(relPath), "."); m != "" {
			modules = append(modules[:len(modules):len(modules)], strings.ToLower(m))
		}
	}
	if len(modules) == 0 {
		return false
	}
	for _, m := range phpFunctionRe.FindAllSubmatch(content, -1) {
		name := strings.ToLower(string(m[1]))
		for _, module := range modules {
			if parser.IsDrupalHook(name, module) {
				return true
			}
		}
	}
	return false
}

// drupalIntentBoost rewards Drupal configuration and templates when the
// query asks about Drupal.
func drupalIntentBoost(sig lang.Signatures) float64 {
	switch {
	case sig.DrupalInfo || sig.DrupalServices:
		return drupalConfigBoost
	case sig.DrupalTemplate:
		return drupalTemplateBoost
	}
	return 0
}

func (s *scorer) drupalConfig(relPath string) bool {
	if !s.pt.IsDrupal() {
		return false
	}
	base := strings.ToLower(path.Base(relPath))
	return strings.HasSuffix(base, ".info.yml") || strings.HasSuffix(base, ".services.yml")
}

// intent is a query term that names a language or framework.
type intent func(l types.Language, sig lang.Signatures, lower []byte) bool

func languageIntent(want types.Language) intent {
	return func(l types.Language, _ lang.Signatures, _ []byte) bool { return l == want }
}

func wordIntent(word string, want types.Language) intent {
	return func(l types.Language, _ lang.Signatures, lower []byte) bool {
		return l == want && bytes.Contains(lower, []byte(word))
	}
}

func drupalIntent(_ types.Language, sig lang.Signatures, _ []byte) bool {
	return sig.Drupal || sig.DrupalInfo || sig.DrupalServices || sig.DrupalTemplate
}

var intentTerms = map[string]intent{
	"rust":       languageIntent(types.Rust),
	"python":     languageIntent(types.Python),
	"javascript": languageIntent(types.JavaScript),
	"js":         languageIntent(types.JavaScript),
	"typescript": languageIntent(types.TypeScript),
	"ts":         languageIntent(types.TypeScript),
	"php":        languageIntent(types.PHP),
	"go":         languageIntent(types.Go),
	"golang":     languageIntent(types.Go),
	"react":      func(_ types.Language, sig lang.Signatures, _ []byte) bool { return sig.React || sig.JSX },
	"jsx":        func(_ types.Language, sig lang.Signatures, _ []byte) bool { return sig.JSX },
	"angular":    func(_ types.Language, sig lang.Signatures, _ []byte) bool { return sig.Angular },
	"next":       func(_ types.Language, sig lang.Signatures, _ []byte) bool { return sig.NextJS },
	"nextjs":     func(_ types.Language, sig lang.Signatures, _ []byte) bool { return sig.NextJS },
	"drupal":     drupalIntent,
	"django":     wordIntent("django", types.Python),
	"flask":      wordIntent("flask", types.Python),
	"fastapi":    wordIntent("fastapi", types.Python),
}

func intentsFor(terms []string) []intent {
	var out []intent
	for _, t := range terms {
		if in, ok := intentTerms[t]; ok {
			out = append(out, in)
		} else if strings.HasPrefix(t, "hook_") {
			out = append(out, intentTerms["drupal"])
		}
	}
	return out
}

// intended reports whether the file matches any language or framework the
// query names.
func (s *scorer) intended(l types.Language, sig lang.Signatures, content []byte) bool {
	lower := bytes.ToLower(content)
	for _, in := range s.intents {
		if in(l, sig, lower) {
			return true
		}
	}
	return false
}

func atBoundary(s string, at, n int) bool {
	if at > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:at])
		if isWordRune(r) {
			return false
		}
	}
	if at+n < len(s) {
		r, _ := utf8.DecodeRuneInString(s[at+n:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// excerpt trims line and shortens it to MaxExcerptBytes on a rune
// boundary.
func excerpt(line string) string {
	line = strings.TrimSpace(line)
	if len(line) <= MaxExcerptBytes {
		return line
	}
	cut := MaxExcerptBytes
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut]
}
