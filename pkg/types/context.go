// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// LineMatch is one matched line recorded while a file was scored.
type LineMatch struct {
	Line    int    `json:"line"`    // 1-based
	Excerpt string `json:"excerpt"` // Trimmed line text, possibly shortened
}

// SearchHit is one ranked file returned by the search engine.
type SearchHit struct {
	FilePath     string      `json:"file_path"`
	Language     Language    `json:"language"`
	Score        float64     `json:"score"` // Always >= 0
	MatchedLines []LineMatch `json:"matched_lines,omitempty"`
}

// GrepMatch is one line matched by a regular-expression search.
type GrepMatch struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

// ContextPackage is the size-bounded bundle handed to the prompt builder.
// Text is its deterministic serialization and TotalSizeBytes == len(Text).
type ContextPackage struct {
	ProjectType     ProjectType            `json:"project_type"`
	Query           string                 `json:"query"`
	RankedFiles     []SearchHit            `json:"ranked_files"`
	ParsedSummaries map[string]ParseResult `json:"parsed_summaries"`
	SummaryOrder    []string               `json:"summary_order"` // Paths of ParsedSummaries in rank order
	TotalSizeBytes  int                    `json:"total_size_bytes"`
	Budget          int                    `json:"budget"`
	Diagnostics     []Diagnostic           `json:"diagnostics,omitempty"`
	Text            string                 `json:"-"`
}

// ParsedCount returns the number of files whose summaries were included.
func (p *ContextPackage) ParsedCount() int {
	return len(p.SummaryOrder)
}
