// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assemble

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/codeassist/pkg/types"
)

const maxLineLength = 200

// renderHeader returns the fixed block that opens every package.
func renderHeader(pt types.ProjectType, query string) string {
	return fmt.Sprintf("Project: %s\nQuery: %s\n", pt, oneLine(query))
}

// renderCitation returns the line listing one ranked hit. The first
// citation carries the section title.
func renderCitation(rank int, hit types.SearchHit) string {
	var b strings.Builder
	if rank == 1 {
		b.WriteString("\nRanked files:\n")
	}
	fmt.Fprintf(&b, "%d. %s (score %.2f)", rank, hit.FilePath, hit.Score)
	if len(hit.MatchedLines) > 0 {
		m := hit.MatchedLines[0]
		fmt.Fprintf(&b, " L%d: %s", m.Line, m.Excerpt)
	}
	return clip(b.String()) + "\n"
}

// renderSummary returns the section describing one parsed file.
func renderSummary(pr types.ParseResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## %s (%s, %d lines)\n", pr.FilePath, pr.Language, pr.LineCount)
	for _, s := range pr.Symbols {
		line := "  " + s.Kind.String() + " " + s.Name
		if s.Parent != "" {
			line += " [" + s.Parent + "]"
		}
		line += fmt.Sprintf(" L%d-%d", s.StartLine, s.EndLine)
		b.WriteString(clip(line) + "\n")
	}
	if len(pr.Imports) > 0 {
		fmt.Fprintf(&b, "  imports: %d\n", len(pr.Imports))
	}
	for _, e := range pr.ParseErrors {
		b.WriteString(clip("  anomaly: "+e) + "\n")
	}
	return b.String()
}

func clip(line string) string {
	if len(line) <= maxLineLength {
		return line
	}
	cut := maxLineLength - 3
	for cut > 0 && line[cut]&0xC0 == 0x80 {
		cut--
	}
	return line[:cut] + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
