// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/petar-djukic/codeassist/pkg/types"
)

// newDetectCmd creates the "detect" command.
func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Detect project markers and classify the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			features, err := e.DetectFeatures(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Root        string                `json:"root"`
				ProjectType types.ProjectType     `json:"project_type"`
				Summary     string                `json:"summary"`
				Features    types.ProjectFeatures `json:"features"`
			}{
				Root:        e.Root(),
				ProjectType: e.Classify(features),
				Summary:     e.Classify(features).String(),
				Features:    features,
			})
		},
	}
}

// newSearchCmd creates the "search" command.
func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query...]",
		Short: "Rank repository files against a query",
		Long:  "Search scores every file against the query and the detected project type. With no query, files are ranked by language and framework alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			res, err := e.Search(cmd.Context(), strings.Join(args, " "), a.v.GetInt("limit"))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

// newGrepCmd creates the "grep" command.
func newGrepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grep <pattern>",
		Short: "List lines matching a regular expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			matches, err := e.Grep(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range matches {
				fmt.Fprintf(w, "%s:%d: %s\n", m.FilePath, m.Line, m.Text)
			}
			return nil
		},
	}
}

// newParseCmd creates the "parse" command.
func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the structural summary of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			pr, err := e.ParseFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pr)
		},
	}
}

// newContextCmd creates the "context" command.
func newContextCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context [query...]",
		Short: "Assemble a size-bounded context package",
		Long:  "Context ranks files against the query, then packs citations and parsed summaries into at most --budget bytes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			pkg, err := e.BuildContext(cmd.Context(), strings.Join(args, " "), e.Budget())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), pkg)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), pkg.Text)
			return err
		},
	}

	cmd.Flags().Bool("json", false, "Print the package structure as JSON instead of its text")

	return cmd
}

// printJSON outputs v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printStats writes every gathered counter and histogram as one line.
func printStats(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
