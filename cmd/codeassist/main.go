// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command codeassist is a CLI for the codeassist code intelligence engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/petar-djukic/codeassist/pkg/codeintel"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
	reg *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop(), reg: prometheus.NewRegistry()}

	rootCmd := &cobra.Command{
		Use:          "codeassist",
		Short:        "Code intelligence for terminal coding assistants",
		Long:         "codeassist detects the project type of a repository, ranks files against a query, summarises source structure, and assembles size-bounded context packages.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.v.GetBool("stats") {
				if err := printStats(cmd.ErrOrStderr(), a.reg); err != nil {
					return err
				}
			}
			_ = a.log.Sync()
			return nil
		},
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "Repository root directory")
	flags.Int("budget", 24<<10, "Context package size limit in bytes")
	flags.Int("limit", 20, "Maximum number of search hits")
	flags.Int64("max-file-size", 1<<20, "Skip files larger than this many bytes")
	flags.Int("max-depth", 5, "Deepest directory level scanned for project markers")
	flags.Int("workers", 0, "Concurrent file readers (0 = GOMAXPROCS)")
	flags.StringSlice("exclude", nil, "Extra exclude globs")
	flags.Bool("syntax-check", false, "Report grammar errors in parse results")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("stats", false, "Print engine metrics to stderr after the command")

	// Bind flags to viper.
	flags.VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(f.Name, f)
	})

	// Env vars: CODEASSIST_ROOT, CODEASSIST_MAX_FILE_SIZE, etc.
	a.v.SetEnvPrefix("CODEASSIST")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newDetectCmd(a))
	rootCmd.AddCommand(newSearchCmd(a))
	rootCmd.AddCommand(newGrepCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newContextCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup reads the optional config file and builds the logger.
func (a *app) setup() error {
	a.v.SetConfigName(".codeassist")
	a.v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(dir, "codeassist"))
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	zcfg := zap.NewProductionConfig()
	if a.v.GetBool("verbose") {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.log = log
	return nil
}

// engine builds a codeintel engine from the merged flag, env, and file
// configuration.
func (a *app) engine() (codeintel.Engine, error) {
	cfg := codeintel.Config{
		Root:        a.v.GetString("root"),
		BudgetBytes: a.v.GetInt("budget"),
		SearchLimit: a.v.GetInt("limit"),
		MaxFileSize: a.v.GetInt64("max-file-size"),
		MaxDepth:    a.v.GetInt("max-depth"),
		Workers:     a.v.GetInt("workers"),
		Exclude:     a.v.GetStringSlice("exclude"),
		SyntaxCheck: a.v.GetBool("syntax-check"),
		Logger:      a.log,
		Registerer:  a.reg,
	}
	e, err := codeintel.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return e, nil
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print codeassist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codeassist %s\n", version)
		},
	}
}
