/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cmd implements the exprtree command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/exprtree/core/config"
	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/report"
	"github.com/spf13/cobra"
)

// errReported is returned once a parse error has been printed, so Execute
// exits non-zero without printing it a second time.
var errReported = errors.New("parse failed")

type rootOptions struct {
	cfgFile  string
	maxDepth int
	format   string
	color    string
}

// settings is the configuration after flags are applied
type settings struct {
	cfg    *config.Config
	format report.Format
	color  report.ColorMode
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "exprtree",
		Short: "Parse arithmetic expressions into syntax trees",
		Long: `exprtree parses arithmetic expressions built from unsigned integer
literals, the prefix operators - and ~, and the infix operators + - * /
into syntax trees.

Products bind tighter than sums and both fold to the left. A run of
prefix operators must repeat a single operator.

Examples:
  exprtree expr "2 + 3 * 4"
  exprtree parse input.expr --format tree
  exprtree serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default: $"+config.EnvConfigPath+" or ./exprtree.toml)")
	pf.IntVar(&opts.maxDepth, "max-depth", 0, "maximum tree depth, 0 or negative for no limit (default from config)")
	pf.StringVar(&opts.format, "format", "", "output format: debug, tree, repr, json or proto")
	pf.StringVar(&opts.color, "color", "", "error colors: auto, always or never")

	rootCmd.AddCommand(
		newParseCmd(opts),
		newBatchCmd(opts),
		newExprCmd(opts),
		newWatchCmd(opts),
		newReplCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line, printing any error not already reported
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(err)
	}
	return err
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// resolve loads the config file and applies any flags that were set
func (o *rootOptions) resolve(cmd *cobra.Command) (*settings, error) {
	var cfg *config.Config
	var err error
	if o.cfgFile != "" {
		cfg, err = config.Load(o.cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.Parser.MaxDepth = o.maxDepth
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("color") {
		cfg.Output.Color = o.color
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	color, err := report.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, format: format, color: color}, nil
}

// emit parses src and writes the tree to stdout or the error to stderr
func (s *settings) emit(cmd *cobra.Command, src string) error {
	e, err := expr.Compile(src, s.cfg.ParserOptions()...)
	if err != nil {
		if werr := report.WriteError(cmd.ErrOrStderr(), src, err, s.color); werr != nil {
			return werr
		}
		return errReported
	}
	return report.Write(cmd.OutOrStdout(), e, s.format)
}
