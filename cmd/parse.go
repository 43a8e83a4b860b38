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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/protoexport"
	"github.com/google/exprtree/core/report"
	"github.com/spf13/cobra"
)

const (
	inputExpr = "expr"
	inputJSON = "json"
)

func newParseCmd(opts *rootOptions) *cobra.Command {
	var input string

	parseCmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse the expression stored in FILE",
		Long: `Parse the whole contents of FILE as one expression and print the tree.
Use - to read standard input. Exits non-zero if the input does not parse.

With --input json, FILE holds a tree written by --format json instead, which
is decoded and printed in the requested format.`,
		Example: `  exprtree parse input.expr --format json > tree.json
  exprtree parse tree.json --input json --format tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			switch input {
			case inputExpr:
				return s.emit(cmd, src)
			case inputJSON:
				n, err := protoexport.UnmarshalJSON([]byte(src))
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				return report.Write(cmd.OutOrStdout(), expr.NewExpression(n), s.format)
			}
			return fmt.Errorf("unknown input %q (want %s or %s)", input, inputExpr, inputJSON)
		},
	}
	parseCmd.Flags().StringVar(&input, "input", inputExpr, "what FILE holds: expr or json")
	return parseCmd
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
