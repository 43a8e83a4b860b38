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

	"github.com/google/exprtree/core/batch"
	"github.com/spf13/cobra"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	batchOpts := batch.DefaultOptions()
	var noHeader bool
	var delimiter string

	batchCmd := &cobra.Command{
		Use:   "batch FILE.csv",
		Short: "Parse one expression per CSV row and print a summary table",
		Long: `Parse the expression column of every row in a CSV file.

The column is found by header name (default "expr"); without a header,
or when no header matches, the first column is used. Exits non-zero if
any row fails to parse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			batchOpts.HasHeader = !noHeader
			batchOpts.ParserOptions = s.cfg.ParserOptions()
			if delimiter != "" {
				r := []rune(delimiter)
				if len(r) != 1 {
					return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
				}
				batchOpts.Delimiter = r[0]
			}

			results, err := batch.ParseFile(args[0], batchOpts)
			if err != nil {
				return err
			}
			if err := batch.WriteTable(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if batch.Summarize(results).Failed > 0 {
				return errReported
			}
			return nil
		},
	}
	batchCmd.Flags().BoolVar(&noHeader, "no-header", false, "the first row holds data, not column names")
	batchCmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter (default \",\")")
	batchCmd.Flags().StringVar(&batchOpts.Column, "column", batch.DefaultColumn, "header of the expression column")
	return batchCmd
}
