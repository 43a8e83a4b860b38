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
	"github.com/spf13/cobra"
)

func newExprCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expr EXPR",
		Short: "Parse an expression given on the command line",
		Example: `  exprtree expr "8 / 4 / 2"
  exprtree expr --format tree -- "-1 - -2"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return s.emit(cmd, args[0])
		},
	}
}
