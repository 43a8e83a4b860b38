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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/report"
	"github.com/google/exprtree/core/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var debounce time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-parse FILE every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			watchOpts := watch.Options{ParserOptions: s.cfg.ParserOptions(), Debounce: debounce}
			return watch.Watch(ctx, args[0], watchOpts, func(src string, e *expr.Expression, err error) {
				fmt.Fprintf(out, "--- %s %s\n", time.Now().Format(time.TimeOnly), args[0])
				if err != nil {
					_ = report.WriteError(errOut, src, err, s.color)
					return
				}
				if werr := report.Write(out, e, s.format); werr != nil {
					fmt.Fprintf(errOut, "Error: %v\n", werr)
				}
			})
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-parsing")
	return watchCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
