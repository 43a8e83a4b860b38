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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/report"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".exprtree_history"
	promptMain  = "expr> "
)

// lineReader is the part of *liner.State the loop needs
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	in     lineReader
	out    io.Writer
	errOut io.Writer
	s      *settings
}

func newReplCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse expressions interactively",
		Long: `Read expressions one line at a time and print each tree.

Commands:
  :format [name]  show or change the output format
  :help           list commands
  :quit           leave (Ctrl-D also works)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			histPath := ""
			if home, err := os.UserHomeDir(); err == nil {
				histPath = filepath.Join(home, historyFile)
			}
			if histPath != "" {
				if f, err := os.Open(histPath); err == nil {
					_, _ = ln.ReadHistory(f)
					_ = f.Close()
				}
				defer func() {
					if f, err := os.Create(histPath); err == nil {
						_, _ = ln.WriteHistory(f)
						_ = f.Close()
					}
				}()
			}

			fmt.Fprintln(cmd.OutOrStdout(), "exprtree "+Version+" - type :help for commands")
			r := &repl{in: ln, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), s: s}
			return r.run()
		},
	}
}

func (r *repl) run() error {
	for {
		line, err := r.in.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(trimmed); quit {
				return nil
			}
			continue
		}

		e, err := expr.Compile(line, r.s.cfg.ParserOptions()...)
		if err != nil {
			_ = report.WriteError(r.errOut, line, err, r.s.color)
			continue
		}
		if err := report.Write(r.out, e, r.s.format); err != nil {
			return err
		}
	}
}

// command runs a colon command and reports whether the loop should end
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":format":
		if len(fields) == 1 {
			fmt.Fprintf(r.out, "format: %s\n", r.s.format)
			return false
		}
		f, err := report.ParseFormat(fields[1])
		if err != nil {
			fmt.Fprintf(r.errOut, "%v\n", err)
			return false
		}
		r.s.format = f
		fmt.Fprintf(r.out, "format: %s\n", f)
	case ":help":
		fmt.Fprintln(r.out, ":format [name]  show or change the output format")
		fmt.Fprintln(r.out, ":help           list commands")
		fmt.Fprintln(r.out, ":quit           leave")
	default:
		fmt.Fprintf(r.errOut, "unknown command %s, type :help for commands\n", fields[0])
	}
	return false
}
