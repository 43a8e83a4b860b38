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
	"os"
	"os/signal"
	"syscall"

	"github.com/google/exprtree/core/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var host string
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse pages and JSON API over HTTP",
		Long: `Start the web front end.

Routes:
  /             landing page with examples
  /parse        parse result page (?expr=...&format=...&max_depth=...)
  /api/parse    parse result as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				s.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				s.cfg.Server.Port = port
			}
			if err := s.cfg.Validate(); err != nil {
				return err
			}

			srv, err := server.NewServer(s.cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	serveCmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return serveCmd
}
