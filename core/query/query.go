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

package query

import (
	"net/url"
	"strconv"

	"github.com/google/safehtml"
)

// DefaultFormat is the view used when the URL names none
const DefaultFormat = "tree"

// Query represents the parsed state of a parse page URL
type Query struct {
	// Base path (e.g., "/parse")
	Path string

	Expr     string // Expression text exactly as submitted
	Format   string // Output view: tree, debug, json or proto
	MaxDepth int    // Requested depth limit (0 = server default)
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:   u.Path,
		Format: DefaultFormat,
	}

	q := u.Query()

	// Whitespace is significant to error positions, so the expression is
	// kept verbatim.
	state.Expr = q.Get("expr")

	if format := q.Get("format"); format != "" {
		state.Format = format
	}

	if depthStr := q.Get("max_depth"); depthStr != "" {
		if depth, err := strconv.Atoi(depthStr); err == nil && depth > 0 {
			state.MaxDepth = depth
		}
	}

	return state
}

// Clone creates a copy of the Query
func (s *Query) Clone() *Query {
	clone := *s
	return &clone
}

// WithFormat returns a URL showing the same expression in another format
func (s *Query) WithFormat(format string) safehtml.URL {
	newState := s.Clone()
	newState.Format = format
	return newState.ToSafeURL()
}

// WithExpr returns a URL parsing a different expression with the same settings
func (s *Query) WithExpr(expr string) safehtml.URL {
	newState := s.Clone()
	newState.Expr = expr
	return newState.ToSafeURL()
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()
	q.Set("expr", s.Expr)
	if s.Format != "" && s.Format != DefaultFormat {
		q.Set("format", s.Format)
	}
	if s.MaxDepth > 0 {
		q.Set("max_depth", strconv.Itoa(s.MaxDepth))
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	urlStr := s.ToURL()
	// URLSanitized sanitizes the input string and returns a URL
	return safehtml.URLSanitized(urlStr)
}
