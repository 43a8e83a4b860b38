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

package views

import (
	"errors"

	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/query"
	"github.com/google/exprtree/core/report"
	"github.com/google/safehtml"
)

// TreeViewModel contains a parse result formatted for template consumption
type TreeViewModel struct {
	Title      string
	Source     string       // Expression as submitted
	Format     string       // Active format
	CurrentURL safehtml.URL // Permalink to this result
	Formats    []FormatLink // Links to the same expression in other formats

	// Set on success
	Rows      []TreeRow // Flattened tree, used by the "tree" format
	Output    string    // Rendered text for every other format
	Depth     int
	NodeCount int

	// Set on failure
	Error *ErrorInfo
}

// TreeRow is one node of the tree listing
type TreeRow struct {
	Prefix string // Box-drawing indentation
	Label  string // e.g. "Add" or "NumberLiteral(2)"
	Kind   string
	Depth  int
	IsLeaf bool
}

// ErrorInfo describes a failed parse for display
type ErrorInfo struct {
	Kind       string
	Message    string
	Line       int
	Column     int
	SourceLine string // Line of the input holding the error
	Marker     string // Spaces and a caret under the error column
	Expected   []string
}

// FormatLink is a link to another output format
type FormatLink struct {
	Name   string
	URL    safehtml.URL
	Active bool
}

// LandingViewModel contains the data for the landing page
type LandingViewModel struct {
	Title    string
	Subtitle string
	Examples []ExampleLink
}

// ExampleLink is a ready-made expression shown on the landing page
type ExampleLink struct {
	Expr        string
	Description string
	URL         safehtml.URL
}

// BuildTreeViewModel builds the view model for one parse. Exactly one of e
// and err is expected to be non-nil.
func BuildTreeViewModel(q *query.Query, e *expr.Expression, err error) TreeViewModel {
	vm := TreeViewModel{
		Title:      "exprtree",
		Source:     q.Expr,
		Format:     q.Format,
		CurrentURL: q.ToSafeURL(),
	}

	for _, f := range report.Formats() {
		vm.Formats = append(vm.Formats, FormatLink{
			Name:   string(f),
			URL:    q.WithFormat(string(f)),
			Active: string(f) == q.Format,
		})
	}

	if err != nil {
		vm.Error = buildErrorInfo(q.Expr, err)
		return vm
	}

	vm.Title = e.Trimmed() + " - exprtree"
	vm.Depth = e.Depth()
	vm.NodeCount = e.NodeCount()

	format := report.Format(q.Format)
	if format == report.FormatTree {
		if err := report.CheckIndented(e); err != nil {
			vm.Error = &ErrorInfo{Kind: "RenderError", Message: err.Error()}
			return vm
		}
		for _, line := range expr.Flatten(e.AST()) {
			vm.Rows = append(vm.Rows, TreeRow{
				Prefix: line.Prefix,
				Label:  line.Label,
				Kind:   line.Kind.String(),
				Depth:  line.Depth,
				IsLeaf: line.Kind == expr.KindNumber,
			})
		}
		return vm
	}

	out, renderErr := report.Render(e, format)
	if renderErr != nil {
		vm.Error = &ErrorInfo{Kind: "RenderError", Message: renderErr.Error()}
		return vm
	}
	vm.Output = out
	return vm
}

func buildErrorInfo(src string, err error) *ErrorInfo {
	var perr *expr.ParseError
	if !errors.As(err, &perr) {
		return &ErrorInfo{Kind: "Error", Message: err.Error()}
	}
	line, marker := expr.Caret(src, perr)
	return &ErrorInfo{
		Kind:       perr.Kind.String(),
		Message:    perr.Error(),
		Line:       perr.Line,
		Column:     perr.Column,
		SourceLine: line,
		Marker:     marker,
		Expected:   perr.Expected,
	}
}

// BuildLandingViewModel builds the landing page with example expressions
// linking to the parse page at parsePath.
func BuildLandingViewModel(parsePath string) LandingViewModel {
	examples := []struct {
		expr, description string
	}{
		{"2 + 3 * 4", "Products bind tighter than sums"},
		{"8 / 4 / 2", "Operators at one level fold to the left"},
		{"---7", "Prefix runs nest once per operator"},
		{"~5 * -6", "Inversion and negation on separate terms"},
		{"~-5", "Mixed prefix runs are rejected"},
		{"3 3", "Input left over after a complete expression"},
	}

	base := &query.Query{Path: parsePath, Format: query.DefaultFormat}
	vm := LandingViewModel{
		Title:    "exprtree",
		Subtitle: "Parse arithmetic expressions into syntax trees",
	}
	for _, ex := range examples {
		vm.Examples = append(vm.Examples, ExampleLink{
			Expr:        ex.expr,
			Description: ex.description,
			URL:         base.WithExpr(ex.expr),
		})
	}
	return vm
}
