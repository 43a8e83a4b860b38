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

package batch

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/exprtree/core/expr"
)

var tableHeaders = []string{"row", "expr", "result", "depth", "nodes"}

// ToAscii returns the results as a table with ASCII borders
func ToAscii(results []Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, tableRow(r))
	}

	widths := calculateColumnWidths(rows)
	border := borderLine(widths)

	var sb strings.Builder
	sb.WriteString(border)
	writeRow(&sb, tableHeaders, widths)
	sb.WriteString(border)
	for _, row := range rows {
		writeRow(&sb, row, widths)
	}
	sb.WriteString(border)
	return sb.String()
}

// WriteTable writes the result table followed by a one-line summary
func WriteTable(w io.Writer, results []Result) error {
	s := Summarize(results)
	_, err := fmt.Fprintf(w, "%s%d parsed, %d failed, max depth %d\n", ToAscii(results), s.Parsed, s.Failed, s.MaxDepth)
	return err
}

func tableRow(r Result) []string {
	src := strings.Join(strings.Fields(r.Source), " ")
	if r.OK() {
		return []string{
			strconv.Itoa(r.Row),
			src,
			r.Expr.AST().Kind().String(),
			strconv.Itoa(r.Expr.Depth()),
			strconv.Itoa(r.Expr.NodeCount()),
		}
	}

	result := "error"
	var perr *expr.ParseError
	if errors.As(r.Err, &perr) {
		result = fmt.Sprintf("%s at %d:%d", perr.Kind, perr.Line, perr.Column)
	}
	return []string{strconv.Itoa(r.Row), src, result, "-", "-"}
}

// calculateColumnWidths calculates the width needed for each column
func calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if n := utf8.RuneCountInString(val); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func borderLine(widths []int) string {
	var sb strings.Builder
	for _, w := range widths {
		sb.WriteString("+")
		sb.WriteString(strings.Repeat("-", w+2))
	}
	sb.WriteString("+\n")
	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	for i, val := range row {
		sb.WriteString("| ")
		sb.WriteString(val)
		sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(val)+1))
	}
	sb.WriteString("|\n")
}
