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

// Package batch parses many expressions read from a CSV file and
// summarizes the results.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/exprtree/core/expr"
)

// DefaultColumn is the header name looked up when Options.Column is empty
const DefaultColumn = "expr"

// Options configures how expressions are read
type Options struct {
	// HasHeader indicates whether the first row contains column headers
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// Column names the header holding the expressions. Without a header, or
	// when the header has no such column, the first column is used.
	Column string
	// ParserOptions are passed to every parse
	ParserOptions []expr.Option
}

// DefaultOptions returns default batch options
func DefaultOptions() Options {
	return Options{
		HasHeader: true,
		Delimiter: ',',
		Column:    DefaultColumn,
	}
}

// Result is the outcome of parsing one row
type Result struct {
	Row    int // 1-based file line where the record starts
	Source string
	Expr   *expr.Expression
	Err    error
}

// OK reports whether the row parsed
func (r Result) OK() bool {
	return r.Err == nil
}

// ParseFile parses every expression in a CSV file
func ParseFile(path string, options Options) ([]Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, options)
}

// ParseReader parses every expression in CSV data. An error is returned
// only when the CSV itself cannot be read; parse failures are recorded in
// the results.
func ParseReader(reader io.Reader, options Options) ([]Result, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	// Rows may carry extra columns such as comments.
	csvReader.FieldsPerRecord = -1

	col := 0
	if options.HasHeader {
		header, err := csvReader.Read()
		if err == io.EOF {
			return nil, errors.New("CSV file is empty")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		col = columnIndex(header, options.Column)
	}

	var results []Result
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := csvReader.FieldPos(0)
		res := Result{Row: line}
		if col < len(record) {
			res.Source = record[col]
		}
		res.Expr, res.Err = expr.Compile(res.Source, options.ParserOptions...)
		results = append(results, res)
	}
	if results == nil && !options.HasHeader {
		return nil, errors.New("CSV file is empty")
	}
	return results, nil
}

func columnIndex(headers []string, name string) int {
	if name == "" {
		name = DefaultColumn
	}
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return 0
}

// Summary aggregates a batch of results
type Summary struct {
	Total    int
	Parsed   int
	Failed   int
	MaxDepth int
	Nodes    int                  // Sum of node counts over parsed rows
	ByRoot   map[expr.NodeKind]int // Parsed rows by root node kind
	ByError  map[expr.ErrorKind]int
}

// Summarize counts parsed and failed rows
func Summarize(results []Result) Summary {
	s := Summary{
		Total:   len(results),
		ByRoot:  make(map[expr.NodeKind]int),
		ByError: make(map[expr.ErrorKind]int),
	}
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			var perr *expr.ParseError
			if errors.As(r.Err, &perr) {
				s.ByError[perr.Kind]++
			}
			continue
		}
		s.Parsed++
		s.Nodes += r.Expr.NodeCount()
		s.ByRoot[r.Expr.AST().Kind()]++
		if d := r.Expr.Depth(); d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	return s
}
