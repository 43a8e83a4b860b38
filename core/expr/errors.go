/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies a parse failure
type ErrorKind int

const (
	// UnexpectedInput: the input at Pos does not match the active grammar rule.
	UnexpectedInput ErrorKind = iota + 1
	// TrailingInput: a complete expression was parsed but input remains.
	TrailingInput
	// DepthExceeded: the tree would nest deeper than the configured limit.
	DepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedInput:
		return "UnexpectedInput"
	case TrailingInput:
		return "TrailingInput"
	case DepthExceeded:
		return "DepthExceeded"
	}
	return "Unknown"
}

var (
	ErrUnexpectedInput = errors.New("unexpected input")
	ErrTrailingInput   = errors.New("trailing input")
	ErrDepthExceeded   = errors.New("maximum depth exceeded")
)

// ParseError is the structured failure returned by Parse. Pos is a byte
// offset into the input; Line and Column are 1-based, Column counted in runes.
type ParseError struct {
	Kind     ErrorKind
	Pos      int
	Line     int
	Column   int
	Found    string   // offending token text, empty at end of input
	Expected []string // what the grammar would have accepted at Pos
	Limit    int      // configured depth limit, set for DepthExceeded
}

func newParseError(input string, kind ErrorKind, tok Token, expected ...string) *ParseError {
	line, col := lineColumn(input, tok.Pos)
	found := tok.Value
	if tok.Type == TOKEN_EOF {
		found = ""
	}
	return &ParseError{
		Kind:     kind,
		Pos:      tok.Pos,
		Line:     line,
		Column:   col,
		Found:    found,
		Expected: expected,
	}
}

func (e *ParseError) Error() string {
	found := "end of input"
	if e.Found != "" {
		found = "'" + e.Found + "'"
	}
	switch e.Kind {
	case DepthExceeded:
		return fmt.Sprintf("expression exceeds maximum depth %d at line %d, column %d", e.Limit, e.Line, e.Column)
	case TrailingInput:
		return fmt.Sprintf("trailing input %s at line %d, column %d, expected %s", found, e.Line, e.Column, joinExpected(e.Expected))
	}
	return fmt.Sprintf("unexpected %s at line %d, column %d, expected %s", found, e.Line, e.Column, joinExpected(e.Expected))
}

// Unwrap returns the sentinel matching e.Kind so callers can use errors.Is
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case TrailingInput:
		return ErrTrailingInput
	case DepthExceeded:
		return ErrDepthExceeded
	}
	return ErrUnexpectedInput
}

// Caret returns the source line holding the error position and a marker
// line with '^' under the offending column.
func Caret(src string, e *ParseError) (line, marker string) {
	pos := e.Pos
	if pos > len(src) {
		pos = len(src)
	}
	start := strings.LastIndexByte(src[:pos], '\n') + 1
	end := strings.IndexByte(src[pos:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += pos
	}
	line = strings.TrimRight(src[start:end], "\r")

	var sb strings.Builder
	for _, r := range src[start:pos] {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')
	return line, sb.String()
}

func lineColumn(input string, pos int) (int, int) {
	if pos > len(input) {
		pos = len(input)
	}
	before := input[:pos]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}

func joinExpected(items []string) string {
	switch len(items) {
	case 0:
		return "nothing"
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// furthest picks the error that got further into the input. Errors at the
// same position merge their expected sets.
func furthest(a, b *ParseError) *ParseError {
	if a.Pos > b.Pos {
		return a
	}
	if b.Pos > a.Pos {
		return b
	}
	merged := *a
	merged.Expected = append([]string(nil), a.Expected...)
	for _, exp := range b.Expected {
		seen := false
		for _, have := range merged.Expected {
			if have == exp {
				seen = true
				break
			}
		}
		if !seen {
			merged.Expected = append(merged.Expected, exp)
		}
	}
	// operator tokens first, then token classes such as "digit"
	sort.SliceStable(merged.Expected, func(i, j int) bool {
		return isQuoted(merged.Expected[i]) && !isQuoted(merged.Expected[j])
	})
	return &merged
}

func isQuoted(s string) bool {
	return strings.HasPrefix(s, "'")
}
