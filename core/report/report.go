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

// Package report renders parse results for terminals and files.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/protoexport"
	"github.com/muesli/termenv"
)

// Format selects how a parsed tree is printed
type Format string

const (
	FormatDebug Format = "debug" // Ok(Add(NumberLiteral(1), ...))
	FormatTree  Format = "tree"  // indented listing
	FormatRepr  Format = "repr"  // Go syntax of the node structs
	FormatJSON  Format = "json"
	FormatProto Format = "proto" // textproto of google.protobuf.Value
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatDebug, FormatTree, FormatRepr, FormatJSON, FormatProto}
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// MaxIndentedDepth is the deepest tree the tree and repr formats print.
// Their indentation grows with the square of depth, and repr recurses once
// per level.
const MaxIndentedDepth = 4096

// ErrTooDeep is returned when a tree is too deep for the requested format
var ErrTooDeep = errors.New("tree too deep for format")

// CheckIndented fails with ErrTooDeep if e is too deep for the tree and
// repr formats
func CheckIndented(e *expr.Expression) error {
	if d := e.Depth(); d > MaxIndentedDepth {
		return fmt.Errorf("%w: depth %d, limit %d; use debug or json", ErrTooDeep, d, MaxIndentedDepth)
	}
	return nil
}

// Render returns the tree of e in format f
func Render(e *expr.Expression, f Format) (string, error) {
	switch f {
	case FormatDebug:
		return "Ok(" + e.String() + ")\n", nil
	case FormatTree:
		if err := CheckIndented(e); err != nil {
			return "", err
		}
		return expr.Tree(e.AST()), nil
	case FormatRepr:
		if err := CheckIndented(e); err != nil {
			return "", err
		}
		return repr.String(e.AST(), repr.Indent("  ")) + "\n", nil
	case FormatJSON:
		data, err := protoexport.MarshalJSON(e.AST())
		if err != nil {
			return "", fmt.Errorf("failed to encode tree: %w", err)
		}
		return string(data) + "\n", nil
	case FormatProto:
		data, err := protoexport.MarshalText(e.AST())
		if err != nil {
			return "", fmt.Errorf("failed to encode tree: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown format %q", f)
}

// Write renders the tree of e to w
func Write(w io.Writer, e *expr.Expression, f Format) error {
	out, err := Render(e, f)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// ColorMode controls styling of error output
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a color mode name
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
}

type styles struct {
	label  lipgloss.Style
	gutter lipgloss.Style
	caret  lipgloss.Style
}

func newStyles(w io.Writer, mode ColorMode) styles {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		label:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		gutter: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		caret:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
	}
}

// WriteError prints err for the input src. Parse errors get a source
// snippet with a caret under the offending position; other errors are
// printed as a single line.
func WriteError(w io.Writer, src string, err error, mode ColorMode) error {
	st := newStyles(w, mode)

	var perr *expr.ParseError
	if !errors.As(err, &perr) {
		_, werr := fmt.Fprintf(w, "%s %v\n", st.label.Render("error:"), err)
		return werr
	}

	line, marker := expr.Caret(src, perr)
	num := strconv.Itoa(perr.Line)
	pad := strings.Repeat(" ", len(num))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", st.label.Render(perr.Kind.String()+":"), perr.Error())
	fmt.Fprintf(&sb, "%s\n", st.gutter.Render(pad+" |"))
	fmt.Fprintf(&sb, "%s %s\n", st.gutter.Render(num+" |"), line)
	fmt.Fprintf(&sb, "%s %s%s\n", st.gutter.Render(pad+" |"), strings.TrimSuffix(marker, "^"), st.caret.Render("^"))
	_, werr := io.WriteString(w, sb.String())
	return werr
}
