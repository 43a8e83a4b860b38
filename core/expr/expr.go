/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors

Package expr parses flat arithmetic expressions into an abstract syntax tree.
It supports:
  - Number literals: unsigned runs of decimal digits (123, 007)
  - Prefix operators: negation (-5, --5) and inversion (~5, ~~5), one kind per term
  - Binary operators: *, / binding tighter than +, -, all left-associative
  - Whitespace around any operator and around the whole input

There is no grouping syntax and no evaluation; a parse yields either a
complete tree or a *ParseError.
*/
package expr

import "strings"

// Parse parses input into an expression tree
func Parse(input string, opts ...Option) (Node, error) {
	return NewParser(input, opts...).Parse()
}

// Expression is a parsed tree together with the text it came from
type Expression struct {
	source string
	ast    Node
}

// Compile parses source and keeps it alongside the resulting tree
func Compile(source string, opts ...Option) (*Expression, error) {
	ast, err := Parse(source, opts...)
	if err != nil {
		return nil, err
	}
	return &Expression{source: source, ast: ast}, nil
}

// NewExpression wraps a tree built without source text, such as one decoded
// from JSON. Source returns "".
func NewExpression(ast Node) *Expression {
	return &Expression{ast: ast}
}

// Source returns the original expression source
func (e *Expression) Source() string {
	return e.source
}

// AST returns the root of the parsed tree
func (e *Expression) AST() Node {
	return e.ast
}

// Depth returns the nesting depth of the tree
func (e *Expression) Depth() int {
	return Depth(e.ast)
}

// NodeCount returns the number of nodes in the tree
func (e *Expression) NodeCount() int {
	return Count(e.ast)
}

func (e *Expression) String() string {
	return e.ast.String()
}

// Trimmed reports the source with surrounding whitespace removed
func (e *Expression) Trimmed() string {
	return strings.TrimSpace(e.source)
}
