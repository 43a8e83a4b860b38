/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"strconv"
	"strings"
)

func (n *NumberLit) String() string {
	return Label(n)
}

func (n *UnaryOp) String() string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func (n *BinaryOp) String() string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// writeNode writes n in constructor form, e.g. Add(NumberLiteral(2), NumberLiteral(3)).
// The stack holds either a node still to be written or punctuation closing
// one that was opened.
func writeNode(sb *strings.Builder, n Node) {
	type item struct {
		node Node
		text string
	}
	stack := []item{{node: n}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.node == nil {
			sb.WriteString(it.text)
			continue
		}
		if lit, ok := it.node.(*NumberLit); ok {
			sb.WriteString(Label(lit))
			continue
		}

		sb.WriteString(it.node.Kind().String())
		sb.WriteByte('(')
		kids := children(it.node)
		stack = append(stack, item{text: ")"})
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{node: kids[i]})
			if i > 0 {
				stack = append(stack, item{text: ", "})
			}
		}
	}
}

// FormatNumber renders a literal value the way it was written
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Label returns the one-line description of n used in tree listings
func Label(n Node) string {
	if lit, ok := n.(*NumberLit); ok {
		return "NumberLiteral(" + FormatNumber(lit.Value) + ")"
	}
	return n.Kind().String()
}

// Line is one row of a flattened tree listing
type Line struct {
	Depth  int // 0 for the root
	Prefix string
	Label  string
	Kind   NodeKind
}

// Flatten lists the nodes of n in pre-order with box-drawing prefixes
func Flatten(n Node) []Line {
	type frame struct {
		node      Node
		depth     int
		indent    string
		connector string
	}
	var lines []Line
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lines = append(lines, Line{
			Depth:  f.depth,
			Prefix: f.indent + f.connector,
			Label:  Label(f.node),
			Kind:   f.node.Kind(),
		})

		childIndent := f.indent
		switch f.connector {
		case "├── ":
			childIndent += "│   "
		case "└── ":
			childIndent += "    "
		}
		kids := children(f.node)
		for i := len(kids) - 1; i >= 0; i-- {
			connector := "├── "
			if i == len(kids)-1 {
				connector = "└── "
			}
			stack = append(stack, frame{node: kids[i], depth: f.depth + 1, indent: childIndent, connector: connector})
		}
	}
	return lines
}

// Tree renders n as an indented listing, one node per line
func Tree(n Node) string {
	var sb strings.Builder
	for _, line := range Flatten(n) {
		sb.WriteString(line.Prefix)
		sb.WriteString(line.Label)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Depth returns the number of nodes on the longest root-to-leaf path
func Depth(n Node) int {
	type frame struct {
		node  Node
		depth int
	}
	deepest := 0
	stack := []frame{{n, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > deepest {
			deepest = f.depth
		}
		for _, child := range children(f.node) {
			stack = append(stack, frame{child, f.depth + 1})
		}
	}
	return deepest
}

// Count returns the number of nodes in n
func Count(n Node) int {
	count := 0
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, children(cur)...)
	}
	return count
}

// Equal reports whether a and b are structurally identical trees
func Equal(a, b Node) bool {
	type pair struct{ a, b Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Kind() != p.b.Kind() {
			return false
		}
		if la, ok := p.a.(*NumberLit); ok {
			lb := p.b.(*NumberLit)
			if la.Value != lb.Value {
				return false
			}
			continue
		}
		ca, cb := children(p.a), children(p.b)
		for i := range ca {
			stack = append(stack, pair{ca[i], cb[i]})
		}
	}
	return true
}
