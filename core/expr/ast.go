/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

// NodeKind identifies which variant of the expression tree a Node is
type NodeKind int

const (
	KindNumber NodeKind = iota
	KindNegate
	KindInvert
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
)

var kindNames = [...]string{
	KindNumber:   "NumberLiteral",
	KindNegate:   "Negate",
	KindInvert:   "Invert",
	KindAdd:      "Add",
	KindSubtract: "Subtract",
	KindMultiply: "Multiply",
	KindDivide:   "Divide",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind maps a variant name back to its NodeKind
func ParseKind(name string) (NodeKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// Node is the interface for all AST nodes
type Node interface {
	node()
	Kind() NodeKind
	String() string
}

// NumberLit represents a numeric literal
type NumberLit struct {
	Value float64
}

func (n *NumberLit) node() {}

func (n *NumberLit) Kind() NodeKind { return KindNumber }

// UnaryOp represents a prefix operation. Op is TOKEN_MINUS for negation
// and TOKEN_TILDE for inversion.
type UnaryOp struct {
	Op   TokenType
	Expr Node
}

func (n *UnaryOp) node() {}

func (n *UnaryOp) Kind() NodeKind {
	if n.Op == TOKEN_TILDE {
		return KindInvert
	}
	return KindNegate
}

// BinaryOp represents a binary operation
type BinaryOp struct {
	Op    TokenType
	Left  Node
	Right Node
}

func (n *BinaryOp) node() {}

func (n *BinaryOp) Kind() NodeKind {
	switch n.Op {
	case TOKEN_PLUS:
		return KindAdd
	case TOKEN_MINUS:
		return KindSubtract
	case TOKEN_STAR:
		return KindMultiply
	default:
		return KindDivide
	}
}

// NewNumber returns a literal holding v
func NewNumber(v float64) Node { return &NumberLit{Value: v} }

// NewNegate returns -operand
func NewNegate(operand Node) Node { return &UnaryOp{Op: TOKEN_MINUS, Expr: operand} }

// NewInvert returns ~operand
func NewInvert(operand Node) Node { return &UnaryOp{Op: TOKEN_TILDE, Expr: operand} }

// NewAdd returns left + right
func NewAdd(left, right Node) Node { return &BinaryOp{Op: TOKEN_PLUS, Left: left, Right: right} }

// NewSubtract returns left - right
func NewSubtract(left, right Node) Node {
	return &BinaryOp{Op: TOKEN_MINUS, Left: left, Right: right}
}

// NewMultiply returns left * right
func NewMultiply(left, right Node) Node {
	return &BinaryOp{Op: TOKEN_STAR, Left: left, Right: right}
}

// NewDivide returns left / right
func NewDivide(left, right Node) Node {
	return &BinaryOp{Op: TOKEN_SLASH, Left: left, Right: right}
}

// children returns the operands of n in left-to-right order
func children(n Node) []Node {
	switch n := n.(type) {
	case *UnaryOp:
		return []Node{n.Expr}
	case *BinaryOp:
		return []Node{n.Left, n.Right}
	}
	return nil
}
