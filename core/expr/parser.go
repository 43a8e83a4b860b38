/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"strconv"
)

// Parser parses tokens into an AST
type Parser struct {
	input    string
	lexer    *Lexer
	cur      Token
	maxDepth int
}

// Option configures a Parser
type Option func(*Parser)

// WithMaxDepth rejects trees nested deeper than n levels. A literal has
// depth 1; zero or a negative n disables the check.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n < 0 {
			n = 0
		}
		p.maxDepth = n
	}
}

// NewParser creates a new parser
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{input: input}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) advance() {
	p.cur = p.lexer.NextToken()
}

// cursor is a saved parser position used to rewind after a failed alternative
type cursor struct {
	pos int
	cur Token
}

func (p *Parser) mark() cursor {
	return cursor{pos: p.lexer.pos, cur: p.cur}
}

func (p *Parser) reset(c cursor) {
	p.lexer.pos = c.pos
	p.cur = c.cur
}

// Parse parses the whole input and returns the AST. On failure the error is
// a *ParseError and no tree is returned.
func (p *Parser) Parse() (Node, error) {
	p.lexer = NewLexer(p.input)
	p.advance()

	node, _, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TOKEN_EOF {
		return nil, newParseError(p.input, TrailingInput, p.cur, "'+'", "'-'", "'*'", "'/'", "end of input")
	}
	return node, nil
}

// Grammar, loosest binding first:
//
//	sum     := product (('+' | '-') product)*
//	product := unary (('*' | '/') unary)*
//	unary   := '~'* literal | '-'* literal
//	literal := digit+
//
// Every level returns the node together with its depth so the limit can be
// enforced without walking the tree.

func (p *Parser) parseSum() (Node, int, *ParseError) {
	left, depth, err := p.parseProduct()
	if err != nil {
		return nil, 0, err
	}

	for p.cur.Type == TOKEN_PLUS || p.cur.Type == TOKEN_MINUS {
		op := p.cur
		p.advance()
		right, rdepth, err := p.parseProduct()
		if err != nil {
			return nil, 0, err
		}
		if depth, err = p.combine(op, depth, rdepth); err != nil {
			return nil, 0, err
		}
		left = &BinaryOp{Op: op.Type, Left: left, Right: right}
	}
	return left, depth, nil
}

func (p *Parser) parseProduct() (Node, int, *ParseError) {
	left, depth, err := p.parseUnary()
	if err != nil {
		return nil, 0, err
	}

	for p.cur.Type == TOKEN_STAR || p.cur.Type == TOKEN_SLASH {
		op := p.cur
		p.advance()
		right, rdepth, err := p.parseUnary()
		if err != nil {
			return nil, 0, err
		}
		if depth, err = p.combine(op, depth, rdepth); err != nil {
			return nil, 0, err
		}
		left = &BinaryOp{Op: op.Type, Left: left, Right: right}
	}
	return left, depth, nil
}

// parseUnary accepts a run of '~' or a run of '-', never a mix. The '~'
// form is tried first; on failure the cursor is rewound and the '-' form
// is tried. If both fail the error that got further wins.
func (p *Parser) parseUnary() (Node, int, *ParseError) {
	start := p.mark()
	node, depth, errInvert := p.parsePrefixed(TOKEN_TILDE)
	if errInvert == nil || errInvert.Kind == DepthExceeded {
		return node, depth, errInvert
	}

	p.reset(start)
	node, depth, errNegate := p.parsePrefixed(TOKEN_MINUS)
	if errNegate == nil || errNegate.Kind == DepthExceeded {
		return node, depth, errNegate
	}
	return nil, 0, furthest(errInvert, errNegate)
}

// parsePrefixed consumes zero or more op tokens followed by a literal and
// wraps the literal once per token, so "--5" is Negate(Negate(5)). The run
// is counted rather than recursed over.
func (p *Parser) parsePrefixed(op TokenType) (Node, int, *ParseError) {
	count := 0
	for p.cur.Type == op {
		count++
		if p.maxDepth > 0 && count+1 > p.maxDepth {
			return nil, 0, p.depthError(p.cur)
		}
		p.advance()
	}

	if p.cur.Type != TOKEN_NUMBER {
		return nil, 0, newParseError(p.input, UnexpectedInput, p.cur, op.String(), "digit")
	}
	node, err := p.parseLiteral()
	if err != nil {
		return nil, 0, err
	}
	for i := 0; i < count; i++ {
		node = &UnaryOp{Op: op, Expr: node}
	}
	return node, count + 1, nil
}

func (p *Parser) parseLiteral() (Node, *ParseError) {
	if p.cur.Type != TOKEN_NUMBER {
		return nil, newParseError(p.input, UnexpectedInput, p.cur, "digit")
	}
	// A digit run only fails with ErrRange, in which case val is ±Inf.
	val, err := strconv.ParseFloat(p.cur.Value, 64)
	if err != nil && !isRangeError(err) {
		return nil, newParseError(p.input, UnexpectedInput, p.cur, "digit")
	}
	p.advance()
	return &NumberLit{Value: val}, nil
}

// combine returns the depth of a binary node over operands of the given
// depths, failing at op when that exceeds the limit.
func (p *Parser) combine(op Token, left, right int) (int, *ParseError) {
	depth := max(left, right) + 1
	if p.maxDepth > 0 && depth > p.maxDepth {
		return 0, p.depthError(op)
	}
	return depth, nil
}

func (p *Parser) depthError(tok Token) *ParseError {
	err := newParseError(p.input, DepthExceeded, tok)
	err.Limit = p.maxDepth
	return err
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}
