/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes an expression string. It never fails: runes that start no
// token come back as TOKEN_ILLEGAL and the parser decides what that means.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Pos returns the byte offset of the next unread rune
func (l *Lexer) Pos() int {
	return l.pos
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TOKEN_EOF, Pos: l.pos}
	}

	startPos := l.pos
	ch := l.input[l.pos]

	if isDigit(ch) {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TOKEN_NUMBER, Value: l.input[startPos:l.pos], Pos: startPos}
	}

	var typ TokenType
	switch ch {
	case '+':
		typ = TOKEN_PLUS
	case '-':
		typ = TOKEN_MINUS
	case '*':
		typ = TOKEN_STAR
	case '/':
		typ = TOKEN_SLASH
	case '~':
		typ = TOKEN_TILDE
	default:
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size
		return Token{Type: TOKEN_ILLEGAL, Value: l.input[startPos:l.pos], Pos: startPos}
	}
	l.pos++
	return Token{Type: typ, Value: string(ch), Pos: startPos}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
