/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

// TokenType represents the type of a token
type TokenType int

const (
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL
	TOKEN_NUMBER
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_TILDE
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "end of input",
	TOKEN_ILLEGAL: "illegal",
	TOKEN_NUMBER:  "number",
	TOKEN_PLUS:    "'+'",
	TOKEN_MINUS:   "'-'",
	TOKEN_STAR:    "'*'",
	TOKEN_SLASH:   "'/'",
	TOKEN_TILDE:   "'~'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}
