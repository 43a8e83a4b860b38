/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// Shorthand constructors for expected trees
var (
	num = NewNumber
	neg = NewNegate
	inv = NewInvert
	add = NewAdd
	sub = NewSubtract
	mul = NewMultiply
	div = NewDivide
)

func TestParseTrees(t *testing.T) {
	tests := []struct {
		expr     string
		expected Node
	}{
		{"0", num(0)},
		{"42", num(42)},
		{"007", num(7)},
		{"  42  ", num(42)},
		{"2+3*4", add(num(2), mul(num(3), num(4)))},
		{"2*3+4", add(mul(num(2), num(3)), num(4))},
		{"8/4/2", div(div(num(8), num(4)), num(2))},
		{"8-4-2", sub(sub(num(8), num(4)), num(2))},
		{"1+2+3", add(add(num(1), num(2)), num(3))},
		{"2*3/4", div(mul(num(2), num(3)), num(4))},
		{"1 + 2 * 3 - 4 / 5", sub(add(num(1), mul(num(2), num(3))), div(num(4), num(5)))},
		{"~5", inv(num(5))},
		{"~~5", inv(inv(num(5)))},
		{"-5", neg(num(5))},
		{"--5", neg(neg(num(5)))},
		{"- - 5", neg(neg(num(5)))},
		{"3--5", sub(num(3), neg(num(5)))},
		{"3 - -5", sub(num(3), neg(num(5)))},
		{"3---5", sub(num(3), neg(neg(num(5))))},
		{"-3*~4", mul(neg(num(3)), inv(num(4)))},
		{"3 - ~5", sub(num(3), inv(num(5)))},
		{"\t1\n+\r\n2 ", add(num(1), num(2))},
		{"1 + 2", add(num(1), num(2))},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if !Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseDigitRuns(t *testing.T) {
	for _, digits := range []string{"1", "9", "10", "123456789", "000", "9007199254740993"} {
		t.Run(digits, func(t *testing.T) {
			got, err := Parse(digits)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			lit, ok := got.(*NumberLit)
			if !ok {
				t.Fatalf("expected *NumberLit, got %T", got)
			}
			var want float64
			for _, d := range digits {
				want = want*10 + float64(d-'0')
			}
			if lit.Value != want {
				t.Errorf("expected %v, got %v", want, lit.Value)
			}
		})
	}
}

func TestParseHugeLiteralSaturates(t *testing.T) {
	got, err := Parse("1" + strings.Repeat("0", 400))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if v := got.(*NumberLit).Value; !math.IsInf(v, 1) {
		t.Errorf("expected +Inf, got %v", v)
	}
}

func TestNegationDepth(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 100, 10000} {
		got, err := Parse(strings.Repeat("-", n) + "12")
		if err != nil {
			t.Fatalf("n=%d: parse error: %v", n, err)
		}
		nesting := 0
		for {
			u, ok := got.(*UnaryOp)
			if !ok {
				break
			}
			if u.Kind() != KindNegate {
				t.Fatalf("n=%d: expected Negate, got %v", n, u.Kind())
			}
			nesting++
			got = u.Expr
		}
		if nesting != n {
			t.Errorf("expected nesting %d, got %d", n, nesting)
		}
		if lit, ok := got.(*NumberLit); !ok || lit.Value != 12 {
			t.Errorf("n=%d: expected NumberLiteral(12) at the bottom, got %v", n, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		expr     string
		kind     ErrorKind
		pos      int
		found    string
		expected []string
	}{
		{"", UnexpectedInput, 0, "", []string{"'~'", "'-'", "digit"}},
		{"   ", UnexpectedInput, 3, "", []string{"'~'", "'-'", "digit"}},
		{"3+", UnexpectedInput, 2, "", []string{"'~'", "'-'", "digit"}},
		{"3 *", UnexpectedInput, 3, "", []string{"'~'", "'-'", "digit"}},
		{"~-5", UnexpectedInput, 1, "-", []string{"'~'", "digit"}},
		{"-~5", UnexpectedInput, 1, "~", []string{"'-'", "digit"}},
		{"-", UnexpectedInput, 1, "", []string{"'-'", "digit"}},
		{"+3", UnexpectedInput, 0, "+", []string{"'~'", "'-'", "digit"}},
		{"3 + x", UnexpectedInput, 4, "x", []string{"'~'", "'-'", "digit"}},
		{"(1)", UnexpectedInput, 0, "(", []string{"'~'", "'-'", "digit"}},
		{"1.5", TrailingInput, 1, ".", []string{"'+'", "'-'", "'*'", "'/'", "end of input"}},
		{"3 3", TrailingInput, 2, "3", []string{"'+'", "'-'", "'*'", "'/'", "end of input"}},
		{"3 ~4", TrailingInput, 2, "~", []string{"'+'", "'-'", "'*'", "'/'", "end of input"}},
		{"1+2)", TrailingInput, 3, ")", []string{"'+'", "'-'", "'*'", "'/'", "end of input"}},
		{"1 é", TrailingInput, 2, "é", []string{"'+'", "'-'", "'*'", "'/'", "end of input"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err == nil {
				t.Fatalf("expected error, got tree %v", got)
			}
			if got != nil {
				t.Errorf("expected no tree on failure, got %v", got)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, perr.Kind)
			}
			if perr.Pos != tt.pos {
				t.Errorf("expected position %d, got %d", tt.pos, perr.Pos)
			}
			if perr.Found != tt.found {
				t.Errorf("expected found %q, got %q", tt.found, perr.Found)
			}
			if strings.Join(perr.Expected, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("expected %v, got %v", tt.expected, perr.Expected)
			}
		})
	}
}

func TestErrorSentinels(t *testing.T) {
	_, err := Parse("")
	if !errors.Is(err, ErrUnexpectedInput) {
		t.Errorf("expected ErrUnexpectedInput, got %v", err)
	}
	_, err = Parse("3 3")
	if !errors.Is(err, ErrTrailingInput) {
		t.Errorf("expected ErrTrailingInput, got %v", err)
	}
	_, err = Parse("---1", WithMaxDepth(2))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		expr    string
		message string
	}{
		{"", "unexpected end of input at line 1, column 1, expected '~', '-' or digit"},
		{"~-5", "unexpected '-' at line 1, column 2, expected '~' or digit"},
		{"3 3", "trailing input '3' at line 1, column 3, expected '+', '-', '*', '/' or end of input"},
		{"1 +\n 2 +\n é", "unexpected 'é' at line 3, column 2, expected '~', '-' or digit"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.message {
				t.Errorf("expected %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	tests := []struct {
		expr  string
		limit int
		ok    bool
		pos   int
	}{
		{"5", 1, true, 0},
		{"-5", 1, false, 0},
		{"--5", 3, true, 0},
		{"---5", 3, false, 2},
		{"~~~5", 3, false, 2},
		{"1+2", 2, true, 0},
		{"1+2+3", 2, false, 3},
		{"1+2*3", 2, false, 1},
		{"1*2+3", 3, true, 0},
		{strings.Repeat("-", 50) + "1", 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr, WithMaxDepth(tt.limit))
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if perr.Kind != DepthExceeded {
				t.Errorf("expected DepthExceeded, got %v", perr.Kind)
			}
			if perr.Pos != tt.pos {
				t.Errorf("expected position %d, got %d", tt.pos, perr.Pos)
			}
			if perr.Limit != tt.limit {
				t.Errorf("expected limit %d, got %d", tt.limit, perr.Limit)
			}
		})
	}
}

func TestParseIsRepeatable(t *testing.T) {
	inputs := []string{"1+2*3", "--4/~~5-6", "8/4/2"}
	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		second, err := Parse(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !Equal(first, second) {
			t.Errorf("%s: trees differ: %v vs %v", in, first, second)
		}
		if first == second {
			t.Errorf("%s: expected distinct trees per parse", in)
		}
	}
}

func TestCompile(t *testing.T) {
	compiled, err := Compile(" 2 + 3 * 4 ")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if compiled.Source() != " 2 + 3 * 4 " {
		t.Errorf("unexpected source %q", compiled.Source())
	}
	if compiled.Trimmed() != "2 + 3 * 4" {
		t.Errorf("unexpected trimmed source %q", compiled.Trimmed())
	}
	if compiled.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", compiled.Depth())
	}
	if compiled.NodeCount() != 5 {
		t.Errorf("expected 5 nodes, got %d", compiled.NodeCount())
	}
	want := "Add(NumberLiteral(2), Multiply(NumberLiteral(3), NumberLiteral(4)))"
	if compiled.String() != want {
		t.Errorf("expected %s, got %s", want, compiled.String())
	}

	if _, err := Compile("3 +"); err == nil {
		t.Error("expected compile error")
	}
}

func TestConcurrentParses(t *testing.T) {
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				got, err := Parse("1+2*-3/~4")
				if err != nil {
					done <- err
					return
				}
				if !Equal(got, add(num(1), div(mul(num(2), neg(num(3))), inv(num(4))))) {
					done <- errors.New("unexpected tree " + got.String())
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}

// Benchmarks

func BenchmarkParse(b *testing.B) {
	input := strings.Repeat("12 * -3 / ~4 + ", 50) + "1"
	for i := 0; i < b.N; i++ {
		if _, err := Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseLongPrefixRun(b *testing.B) {
	input := strings.Repeat("-", 10000) + "1"
	for i := 0; i < b.N; i++ {
		if _, err := Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}
