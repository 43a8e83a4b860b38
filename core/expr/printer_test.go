/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package expr

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"7", "NumberLiteral(7)"},
		{"2+3*4", "Add(NumberLiteral(2), Multiply(NumberLiteral(3), NumberLiteral(4)))"},
		{"8/4/2", "Divide(Divide(NumberLiteral(8), NumberLiteral(4)), NumberLiteral(2))"},
		{"~~1 - -2", "Subtract(Invert(Invert(NumberLiteral(1))), Negate(NumberLiteral(2)))"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got.String() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got.String())
			}
		})
	}
}

func TestStringDeepTree(t *testing.T) {
	const depth = 3_000_000
	n, err := Parse(strings.Repeat("-", depth)+"1", WithMaxDepth(0))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	got := n.String()
	want := len("Negate(")*depth + len("NumberLiteral(1)") + depth
	if len(got) != want {
		t.Fatalf("expected %d bytes, got %d", want, len(got))
	}
	if !strings.HasPrefix(got, "Negate(Negate(") || !strings.HasSuffix(got, "NumberLiteral(1)))") {
		t.Errorf("unexpected ends %q ... %q", got[:20], got[len(got)-20:])
	}

	sum, err := Parse("1"+strings.Repeat("+2", 1_000_000), WithMaxDepth(0))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	got = sum.String()
	if !strings.HasPrefix(got, "Add(Add(") || !strings.HasSuffix(got, "NumberLiteral(2)), NumberLiteral(2))") ||
		!strings.Contains(got, "Add(NumberLiteral(1), NumberLiteral(2))") {
		t.Errorf("unexpected ends %q ... %q", got[:20], got[len(got)-60:])
	}
}

func TestTree(t *testing.T) {
	got, err := Parse("1 + -2 * 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	expected := strings.Join([]string{
		"Add",
		"├── NumberLiteral(1)",
		"└── Multiply",
		"    ├── Negate",
		"    │   └── NumberLiteral(2)",
		"    └── NumberLiteral(3)",
		"",
	}, "\n")
	if Tree(got) != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, Tree(got))
	}
}

func TestFlatten(t *testing.T) {
	got, err := Parse("~4/5")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lines := Flatten(got)
	wantKinds := []NodeKind{KindDivide, KindInvert, KindNumber, KindNumber}
	wantDepths := []int{0, 1, 2, 1}
	if len(lines) != len(wantKinds) {
		t.Fatalf("expected %d lines, got %d", len(wantKinds), len(lines))
	}
	for i, line := range lines {
		if line.Kind != wantKinds[i] || line.Depth != wantDepths[i] {
			t.Errorf("line %d: expected %v at depth %d, got %v at depth %d", i, wantKinds[i], wantDepths[i], line.Kind, line.Depth)
		}
	}
}

func TestDepthAndCount(t *testing.T) {
	tests := []struct {
		expr  string
		depth int
		count int
	}{
		{"1", 1, 1},
		{"---1", 4, 4},
		{"1+2*3", 3, 5},
		{"1*2+3*4", 3, 7},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if d := Depth(got); d != tt.depth {
				t.Errorf("expected depth %d, got %d", tt.depth, d)
			}
			if c := Count(got); c != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, c)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Node
		equal bool
	}{
		{"same literal", NewNumber(1), NewNumber(1), true},
		{"different literal", NewNumber(1), NewNumber(2), false},
		{"negate vs invert", NewNegate(NewNumber(1)), NewInvert(NewNumber(1)), false},
		{"add vs subtract", NewAdd(NewNumber(1), NewNumber(2)), NewSubtract(NewNumber(1), NewNumber(2)), false},
		{"associativity", NewDivide(NewDivide(NewNumber(8), NewNumber(4)), NewNumber(2)),
			NewDivide(NewNumber(8), NewDivide(NewNumber(4), NewNumber(2))), false},
		{"nested", NewMultiply(NewNegate(NewNumber(3)), NewNumber(4)), NewMultiply(NewNegate(NewNumber(3)), NewNumber(4)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Equal(tt.a, tt.b) != tt.equal {
				t.Errorf("Equal(%v, %v) = %v", tt.a, tt.b, !tt.equal)
			}
		})
	}
}

func TestKindNames(t *testing.T) {
	for k := KindNumber; k <= KindDivide; k++ {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, ok)
		}
	}
	if _, ok := ParseKind("Power"); ok {
		t.Error("expected unknown kind")
	}
}

func TestCaret(t *testing.T) {
	src := "1 +\n\t2 * x"
	_, err := Parse(src)
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	line, marker := Caret(src, perr)
	if line != "\t2 * x" {
		t.Errorf("unexpected line %q", line)
	}
	if marker != "\t    ^" {
		t.Errorf("unexpected marker %q", marker)
	}
}
