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

// Package protoexport converts expression trees to and from
// google.protobuf.Value so they can be emitted as textproto or JSON.
//
// Each node becomes a struct with a "kind" field naming the variant:
//
//	{"kind": "NumberLiteral", "value": 2}
//	{"kind": "Negate", "operand": {...}}
//	{"kind": "Add", "left": {...}, "right": {...}}
//
// Literal values that are not finite (digit runs beyond float64 range) are
// written as strings such as "+Inf" since JSON has no infinity.
package protoexport

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/exprtree/core/expr"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used in the encoded form
const (
	FieldKind    = "kind"
	FieldValue   = "value"
	FieldOperand = "operand"
	FieldLeft    = "left"
	FieldRight   = "right"
)

const (
	// MaxDepth is the deepest tree MarshalText, MarshalJSON and
	// UnmarshalJSON accept. The protobuf encoders recurse once per message.
	MaxDepth = 50_000

	// IndentDepth is the deepest tree written multi-line; deeper trees are
	// written compactly since indentation grows with the square of depth.
	IndentDepth = 1000

	// Each tree level is a Value holding a Struct; the scalar fields of a
	// leaf add one more.
	messagesPerLevel = 2
)

// ErrTooDeep is returned for trees nested deeper than MaxDepth
var ErrTooDeep = errors.New("tree too deep to encode")

// CheckDepth fails with ErrTooDeep if n is nested deeper than MaxDepth
func CheckDepth(n expr.Node) error {
	if d := expr.Depth(n); d > MaxDepth {
		return fmt.Errorf("%w: depth %d, limit %d", ErrTooDeep, d, MaxDepth)
	}
	return nil
}

// ToValue encodes n as a google.protobuf.Value
func ToValue(n expr.Node) *structpb.Value {
	type frame struct {
		node   expr.Node
		fields map[string]*structpb.Value
	}
	root := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	stack := []frame{{n, root.Fields}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.fields[FieldKind] = structpb.NewStringValue(f.node.Kind().String())
		attach := func(name string, child expr.Node) {
			s := &structpb.Struct{Fields: map[string]*structpb.Value{}}
			f.fields[name] = structpb.NewStructValue(s)
			stack = append(stack, frame{child, s.Fields})
		}

		switch node := f.node.(type) {
		case *expr.NumberLit:
			if math.IsInf(node.Value, 0) || math.IsNaN(node.Value) {
				f.fields[FieldValue] = structpb.NewStringValue(expr.FormatNumber(node.Value))
			} else {
				f.fields[FieldValue] = structpb.NewNumberValue(node.Value)
			}
		case *expr.UnaryOp:
			attach(FieldOperand, node.Expr)
		case *expr.BinaryOp:
			attach(FieldLeft, node.Left)
			attach(FieldRight, node.Right)
		}
	}
	return structpb.NewStructValue(root)
}

// MarshalText renders n as textproto, multi-line unless n is deeper than
// IndentDepth
func MarshalText(n expr.Node) ([]byte, error) {
	if err := CheckDepth(n); err != nil {
		return nil, err
	}
	opts := prototext.MarshalOptions{}
	if expr.Depth(n) <= IndentDepth {
		opts.Multiline = true
		opts.Indent = "  "
	}
	return opts.Marshal(ToValue(n))
}

// MarshalJSON renders n as JSON, indented unless n is deeper than
// IndentDepth
func MarshalJSON(n expr.Node) ([]byte, error) {
	if err := CheckDepth(n); err != nil {
		return nil, err
	}
	opts := protojson.MarshalOptions{}
	if expr.Depth(n) <= IndentDepth {
		opts.Multiline = true
		opts.Indent = "  "
	}
	return opts.Marshal(ToValue(n))
}

// UnmarshalJSON decodes a tree previously written by MarshalJSON
func UnmarshalJSON(data []byte) (expr.Node, error) {
	var v structpb.Value
	opts := protojson.UnmarshalOptions{RecursionLimit: messagesPerLevel * (MaxDepth + 1)}
	if err := opts.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return FromValue(&v)
}

// FromValue decodes a google.protobuf.Value produced by ToValue
func FromValue(v *structpb.Value) (expr.Node, error) {
	// Nodes are collected in pre-order, then built in reverse so every
	// operand exists before the node that holds it.
	type entry struct {
		kind expr.NodeKind
		lit  expr.Node
		kids []int
	}
	type frame struct {
		value  *structpb.Value
		parent int
		slot   int
	}

	var entries []entry
	stack := []frame{{value: v, parent: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s := f.value.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("expected struct node, got %T", f.value.GetKind())
		}
		fields := s.GetFields()
		kindName := fields[FieldKind].GetStringValue()
		kind, ok := expr.ParseKind(kindName)
		if !ok {
			return nil, fmt.Errorf("unknown node kind %q", kindName)
		}

		e := entry{kind: kind}
		var names []string
		switch kind {
		case expr.KindNumber:
			lit, err := decodeNumber(fields[FieldValue])
			if err != nil {
				return nil, err
			}
			e.lit = lit
		case expr.KindNegate, expr.KindInvert:
			names = []string{FieldOperand}
		default:
			names = []string{FieldLeft, FieldRight}
		}
		for _, name := range names {
			if _, ok := fields[name]; !ok {
				return nil, fmt.Errorf("%s node is missing %q", kindName, name)
			}
		}

		idx := len(entries)
		e.kids = make([]int, len(names))
		entries = append(entries, e)
		if f.parent >= 0 {
			entries[f.parent].kids[f.slot] = idx
		}
		for i := len(names) - 1; i >= 0; i-- {
			stack = append(stack, frame{value: fields[names[i]], parent: idx, slot: i})
		}
	}

	built := make([]expr.Node, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		switch e.kind {
		case expr.KindNumber:
			built[i] = e.lit
		case expr.KindNegate:
			built[i] = expr.NewNegate(built[e.kids[0]])
		case expr.KindInvert:
			built[i] = expr.NewInvert(built[e.kids[0]])
		case expr.KindAdd:
			built[i] = expr.NewAdd(built[e.kids[0]], built[e.kids[1]])
		case expr.KindSubtract:
			built[i] = expr.NewSubtract(built[e.kids[0]], built[e.kids[1]])
		case expr.KindMultiply:
			built[i] = expr.NewMultiply(built[e.kids[0]], built[e.kids[1]])
		default:
			built[i] = expr.NewDivide(built[e.kids[0]], built[e.kids[1]])
		}
	}
	return built[0], nil
}

func decodeNumber(v *structpb.Value) (expr.Node, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return expr.NewNumber(k.NumberValue), nil
	case *structpb.Value_StringValue:
		f, err := strconv.ParseFloat(k.StringValue, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal value %q", k.StringValue)
		}
		return expr.NewNumber(f), nil
	}
	return nil, fmt.Errorf("NumberLiteral node is missing %q", FieldValue)
}
