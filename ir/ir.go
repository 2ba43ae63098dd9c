// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir is the expression tree consumed and produced by the rewriter.
// The structure and semantic is modeled after the go/ast package: nodes are
// immutable once built, carry the position of their source token, and render
// back to a canonical textual form with String.
package ir

import (
	"fmt"
	"strings"
)

// Pos is a byte offset into the source a node was parsed from.
// Synthetic nodes built by the rewriter use NoPos.
type Pos int

// NoPos marks a node with no source position.
const NoPos Pos = -1

// IsValid reports whether the position points into source.
func (p Pos) IsValid() bool { return p >= 0 }

type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()

		// Pos returns the position of the first token of the node.
		Pos() Pos
	}

	// Expr is a node that can appear as an operand or a statement.
	Expr interface {
		Node
		fmt.Stringer
	}
)

// Ident is a name reference.
type Ident struct {
	NamePos Pos
	Name    string
}

// Number is a numeric literal.
type Number struct {
	ValPos Pos
	Raw    string
	Val    float64
}

// Str is a string literal. The parser never produces one; the emitter uses
// them to pass operation names to the dispatch builtin.
type Str struct {
	ValPos Pos
	Val    string
}

// Call is a call form f(args...). Identifiers ending in "!" are allowed as
// call heads.
type Call struct {
	Fun    *Ident
	Lparen Pos
	Args   []Expr
}

// Assign covers every assignment spelling of the grammar. Tok distinguishes
// plain assignment, the fused accumulate +=, and the five broadcast-assign
// operators.
type Assign struct {
	Lhs    *Ident
	TokPos Pos
	Tok    Token
	Rhs    Expr
}

// Binary is an infix operator application, including the matrix-multiply
// operator Cross.
type Binary struct {
	X     Expr
	OpPos Pos
	Op    Token
	Y     Expr
}

// Macro is an at-prefixed macro invocation wrapping a statement. The
// elementwise-apply form @. has Name ".".
type Macro struct {
	At   Pos
	Name string
	X    Expr
}

// Cond is the capability-dispatch conditional built by the emitter. It is
// never produced by the parser.
type Cond struct {
	If   Expr
	Then []Expr
	Else []Expr
}

// CapTest is the runtime capability probe on a value. Evaluates to true when
// the operand classifies as mutable.
type CapTest struct {
	X Expr
}

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*Number)(nil)
	_ Expr = (*Str)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Macro)(nil)
	_ Expr = (*Cond)(nil)
	_ Expr = (*CapTest)(nil)
)

func (*Ident) node()   {}
func (*Number) node()  {}
func (*Str) node()     {}
func (*Call) node()    {}
func (*Assign) node()  {}
func (*Binary) node()  {}
func (*Macro) node()   {}
func (*Cond) node()    {}
func (*CapTest) node() {}

// Pos returns the position of the identifier.
func (x *Ident) Pos() Pos { return x.NamePos }

// Pos returns the position of the literal.
func (x *Number) Pos() Pos { return x.ValPos }

// Pos returns the position of the literal.
func (x *Str) Pos() Pos { return x.ValPos }

// Pos returns the position of the call head.
func (x *Call) Pos() Pos { return x.Fun.Pos() }

// Pos returns the position of the assignment target.
func (x *Assign) Pos() Pos { return x.Lhs.Pos() }

// Pos returns the position of the left operand.
func (x *Binary) Pos() Pos { return x.X.Pos() }

// Pos returns the position of the at sign.
func (x *Macro) Pos() Pos { return x.At }

// Pos returns the position of the condition.
func (x *Cond) Pos() Pos { return x.If.Pos() }

// Pos returns the position of the probed operand.
func (x *CapTest) Pos() Pos { return x.X.Pos() }

func (x *Ident) String() string { return x.Name }

func (x *Number) String() string {
	if x.Raw != "" {
		return x.Raw
	}
	return fmt.Sprintf("%v", x.Val)
}

func (x *Str) String() string { return fmt.Sprintf("%q", x.Val) }

func (x *Call) String() string {
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = a.String()
	}
	return x.Fun.Name + "(" + strings.Join(args, ", ") + ")"
}

func (x *Assign) String() string {
	return x.Lhs.Name + " " + x.Tok.String() + " " + x.Rhs.String()
}

func (x *Binary) String() string {
	return "(" + x.X.String() + " " + x.Op.String() + " " + x.Y.String() + ")"
}

func (x *Macro) String() string {
	if x.Name == "." {
		return "@. " + x.X.String()
	}
	return "@" + x.Name + " " + x.X.String()
}

func (x *Cond) String() string {
	var s strings.Builder
	s.WriteString("if " + x.If.String() + " { ")
	writeSeq(&s, x.Then)
	s.WriteString(" } else { ")
	writeSeq(&s, x.Else)
	s.WriteString(" }")
	return s.String()
}

func (x *CapTest) String() string { return "canmutate(" + x.X.String() + ")" }

func writeSeq(s *strings.Builder, exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			s.WriteString("; ")
		}
		s.WriteString(e.String())
	}
}
