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

package rewrite

import (
	"github.com/pkg/errors"
	"github.com/arraykit/bang/ir"
	"github.com/arraykit/bang/ops"
)

// Classify returns the shape of an expression under the default options.
// Classification is pure: it inspects syntax only and never evaluates user
// expressions. The same expression always yields the same shape.
func Classify(x ir.Expr) Shape {
	shape, _, _ := classify(DefaultOptions(), x, 0)
	return shape
}

// classify matches x against the supported shapes, most specific first, and
// commits to the first match. It returns the matched shape together with the
// expression the emitter should consume, which differs from x only when
// macro expansion took place.
//
// The order is load-bearing: a = f(b, args...) is a superset pattern of
// several earlier forms, and the broadcast-assign family is matched last
// because .= has no operation-table entry and is recognized structurally.
func classify(opts Options, x ir.Expr, depth int) (Shape, ir.Expr, error) {
	if depth > opts.MaxMacroDepth {
		return Unsupported, x, errors.Wrapf(ErrMacroExpansion, "depth %d exceeded while expanding %s", opts.MaxMacroDepth, x)
	}
	switch e := x.(type) {
	case *ir.Call:
		// Scaled-add calls are bespoke and matched before the table.
		switch e.Fun.Name {
		case "axpy!", "axpby!":
			return AxpyAssign, x, nil
		}
		if _, ok := ops.Lookup(e.Fun.Name); ok {
			return GenericOpAssign, x, nil
		}
	case *ir.Assign:
		switch {
		case e.Tok == ir.ASSIGN:
			if shape, ok := classifyAssignRHS(e); ok {
				return shape, x, nil
			}
		case e.Tok == ir.ADDASSIGN:
			if bin, ok := e.Rhs.(*ir.Binary); ok && bin.Op == ir.CROSS && !opts.NoFusedAccumulate {
				return MatMulAssign, x, nil
			}
		case e.Tok.IsBroadcastAssign():
			return BroadcastAssign, x, nil
		}
	case *ir.Macro:
		if e.Name == "." {
			if a, ok := e.X.(*ir.Assign); ok && a.Tok == ir.ASSIGN {
				return ElementwiseApplyAssign, x, nil
			}
			return Unsupported, x, nil
		}
		fn, ok := expanderFor(e.Name)
		if !ok {
			return Unsupported, x, nil
		}
		expanded, err := fn(e.X)
		if err != nil {
			return Unsupported, x, errors.Wrapf(err, "expanding @%s", e.Name)
		}
		return classify(opts, expanded, depth+1)
	}
	return Unsupported, x, nil
}

// classifyAssignRHS matches the right-hand side of a plain assignment.
func classifyAssignRHS(e *ir.Assign) (Shape, bool) {
	switch rhs := e.Rhs.(type) {
	case *ir.Call:
		// The exact two-identifier allocation forms come first: they are
		// special-cased independently of the operation table.
		if len(rhs.Args) == 1 {
			if _, isIdent := rhs.Args[0].(*ir.Ident); isIdent {
				switch rhs.Fun.Name {
				case "copy":
					return CopyOf, true
				case "zero":
					return ZeroOf, true
				case "similar":
					return SimilarOf, true
				}
			}
		}
		if _, ok := ops.Lookup(rhs.Fun.Name); ok {
			return GenericOpAssign, true
		}
	case *ir.Binary:
		if rhs.Op == ir.CROSS {
			return MatMulAssign, true
		}
	}
	return Unsupported, false
}
