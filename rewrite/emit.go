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
	"go.uber.org/multierr"
	"github.com/arraykit/bang/ir"
)

// flatTemp is the identifier the matmul emitter binds a flattened target to.
const flatTemp = "__flat"

func ident(name string) *ir.Ident {
	return &ir.Ident{NamePos: ir.NoPos, Name: name}
}

func call(name string, args ...ir.Expr) *ir.Call {
	return &ir.Call{Fun: ident(name), Lparen: ir.NoPos, Args: args}
}

func assign(lhs *ir.Ident, rhs ir.Expr) *ir.Assign {
	return &ir.Assign{Lhs: lhs, TokPos: ir.NoPos, Tok: ir.ASSIGN, Rhs: rhs}
}

func binary(x ir.Expr, op ir.Token, y ir.Expr) *ir.Binary {
	return &ir.Binary{X: x, OpPos: ir.NoPos, Op: op, Y: y}
}

// emitAlloc handles a = copy(b), a = zero(b) and a = similar(b). The
// capability probe runs on the source: a mutable source gets the real
// allocating operation, an immutable one is safe to share, so the target
// aliases it and no allocation happens.
func emitAlloc(shape Shape, e *ir.Assign) (ir.Expr, error) {
	rhs := e.Rhs.(*ir.Call)
	src := rhs.Args[0].(*ir.Ident)
	return &ir.Cond{
		If:   &ir.CapTest{X: src},
		Then: []ir.Expr{assign(e.Lhs, call(rhs.Fun.Name, src))},
		Else: []ir.Expr{assign(e.Lhs, src)},
	}, nil
}

// emitAxpy handles axpy!(α, x, y) and axpby!(α, x, β, y). The in-place
// branch keeps the guarded scaled-add routine; the fallback rebinds the
// target to the elementwise formula.
func emitAxpy(e *ir.Call) (ir.Expr, error) {
	var want int
	switch e.Fun.Name {
	case "axpy!":
		want = 3
	case "axpby!":
		want = 4
	}
	if len(e.Args) != want {
		return nil, errors.Wrapf(ErrMalformedForm, "%s expects %d arguments, got %d in %s", e.Fun.Name, want, len(e.Args), e)
	}
	y, ok := e.Args[len(e.Args)-1].(*ir.Ident)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedForm, "last argument of %s must be an identifier in %s", e.Fun.Name, e)
	}
	var formula ir.Expr
	if want == 3 {
		formula = binary(binary(e.Args[0], ir.MUL, e.Args[1]), ir.ADD, y)
	} else {
		formula = binary(
			binary(e.Args[0], ir.MUL, e.Args[1]),
			ir.ADD,
			binary(e.Args[2], ir.MUL, y),
		)
	}
	return &ir.Cond{
		If:   &ir.CapTest{X: y},
		Then: []ir.Expr{call(e.Fun.Name, e.Args...)},
		Else: []ir.Expr{assign(y, formula)},
	}, nil
}

// emitGeneric handles every operation-table shape. The in-place versus
// out-of-place choice lives in the looked-up pair itself: the emitted code
// is a single dispatch call taking the capability tag first, the operation
// name second, then the target and the remaining operands.
func emitGeneric(x ir.Expr) (ir.Expr, error) {
	switch e := x.(type) {
	case *ir.Call:
		if len(e.Args) == 0 {
			return nil, errors.Wrapf(ErrMalformedForm, "%s needs a target argument in %s", e.Fun.Name, e)
		}
		target, ok := e.Args[0].(*ir.Ident)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedForm, "target of %s must be an identifier in %s", e.Fun.Name, e)
		}
		return assign(target, dispatchCall(e.Fun.Name, target, e.Args[1:])), nil
	case *ir.Assign:
		rhs := e.Rhs.(*ir.Call)
		args := rhs.Args
		// A call spelling its target explicitly, y = copyto!(y, x), names
		// the assignment target twice. The duplicate is dropped so both
		// spellings emit the same dispatch.
		if len(args) > 0 {
			if first, ok := args[0].(*ir.Ident); ok && first.Name == e.Lhs.Name {
				args = args[1:]
			}
		}
		return assign(e.Lhs, dispatchCall(rhs.Fun.Name, e.Lhs, args)), nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "cannot rewrite %s", x)
}

func dispatchCall(name string, target *ir.Ident, rest []ir.Expr) *ir.Call {
	args := make([]ir.Expr, 0, len(rest)+3)
	args = append(args, &ir.CapTest{X: target}, &ir.Str{ValPos: ir.NoPos, Val: name}, target)
	args = append(args, rest...)
	return call("dispatch", args...)
}

// emitBroadcast handles the broadcast-assign family. The plain .= fallback
// replaces the whole value, no elementwise operator retained; the compound
// forms fall back to the matching elementwise binary operator.
func emitBroadcast(e *ir.Assign) (ir.Expr, error) {
	var fallback ir.Expr
	if e.Tok == ir.BCASTASSIGN {
		fallback = e.Rhs
	} else {
		fallback = binary(e.Lhs, e.Tok.Elementwise(), e.Rhs)
	}
	return &ir.Cond{
		If:   &ir.CapTest{X: e.Lhs},
		Then: []ir.Expr{e},
		Else: []ir.Expr{assign(e.Lhs, fallback)},
	}, nil
}

// emitElementwiseApply handles @. a = rhs: elementwise-apply assignment into
// the target in place, or rebinding the target to the broadcasted value.
func emitElementwiseApply(m *ir.Macro) (ir.Expr, error) {
	a := m.X.(*ir.Assign)
	return &ir.Cond{
		If:   &ir.CapTest{X: a.Lhs},
		Then: []ir.Expr{m},
		Else: []ir.Expr{assign(a.Lhs, &ir.Macro{At: ir.NoPos, Name: ".", X: a.Rhs})},
	}, nil
}

// emitMatMul handles a = b × c and a += b × c, in four sub-variants
// depending on which multiply operand carries a vec() flatten marker. Both
// operands flattened is degenerate: the markers are redundant and the form
// falls through to the unflattened path.
func emitMatMul(e *ir.Assign) (ir.Expr, error) {
	rhs := e.Rhs.(*ir.Binary)
	left, leftFlat, errL := matmulOperand(rhs.X)
	right, rightFlat, errR := matmulOperand(rhs.Y)
	if err := multierr.Combine(errL, errR); err != nil {
		return nil, errors.Wrapf(ErrMalformedForm, "in %s: %s", e, err)
	}
	if leftFlat && rightFlat {
		leftFlat, rightFlat = false, false
	}
	fused := e.Tok == ir.ADDASSIGN
	mulInto := "mul!"
	if fused {
		mulInto = "muladd!"
	}

	// Fallback operands: flatten markers survive as explicit calls.
	fbLeft, fbRight := left, right
	if leftFlat {
		fbLeft = call("flatten", left)
	}
	if rightFlat {
		fbRight = call("flatten", right)
	}
	product := ir.Expr(binary(fbLeft, ir.CROSS, fbRight))
	restructured := ir.Expr(call("restructure", e.Lhs, product))
	if fused {
		restructured = binary(e.Lhs, ir.ADD, restructured)
	}
	elseBranch := []ir.Expr{assign(e.Lhs, restructured)}

	var thenBranch []ir.Expr
	if !leftFlat && !rightFlat {
		thenBranch = []ir.Expr{call(mulInto, e.Lhs, left, right)}
	} else {
		// A flattened operand forces the multiply through a flattened copy
		// of the target, restructured back into the target afterwards.
		tmp := ident(flatTemp)
		thenBranch = []ir.Expr{
			assign(tmp, call("flatten", e.Lhs)),
			call(mulInto, tmp, fbLeft, fbRight),
			call("copyto!", e.Lhs, call("restructure", e.Lhs, tmp)),
		}
	}
	return &ir.Cond{
		If:   &ir.CapTest{X: e.Lhs},
		Then: thenBranch,
		Else: elseBranch,
	}, nil
}

// matmulOperand strips an optional vec() flatten marker from a multiply
// operand.
func matmulOperand(x ir.Expr) (ir.Expr, bool, error) {
	switch e := x.(type) {
	case *ir.Ident:
		return e, false, nil
	case *ir.Call:
		if e.Fun.Name != "vec" {
			return nil, false, errors.Errorf("%s is not a multiply operand", e)
		}
		if len(e.Args) != 1 {
			return nil, false, errors.Errorf("vec expects 1 argument, got %d", len(e.Args))
		}
		if _, ok := e.Args[0].(*ir.Ident); !ok {
			return nil, false, errors.Errorf("vec argument must be an identifier in %s", e)
		}
		return e.Args[0], true, nil
	}
	return nil, false, errors.Errorf("%s is not a multiply operand", x)
}
