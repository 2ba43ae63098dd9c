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

package interp

import (
	"github.com/pkg/errors"
	"github.com/arraykit/bang/ir"
	"github.com/arraykit/bang/value"
)

// evalElementwiseApply evaluates an @. form. Wrapping an assignment writes
// the broadcasted right-hand side into the existing target through indexed
// assignment; wrapping a bare expression produces the broadcasted value.
func evalElementwiseApply(env *Env, x ir.Expr) (value.Value, error) {
	if a, ok := x.(*ir.Assign); ok && a.Tok == ir.ASSIGN {
		target, ok := env.Lookup(a.Lhs.Name)
		if !ok {
			return nil, errors.Errorf("undefined: %s", a.Lhs.Name)
		}
		dst, ok := target.(value.Setter)
		if !ok {
			return nil, errors.Errorf("%T has no indexed assignment", target)
		}
		arr, ok := target.(value.Array)
		if !ok {
			return nil, errors.Errorf("%T is not an array", target)
		}
		for i := 0; i < arr.Len(); i++ {
			e, err := evalAt(env, a.Rhs, i)
			if err != nil {
				return nil, err
			}
			if err := dst.SetAt(i, e); err != nil {
				return nil, err
			}
		}
		return target, nil
	}
	proto, err := broadcastShape(env, x)
	if err != nil {
		return nil, err
	}
	out := make([]value.Elem, proto.Len())
	for i := range out {
		if out[i], err = evalAt(env, x, i); err != nil {
			return nil, err
		}
	}
	return value.NewDense(proto.Shape(), out)
}

// broadcastShape finds the array giving the broadcast extent: every array
// identifier in x must share one shape.
func broadcastShape(env *Env, x ir.Expr) (value.Array, error) {
	var proto value.Array
	var walk func(ir.Expr) error
	walk = func(e ir.Expr) error {
		switch n := e.(type) {
		case *ir.Ident:
			v, ok := env.Lookup(n.Name)
			if !ok {
				return errors.Errorf("undefined: %s", n.Name)
			}
			arr, ok := v.(value.Array)
			if !ok {
				return nil
			}
			if proto == nil {
				proto = arr
				return nil
			}
			if !value.SameShape(proto, arr) {
				return errors.Errorf("shape mismatch in elementwise apply: %v and %v", proto.Shape(), arr.Shape())
			}
		case *ir.Binary:
			if err := walk(n.X); err != nil {
				return err
			}
			return walk(n.Y)
		case *ir.Number:
		default:
			return errors.Errorf("%s not supported in elementwise apply", e)
		}
		return nil
	}
	if err := walk(x); err != nil {
		return nil, err
	}
	if proto == nil {
		return nil, errors.Errorf("no array operand in elementwise apply of %s", x)
	}
	return proto, nil
}

// evalAt evaluates x as a scalar at broadcast index i: array identifiers
// read their i-th element, scalars pass through.
func evalAt(env *Env, x ir.Expr, i int) (value.Elem, error) {
	switch e := x.(type) {
	case *ir.Number:
		return value.Float(e.Val), nil
	case *ir.Ident:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return nil, errors.Errorf("undefined: %s", e.Name)
		}
		if arr, ok := v.(value.Array); ok {
			if i >= arr.Len() {
				return nil, errors.Errorf("index %d out of range for %s", i, e.Name)
			}
			return arr.At(i), nil
		}
		if el, ok := v.(value.Elem); ok {
			return el, nil
		}
		return nil, errors.Errorf("%s is not usable in elementwise apply", e.Name)
	case *ir.Binary:
		a, err := evalAt(env, e.X, i)
		if err != nil {
			return nil, err
		}
		b, err := evalAt(env, e.Y, i)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ir.ADD:
			return value.AddElem(a, b)
		case ir.SUB:
			return value.SubElem(a, b)
		case ir.MUL:
			return value.MulElem(a, b)
		case ir.QUO:
			return value.QuoElem(a, b)
		}
		return nil, errors.Errorf("operator %s not supported in elementwise apply", e.Op)
	}
	return nil, errors.Errorf("%s not supported in elementwise apply", x)
}
