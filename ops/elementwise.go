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

// Package ops implements the numeric routines the rewritten expressions call
// into: the operation table pairing an in-place and an out-of-place form for
// each recognized name, elementwise combinators, allocation helpers, the
// matrix-multiply routine with its per-representation override hook, and the
// scaled-add routines.
package ops

import (
	"github.com/pkg/errors"
	"github.com/arraykit/bang/value"
)

// ElemOp combines two scalar elements.
type ElemOp func(a, b value.Elem) (value.Elem, error)

// Add returns the elementwise sum of a and b as a new value. Scalars
// broadcast against arrays.
func Add(a, b value.Value) (value.Value, error) { return binary(a, b, value.AddElem) }

// Sub returns the elementwise difference of a and b as a new value.
func Sub(a, b value.Value) (value.Value, error) { return binary(a, b, value.SubElem) }

// Mul returns the elementwise product of a and b as a new value.
func Mul(a, b value.Value) (value.Value, error) { return binary(a, b, value.MulElem) }

// Quo returns the elementwise quotient of a and b as a new value.
func Quo(a, b value.Value) (value.Value, error) { return binary(a, b, value.QuoElem) }

// AddInPlace applies target[i] += rhs[i] through indexed assignment.
func AddInPlace(target, rhs value.Value) error { return compound(target, rhs, value.AddElem) }

// SubInPlace applies target[i] -= rhs[i] through indexed assignment.
func SubInPlace(target, rhs value.Value) error { return compound(target, rhs, value.SubElem) }

// MulInPlace applies target[i] *= rhs[i] through indexed assignment.
func MulInPlace(target, rhs value.Value) error { return compound(target, rhs, value.MulElem) }

// QuoInPlace applies target[i] /= rhs[i] through indexed assignment.
func QuoInPlace(target, rhs value.Value) error { return compound(target, rhs, value.QuoElem) }

// CopyInto writes the elements of src into target through indexed
// assignment and returns target.
func CopyInto(target, src value.Value) (value.Value, error) {
	dst, err := asMutableArray(target)
	if err != nil {
		return nil, err
	}
	sa, err := asArray(src)
	if err != nil {
		return nil, err
	}
	if dst.Len() != sa.Len() {
		return nil, errors.Errorf("cannot copy %d elements into %d", sa.Len(), dst.Len())
	}
	set := target.(value.Setter)
	for i := 0; i < sa.Len(); i++ {
		if err := set.SetAt(i, sa.At(i)); err != nil {
			return nil, err
		}
	}
	return target, nil
}

// FillInto writes rhs elementwise into target and returns target. A scalar
// rhs broadcasts over every cell.
func FillInto(target, rhs value.Value) (value.Value, error) {
	if _, ok := rhs.(value.Elem); !ok {
		return CopyInto(target, rhs)
	}
	dst, err := asMutableArray(target)
	if err != nil {
		return nil, err
	}
	set := target.(value.Setter)
	e := rhs.(value.Elem)
	for i := 0; i < dst.Len(); i++ {
		if err := set.SetAt(i, e); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func binary(a, b value.Value, op ElemOp) (value.Value, error) {
	ea, aScalar := a.(value.Elem)
	eb, bScalar := b.(value.Elem)
	if aScalar && bScalar {
		return op(ea, eb)
	}
	if aScalar || bScalar {
		arr, scalar, flip := b.(value.Array), ea, false
		if bScalar {
			arr, scalar, flip = a.(value.Array), eb, true
		}
		out := make([]value.Elem, arr.Len())
		for i := range out {
			x, y := scalar, arr.At(i)
			if flip {
				x, y = arr.At(i), scalar
			}
			e, err := op(x, y)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return value.NewDense(arr.Shape(), out)
	}
	aa, err := asArray(a)
	if err != nil {
		return nil, err
	}
	ba, err := asArray(b)
	if err != nil {
		return nil, err
	}
	if !value.SameShape(aa, ba) {
		return nil, errors.Errorf("shape mismatch: %v and %v", aa.Shape(), ba.Shape())
	}
	out := make([]value.Elem, aa.Len())
	for i := range out {
		e, err := op(aa.At(i), ba.At(i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return value.NewDense(aa.Shape(), out)
}

func compound(target, rhs value.Value, op ElemOp) error {
	dst, err := asMutableArray(target)
	if err != nil {
		return err
	}
	set := target.(value.Setter)
	if e, ok := rhs.(value.Elem); ok {
		for i := 0; i < dst.Len(); i++ {
			v, err := op(dst.At(i), e)
			if err != nil {
				return err
			}
			if err := set.SetAt(i, v); err != nil {
				return err
			}
		}
		return nil
	}
	ra, err := asArray(rhs)
	if err != nil {
		return err
	}
	if !value.SameShape(dst, ra) {
		return errors.Errorf("shape mismatch: %v and %v", dst.Shape(), ra.Shape())
	}
	for i := 0; i < dst.Len(); i++ {
		v, err := op(dst.At(i), ra.At(i))
		if err != nil {
			return err
		}
		if err := set.SetAt(i, v); err != nil {
			return err
		}
	}
	return nil
}

func asArray(v value.Value) (value.Array, error) {
	a, ok := v.(value.Array)
	if !ok {
		return nil, errors.Errorf("%T is not an array", v)
	}
	return a, nil
}

func asMutableArray(v value.Value) (value.Array, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(value.Setter); !ok {
		return nil, errors.Errorf("%T has no indexed assignment", v)
	}
	return a, nil
}
