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

package ops

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/arraykit/bang/base/sync"
	"github.com/arraykit/bang/value"
)

// MatMulFunc computes the matrix product a×b as a new value.
type MatMulFunc func(a, b value.Value) (value.Value, error)

var matmulOverrides sync.Map[reflect.Type, MatMulFunc]

// RegisterMatMul installs a multiply specialized for the concrete
// representation of sample as the left operand. The generic entry points
// defer to it; the core dispatch logic never knows the override exists.
func RegisterMatMul(sample value.Value, fn MatMulFunc) {
	matmulOverrides.Store(reflect.TypeOf(sample), fn)
}

func matmulOverride(a value.Value) (MatMulFunc, bool) {
	return matmulOverrides.Load(reflect.TypeOf(a))
}

// MatMul returns the matrix product a×b as a new value, consulting the
// per-representation override registry before the generic routine.
func MatMul(a, b value.Value) (value.Value, error) {
	if fn, ok := matmulOverride(a); ok {
		return fn(a, b)
	}
	return matmulGeneric(a, b)
}

// MatMulInto computes a×b into dst through indexed assignment and returns
// dst. Overridden representations multiply out of place and copy in.
func MatMulInto(dst, a, b value.Value) (value.Value, error) {
	if fn, ok := matmulOverride(a); ok {
		prod, err := fn(a, b)
		if err != nil {
			return nil, err
		}
		return CopyInto(dst, prod)
	}
	prod, err := matmulGeneric(a, b)
	if err != nil {
		return nil, err
	}
	return CopyInto(dst, prod)
}

// MulAddInto computes dst += a×b in place and returns dst.
func MulAddInto(dst, a, b value.Value) (value.Value, error) {
	prod, err := MatMul(a, b)
	if err != nil {
		return nil, err
	}
	da, err := asMutableArray(dst)
	if err != nil {
		return nil, err
	}
	pa, err := asArray(prod)
	if err != nil {
		return nil, err
	}
	if da.Len() != pa.Len() {
		return nil, errors.Errorf("cannot accumulate %d elements into %d", pa.Len(), da.Len())
	}
	set := dst.(value.Setter)
	for i := 0; i < da.Len(); i++ {
		e, err := value.AddElem(da.At(i), pa.At(i))
		if err != nil {
			return nil, err
		}
		if err := set.SetAt(i, e); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func matmulGeneric(a, b value.Value) (value.Value, error) {
	aa, err := asArray(a)
	if err != nil {
		return nil, err
	}
	ba, err := asArray(b)
	if err != nil {
		return nil, err
	}
	am, ak, err := axes2(aa, true)
	if err != nil {
		return nil, err
	}
	bk, bn, err := axes2(ba, false)
	if err != nil {
		return nil, err
	}
	if ak != bk {
		return nil, errors.Errorf("inner axes mismatch: %v × %v", aa.Shape(), ba.Shape())
	}
	out := make([]value.Elem, am*bn)
	for i := 0; i < am; i++ {
		for j := 0; j < bn; j++ {
			var acc value.Elem
			for k := 0; k < ak; k++ {
				p, err := value.MulElem(aa.At(i*ak+k), ba.At(k*bn+j))
				if err != nil {
					return nil, err
				}
				if acc == nil {
					acc = p
					continue
				}
				if acc, err = value.AddElem(acc, p); err != nil {
					return nil, err
				}
			}
			if acc == nil {
				acc = value.Float(0)
			}
			out[i*bn+j] = acc
		}
	}
	shape := matmulShape(aa.Shape(), ba.Shape(), am, bn)
	return value.NewDense(shape, out)
}

// axes2 views an array as a matrix: a rank-1 value is a row vector on the
// left and a column vector on the right. Ranks above 2 are rejected.
func axes2(a value.Array, left bool) (rows, cols int, err error) {
	switch shape := a.Shape(); len(shape) {
	case 1:
		if left {
			return 1, shape[0], nil
		}
		return shape[0], 1, nil
	case 2:
		return shape[0], shape[1], nil
	default:
		return 0, 0, errors.Errorf("rank %d not supported in matrix multiply", len(shape))
	}
}

func matmulShape(as, bs []int, m, n int) []int {
	if len(as) == 1 && len(bs) == 1 {
		return []int{m * n}
	}
	if len(bs) == 1 {
		return []int{m}
	}
	if len(as) == 1 {
		return []int{n}
	}
	return []int{m, n}
}
