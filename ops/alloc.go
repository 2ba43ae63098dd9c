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
	"github.com/pkg/errors"
	"github.com/arraykit/bang/value"
)

// Copy returns a new mutable array holding the elements of src.
func Copy(src value.Value) (value.Value, error) {
	sa, err := asArray(src)
	if err != nil {
		return nil, err
	}
	out := make([]value.Elem, sa.Len())
	for i := range out {
		out[i] = sa.At(i)
	}
	return value.NewDense(sa.Shape(), out)
}

// Zero returns a new mutable array of the shape of src filled with zeros of
// the element kind of src.
func Zero(src value.Value) (value.Value, error) {
	sa, err := asArray(src)
	if err != nil {
		return nil, err
	}
	return value.NewDenseZero(sa.Shape(), protoElem(sa)), nil
}

// Similar returns a new mutable array of the shape and element kind of src.
// Arbitrary-precision buffers are filled with fresh zeros: allocation alone
// leaves reference cells unset and later indexed reads would fail.
func Similar(src value.Value) (value.Value, error) {
	sa, err := asArray(src)
	if err != nil {
		return nil, err
	}
	return value.NewDenseZero(sa.Shape(), protoElem(sa)), nil
}

// Flatten returns a new rank-1 mutable array holding the elements of a in
// row-major order.
func Flatten(a value.Value) (value.Value, error) {
	aa, err := asArray(a)
	if err != nil {
		return nil, err
	}
	out := make([]value.Elem, aa.Len())
	for i := range out {
		out[i] = aa.At(i)
	}
	return value.NewDense([]int{aa.Len()}, out)
}

// Restructure reshapes flat data back into the shape of shapeSrc.
func Restructure(shapeSrc, flat value.Value) (value.Value, error) {
	ref, err := asArray(shapeSrc)
	if err != nil {
		return nil, err
	}
	fa, err := asArray(flat)
	if err != nil {
		return nil, err
	}
	if ref.Len() != fa.Len() {
		return nil, errors.Errorf("cannot restructure %d elements into shape %v", fa.Len(), ref.Shape())
	}
	out := make([]value.Elem, fa.Len())
	for i := range out {
		out[i] = fa.At(i)
	}
	return value.NewDense(ref.Shape(), out)
}

// protoElem returns a representative element of a, used to pick the element
// kind of freshly allocated buffers.
func protoElem(a value.Array) value.Elem {
	for i := 0; i < a.Len(); i++ {
		if e := a.At(i); e != nil {
			return e
		}
	}
	return value.Float(0)
}
