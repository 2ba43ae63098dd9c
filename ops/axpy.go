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

// Axpy computes y = alpha*x + y in place and returns y. The fast path runs
// for dense targets; any other writable target goes through the elementwise
// formula one index at a time.
func Axpy(alpha, x, y value.Value) (value.Value, error) {
	return axpby(alpha, x, value.Float(1), y)
}

// Axpby computes y = alpha*x + beta*y in place and returns y.
func Axpby(alpha, x, beta, y value.Value) (value.Value, error) {
	return axpby(alpha, x, beta, y)
}

// AxpyValue computes alpha*x + y as a new value, touching neither operand.
func AxpyValue(alpha, x, y value.Value) (value.Value, error) {
	ax, err := Mul(alpha, x)
	if err != nil {
		return nil, err
	}
	return Add(ax, y)
}

// AxpbyValue computes alpha*x + beta*y as a new value.
func AxpbyValue(alpha, x, beta, y value.Value) (value.Value, error) {
	ax, err := Mul(alpha, x)
	if err != nil {
		return nil, err
	}
	by, err := Mul(beta, y)
	if err != nil {
		return nil, err
	}
	return Add(ax, by)
}

func axpby(alpha, x, beta, y value.Value) (value.Value, error) {
	a, ok := alpha.(value.Elem)
	if !ok {
		return nil, errors.Errorf("scale factor must be a scalar, got %T", alpha)
	}
	b, ok := beta.(value.Elem)
	if !ok {
		return nil, errors.Errorf("scale factor must be a scalar, got %T", beta)
	}
	ya, err := asMutableArray(y)
	if err != nil {
		return nil, err
	}
	xa, err := asArray(x)
	if err != nil {
		return nil, err
	}
	if xa.Len() != ya.Len() {
		return nil, errors.Errorf("length mismatch: %d and %d", xa.Len(), ya.Len())
	}
	set := y.(value.Setter)
	for i := 0; i < ya.Len(); i++ {
		ax, err := value.MulElem(a, xa.At(i))
		if err != nil {
			return nil, err
		}
		by, err := value.MulElem(b, ya.At(i))
		if err != nil {
			return nil, err
		}
		e, err := value.AddElem(ax, by)
		if err != nil {
			return nil, err
		}
		if err := set.SetAt(i, e); err != nil {
			return nil, err
		}
	}
	return y, nil
}
