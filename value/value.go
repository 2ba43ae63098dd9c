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

// Package value defines the runtime array values the rewritten expressions
// operate on, and the capability trait deciding which branch of a rewrite
// runs for a given value.
package value

import (
	"strings"

	"github.com/pkg/errors"
)

type (
	// Value is a runtime value: a scalar element or an array. The interface
	// is open: external array representations implement it and plug into
	// capability classification through the Setter predicate.
	Value interface {
		// String representation of the value.
		String() string
	}

	// Array is a value holding elements in row-major order.
	Array interface {
		Value

		// Shape returns the axis lengths.
		Shape() []int

		// Len returns the total number of elements.
		Len() int

		// At returns the i-th element in row-major order.
		At(i int) Elem
	}

	// Setter is the indexed-assignment predicate: a value supporting it
	// classifies as mutable unless a more specific rule applies first.
	Setter interface {
		// SetAt stores e as the i-th element in row-major order.
		SetAt(i int, e Elem) error
	}
)

// Dense is the host-native mutable array: flat storage plus a shape.
type Dense struct {
	shape []int
	data  []Elem
}

var (
	_ Array  = (*Dense)(nil)
	_ Setter = (*Dense)(nil)
)

// NewDense returns a mutable array with the given shape backed by data.
func NewDense(shape []int, data []Elem) (*Dense, error) {
	if n := numElems(shape); n != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, got %d", shape, n, len(data))
	}
	return &Dense{shape: append([]int(nil), shape...), data: data}, nil
}

// NewDenseZero returns a mutable array of the given shape filled with zeros
// of the same kind as proto.
func NewDenseZero(shape []int, proto Elem) *Dense {
	data := make([]Elem, numElems(shape))
	for i := range data {
		data[i] = ZeroElem(proto)
	}
	return &Dense{shape: append([]int(nil), shape...), data: data}
}

// Vector returns a mutable rank-1 array holding vs.
func Vector(vs ...float64) *Dense {
	data := make([]Elem, len(vs))
	for i, v := range vs {
		data[i] = Float(v)
	}
	return &Dense{shape: []int{len(vs)}, data: data}
}

// Shape returns the axis lengths.
func (d *Dense) Shape() []int { return d.shape }

// Len returns the number of elements.
func (d *Dense) Len() int { return len(d.data) }

// At returns the i-th element.
func (d *Dense) At(i int) Elem { return d.data[i] }

// SetAt stores e at index i.
func (d *Dense) SetAt(i int, e Elem) error {
	if i < 0 || i >= len(d.data) {
		return errors.Errorf("index %d out of range for length %d", i, len(d.data))
	}
	d.data[i] = e
	return nil
}

func (d *Dense) String() string { return formatArray(d) }

// Fixed is an immutable fixed-size array. Its storage is copied on
// construction and never exposed for writing.
type Fixed struct {
	shape []int
	data  []Elem
}

var _ Array = Fixed{}

// NewFixed returns an immutable array with the given shape holding a copy of
// data.
func NewFixed(shape []int, data []Elem) (Fixed, error) {
	if n := numElems(shape); n != len(data) {
		return Fixed{}, errors.Errorf("shape %v requires %d elements, got %d", shape, n, len(data))
	}
	return Fixed{
		shape: append([]int(nil), shape...),
		data:  append([]Elem(nil), data...),
	}, nil
}

// FixedVector returns an immutable rank-1 array holding vs.
func FixedVector(vs ...float64) Fixed {
	data := make([]Elem, len(vs))
	for i, v := range vs {
		data[i] = Float(v)
	}
	return Fixed{shape: []int{len(vs)}, data: data}
}

// Shape returns the axis lengths.
func (f Fixed) Shape() []int { return f.shape }

// Len returns the number of elements.
func (f Fixed) Len() int { return len(f.data) }

// At returns the i-th element.
func (f Fixed) At(i int) Elem { return f.data[i] }

func (f Fixed) String() string { return formatArray(f) }

// View is a rank-1 window into a parent array. Writes go through to the
// parent when the parent allows them.
type View struct {
	parent Array
	off, n int
}

var (
	_ Array  = (*View)(nil)
	_ Setter = (*View)(nil)
)

// NewView returns a view of n elements of parent starting at off.
func NewView(parent Array, off, n int) (*View, error) {
	if off < 0 || n < 0 || off+n > parent.Len() {
		return nil, errors.Errorf("view [%d:%d] out of range for length %d", off, off+n, parent.Len())
	}
	return &View{parent: parent, off: off, n: n}, nil
}

// Parent returns the viewed array.
func (v *View) Parent() Array { return v.parent }

// Shape returns the axis lengths.
func (v *View) Shape() []int { return []int{v.n} }

// Len returns the number of elements.
func (v *View) Len() int { return v.n }

// At returns the i-th element of the window.
func (v *View) At(i int) Elem { return v.parent.At(v.off + i) }

// SetAt stores e through to the parent. Fails when the parent has no indexed
// assignment.
func (v *View) SetAt(i int, e Elem) error {
	s, ok := v.parent.(Setter)
	if !ok {
		return errors.Errorf("view parent %T has no indexed assignment", v.parent)
	}
	if i < 0 || i >= v.n {
		return errors.Errorf("index %d out of range for length %d", i, v.n)
	}
	return s.SetAt(v.off+i, e)
}

func (v *View) String() string { return formatArray(v) }

func numElems(shape []int) int {
	n := 1
	for _, ax := range shape {
		n *= ax
	}
	return n
}

// SameShape reports whether two arrays have identical axis lengths.
func SameShape(a, b Array) bool {
	as, bs := a.Shape(), b.Shape()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func formatArray(a Array) string {
	shape := a.Shape()
	var s strings.Builder
	s.WriteByte('[')
	rowLen := a.Len()
	if len(shape) == 2 {
		rowLen = shape[1]
	}
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			if rowLen > 0 && i%rowLen == 0 {
				s.WriteString("; ")
			} else {
				s.WriteByte(' ')
			}
		}
		e := a.At(i)
		if e == nil {
			s.WriteByte('_')
		} else {
			s.WriteString(e.String())
		}
	}
	s.WriteByte(']')
	return s.String()
}
