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

package value

import (
	"math/big"

	"github.com/pkg/errors"
)

type (
	// Elem is a scalar array element.
	Elem interface {
		Value

		// elem marks a type as an element type.
		elem()

		// Float64 converts the element, possibly losing precision.
		Float64() float64
	}
)

// Float is a fixed-precision element.
type Float float64

// Big is an arbitrary-precision element. The backing big.Float is never
// shared between elements: arithmetic always allocates a fresh one.
type Big struct {
	x *big.Float
}

var (
	_ Elem = Float(0)
	_ Elem = (*Big)(nil)
)

func (Float) elem() {}
func (*Big) elem()  {}

// Float64 returns the element as a float64.
func (f Float) Float64() float64 { return float64(f) }

func (f Float) String() string {
	return big.NewFloat(float64(f)).Text('g', -1)
}

// NewBig wraps an existing big.Float.
func NewBig(x *big.Float) *Big { return &Big{x: x} }

// BigFromFloat returns an arbitrary-precision element holding v.
func BigFromFloat(v float64) *Big { return &Big{x: big.NewFloat(v)} }

// BigFloat returns a copy of the backing big.Float.
func (b *Big) BigFloat() *big.Float { return new(big.Float).Copy(b.x) }

// Float64 returns the element as a float64.
func (b *Big) Float64() float64 {
	f, _ := b.x.Float64()
	return f
}

func (b *Big) String() string { return b.x.Text('g', -1) }

// ZeroElem returns the zero of the same element kind as e. A nil e yields a
// fixed-precision zero.
func ZeroElem(e Elem) Elem {
	if _, ok := e.(*Big); ok {
		return BigFromFloat(0)
	}
	return Float(0)
}

// AddElem returns a+b, promoting to arbitrary precision when either operand
// requires it.
func AddElem(a, b Elem) (Elem, error) {
	return binElem(a, b, func(x, y float64) float64 { return x + y },
		func(z, x, y *big.Float) { z.Add(x, y) })
}

// SubElem returns a-b.
func SubElem(a, b Elem) (Elem, error) {
	return binElem(a, b, func(x, y float64) float64 { return x - y },
		func(z, x, y *big.Float) { z.Sub(x, y) })
}

// MulElem returns a*b.
func MulElem(a, b Elem) (Elem, error) {
	return binElem(a, b, func(x, y float64) float64 { return x * y },
		func(z, x, y *big.Float) { z.Mul(x, y) })
}

// QuoElem returns a/b.
func QuoElem(a, b Elem) (Elem, error) {
	if isZero(b) {
		return nil, errors.Errorf("division by zero")
	}
	return binElem(a, b, func(x, y float64) float64 { return x / y },
		func(z, x, y *big.Float) { z.Quo(x, y) })
}

// EqElem reports whether two elements hold the same numeric value,
// regardless of precision.
func EqElem(a, b Elem) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ba, aBig := a.(*Big)
	bb, bBig := b.(*Big)
	if aBig && bBig {
		return ba.x.Cmp(bb.x) == 0
	}
	return a.Float64() == b.Float64()
}

func isZero(e Elem) bool {
	if b, ok := e.(*Big); ok {
		return b.x.Sign() == 0
	}
	return e != nil && e.Float64() == 0
}

func binElem(a, b Elem, ff func(x, y float64) float64, bf func(z, x, y *big.Float)) (Elem, error) {
	if a == nil || b == nil {
		return nil, errors.Errorf("arithmetic on an uninitialized element")
	}
	ba, aBig := a.(*Big)
	bb, bBig := b.(*Big)
	if !aBig && !bBig {
		return Float(ff(a.Float64(), b.Float64())), nil
	}
	x := bigOf(ba, a)
	y := bigOf(bb, b)
	z := new(big.Float)
	bf(z, x, y)
	return &Big{x: z}, nil
}

func bigOf(b *Big, e Elem) *big.Float {
	if b != nil {
		return b.x
	}
	return big.NewFloat(e.Float64())
}
