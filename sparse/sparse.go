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

// Package sparse provides a compressed sparse row matrix and registers a
// multiply specialized for it. The rewriter core never refers to this
// package: the specialization is picked up through the matrix-multiply
// override registry alone.
package sparse

import (
	"github.com/pkg/errors"
	"github.com/arraykit/bang/ops"
	"github.com/arraykit/bang/value"
)

// CSR is a compressed sparse row matrix. It has no indexed assignment, so it
// classifies as immutable and always takes the allocating branch of a
// rewrite.
type CSR struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	vals       []value.Elem
}

var _ value.Array = (*CSR)(nil)

func init() {
	ops.RegisterMatMul(&CSR{}, matmulCSR)
}

// FromDense compresses the non-zero entries of a rank-2 array.
func FromDense(a value.Array) (*CSR, error) {
	shape := a.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("sparse matrix requires rank 2, got shape %v", shape)
	}
	m := &CSR{rows: shape[0], cols: shape[1], rowPtr: make([]int, 1, shape[0]+1)}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			e := a.At(i*m.cols + j)
			if e == nil || e.Float64() == 0 {
				continue
			}
			m.colIdx = append(m.colIdx, j)
			m.vals = append(m.vals, e)
		}
		m.rowPtr = append(m.rowPtr, len(m.vals))
	}
	return m, nil
}

// Shape returns the axis lengths.
func (m *CSR) Shape() []int { return []int{m.rows, m.cols} }

// Len returns the logical number of elements, zeros included.
func (m *CSR) Len() int { return m.rows * m.cols }

// At returns the element at flat row-major index i.
func (m *CSR) At(i int) value.Elem {
	row, col := i/m.cols, i%m.cols
	for k := m.rowPtr[row]; k < m.rowPtr[row+1]; k++ {
		if m.colIdx[k] == col {
			return m.vals[k]
		}
	}
	return value.Float(0)
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.vals) }

func (m *CSR) String() string {
	d, err := ops.Copy(m)
	if err != nil {
		return "sparse[]"
	}
	return "sparse" + d.String()
}

// matmulCSR multiplies a CSR left operand with a dense vector or matrix,
// visiting stored entries only.
func matmulCSR(a, b value.Value) (value.Value, error) {
	m := a.(*CSR)
	ba, ok := b.(value.Array)
	if !ok {
		return nil, errors.Errorf("%T is not an array", b)
	}
	bShape := ba.Shape()
	bCols := 1
	bRows := bShape[0]
	if len(bShape) == 2 {
		bRows, bCols = bShape[0], bShape[1]
	} else if len(bShape) != 1 {
		return nil, errors.Errorf("rank %d not supported in sparse multiply", len(bShape))
	}
	if bRows != m.cols {
		return nil, errors.Errorf("inner axes mismatch: %v × %v", m.Shape(), bShape)
	}
	out := make([]value.Elem, m.rows*bCols)
	for i := range out {
		out[i] = value.Float(0)
	}
	for row := 0; row < m.rows; row++ {
		for k := m.rowPtr[row]; k < m.rowPtr[row+1]; k++ {
			col := m.colIdx[k]
			for j := 0; j < bCols; j++ {
				p, err := value.MulElem(m.vals[k], ba.At(col*bCols+j))
				if err != nil {
					return nil, err
				}
				s, err := value.AddElem(out[row*bCols+j], p)
				if err != nil {
					return nil, err
				}
				out[row*bCols+j] = s
			}
		}
	}
	shape := []int{m.rows}
	if len(bShape) == 2 {
		shape = []int{m.rows, bCols}
	}
	return value.NewDense(shape, out)
}
