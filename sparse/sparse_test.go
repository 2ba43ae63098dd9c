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

package sparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/arraykit/bang/ops"
	"github.com/arraykit/bang/sparse"
	"github.com/arraykit/bang/value"
)

func matrix(t *testing.T, rows, cols int, vs ...float64) *value.Dense {
	t.Helper()
	data := make([]value.Elem, len(vs))
	for i, v := range vs {
		data[i] = value.Float(v)
	}
	m, err := value.NewDense([]int{rows, cols}, data)
	require.NoError(t, err)
	return m
}

func elems(t *testing.T, v value.Value) []float64 {
	t.Helper()
	arr, ok := v.(value.Array)
	require.True(t, ok, "%T is not an array", v)
	out := make([]float64, arr.Len())
	for i := range out {
		e := arr.At(i)
		require.NotNil(t, e, "element %d is unset", i)
		out[i] = e.Float64()
	}
	return out
}

func TestFromDense(t *testing.T) {
	m, err := sparse.FromDense(matrix(t, 2, 3,
		1, 0, 2,
		0, 0, 3,
	))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, m.Shape())
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, []float64{1, 0, 2, 0, 0, 3}, elems(t, m))
}

func TestFromDenseRejectsRank1(t *testing.T) {
	_, err := sparse.FromDense(value.Vector(1, 2))
	assert.Error(t, err)
}

func TestClassifiesImmutable(t *testing.T) {
	m, err := sparse.FromDense(matrix(t, 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, value.CannotMutate, value.MutabilityOf(m))
}

// Importing the package is enough for the multiply override to be consulted
// by the generic entry point.
func TestRegisteredMultiply(t *testing.T) {
	m, err := sparse.FromDense(matrix(t, 2, 2,
		2, 0,
		0, 3,
	))
	require.NoError(t, err)
	got, err := ops.MatMul(m, value.FixedVector(5, 7))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 21}, elems(t, got))

	dense := matrix(t, 2, 2,
		2, 0,
		0, 3,
	)
	want, err := ops.MatMul(dense, value.FixedVector(5, 7))
	require.NoError(t, err)
	assert.Equal(t, elems(t, want), elems(t, got))
}

func TestMultiplyMatrixOperand(t *testing.T) {
	m, err := sparse.FromDense(matrix(t, 2, 2,
		1, 2,
		0, 4,
	))
	require.NoError(t, err)
	got, err := ops.MatMul(m, matrix(t, 2, 2,
		5, 6,
		7, 8,
	))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, got.(value.Array).Shape())
	assert.Equal(t, []float64{19, 22, 28, 32}, elems(t, got))
}
