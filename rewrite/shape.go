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

// Package rewrite turns a mutate-if-possible expression into a
// capability-dispatch form: a conditional probing the target value at run
// time and selecting between an in-place branch and an allocating fallback.
package rewrite

// Shape is the closed syntactic category an input expression classifies
// into. Classification is total: every expression yields exactly one Shape,
// with Unsupported covering everything outside the grammar.
type Shape int

const (
	// Unsupported marks expressions outside the grammar. Rewriting one is a
	// hard error, never a silent pass-through.
	Unsupported Shape = iota

	// CopyOf is a = copy(b).
	CopyOf
	// ZeroOf is a = zero(b).
	ZeroOf
	// SimilarOf is a = similar(b).
	SimilarOf

	// AxpyAssign is the scaled-add call axpy!(α, x, y) or axpby!(α, x, β, y).
	AxpyAssign

	// GenericOpAssign covers calls and assignments whose head is a key of
	// the operation table: copy-into and the compound broadcast spellings
	// written as ordinary calls.
	GenericOpAssign

	// MatMulAssign is a = b × c and a += b × c, with either multiply operand
	// optionally wrapped in a vec() flatten marker.
	MatMulAssign

	// ElementwiseApplyAssign is the elementwise-apply macro form @. a = rhs.
	ElementwiseApplyAssign

	// BroadcastAssign is the broadcast-assign family: .=, .+=, .-=, .*=, ./=.
	BroadcastAssign
)

var shapeStrings = map[Shape]string{
	Unsupported:            "Unsupported",
	CopyOf:                 "CopyOf",
	ZeroOf:                 "ZeroOf",
	SimilarOf:              "SimilarOf",
	AxpyAssign:             "AxpyAssign",
	GenericOpAssign:        "GenericOpAssign",
	MatMulAssign:           "MatMulAssign",
	ElementwiseApplyAssign: "ElementwiseApplyAssign",
	BroadcastAssign:        "BroadcastAssign",
}

// String returns the name of the shape.
func (s Shape) String() string {
	name, ok := shapeStrings[s]
	if !ok {
		return "Unsupported"
	}
	return name
}
