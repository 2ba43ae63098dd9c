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

package interp_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/arraykit/bang/fmterr"
	"github.com/arraykit/bang/interp"
	"github.com/arraykit/bang/parse"
	"github.com/arraykit/bang/rewrite"
	"github.com/arraykit/bang/value"
)

// runStmt parses a statement, rewrites it into its dispatch form, and
// evaluates it in env.
func runStmt(t *testing.T, env *interp.Env, line string) value.Value {
	t.Helper()
	src := fmterr.NewSource("test", line)
	stmt, err := parse.Statement(src)
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	out, err := rewrite.RewriteOpts(rewrite.Options{Source: src}, stmt)
	if err != nil {
		t.Fatalf("rewrite %q: %v", line, err)
	}
	v, err := interp.Eval(env, out)
	if err != nil {
		t.Fatalf("eval %q: %v", line, err)
	}
	return v
}

func elems(t *testing.T, v value.Value) []float64 {
	t.Helper()
	arr, ok := v.(value.Array)
	if !ok {
		t.Fatalf("%T is not an array", v)
	}
	out := make([]float64, arr.Len())
	for i := range out {
		e := arr.At(i)
		if e == nil {
			t.Fatalf("element %d is unset", i)
		}
		out[i] = e.Float64()
	}
	return out
}

func bound(t *testing.T, env *interp.Env, name string) value.Value {
	t.Helper()
	v, ok := env.Lookup(name)
	if !ok {
		t.Fatalf("%s unbound", name)
	}
	return v
}

func TestBroadcastSequenceMutable(t *testing.T) {
	env := interp.NewEnv()
	target := value.Vector(0, 0)
	env.Bind("y", target)
	env.Bind("x", value.Vector(1, 1))
	for _, line := range []string{"y .= x", "y .+= x", "y .*= x", "y .-= x", "y ./= x"} {
		runStmt(t, env, line)
	}
	if diff := cmp.Diff([]float64{1, 1}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("final value (-want +got):\n%s", diff)
	}
	// The original location was mutated in place and holds the result.
	if got := bound(t, env, "y"); got != value.Value(target) {
		t.Error("target was rebound instead of mutated in place")
	}
	if diff := cmp.Diff([]float64{1, 1}, elems(t, target)); diff != "" {
		t.Errorf("original location (-want +got):\n%s", diff)
	}
}

func TestBroadcastSequenceImmutable(t *testing.T) {
	env := interp.NewEnv()
	target := value.FixedVector(0, 0)
	env.Bind("y", target)
	env.Bind("x", value.FixedVector(1, 1))
	for _, line := range []string{"y .= x", "y .+= x", "y .*= x", "y .-= x", "y ./= x"} {
		runStmt(t, env, line)
	}
	if diff := cmp.Diff([]float64{1, 1}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("final value (-want +got):\n%s", diff)
	}
	// The original location is untouched: the target was rebound, never
	// written into.
	if diff := cmp.Diff([]float64{0, 0}, elems(t, target)); diff != "" {
		t.Errorf("original location (-want +got):\n%s", diff)
	}
}

func TestCopyIntoRoundTrip(t *testing.T) {
	env := interp.NewEnv()
	target := value.Vector(9, 9)
	env.Bind("y", target)
	env.Bind("x", value.Vector(3, 4))
	runStmt(t, env, "copyto!(y, x)")
	if diff := cmp.Diff([]float64{3, 4}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("value (-want +got):\n%s", diff)
	}
	if bound(t, env, "y") != value.Value(target) {
		t.Error("mutable target was rebound instead of mutated")
	}

	env = interp.NewEnv()
	fixed := value.FixedVector(9, 9)
	src := value.FixedVector(3, 4)
	env.Bind("y", fixed)
	env.Bind("x", src)
	runStmt(t, env, "copyto!(y, x)")
	if diff := cmp.Diff([]float64{3, 4}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{9, 9}, elems(t, fixed)); diff != "" {
		t.Errorf("immutable target changed (-want +got):\n%s", diff)
	}
}

func TestAllocationForms(t *testing.T) {
	env := interp.NewEnv()
	src := value.Vector(1, 2)
	env.Bind("x", src)
	runStmt(t, env, "y = copy(x)")
	if diff := cmp.Diff([]float64{1, 2}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("copy value (-want +got):\n%s", diff)
	}
	if bound(t, env, "y") == value.Value(src) {
		t.Error("copy of a mutable source aliased instead of allocating")
	}
	runStmt(t, env, "z = zero(x)")
	if diff := cmp.Diff([]float64{0, 0}, elems(t, bound(t, env, "z"))); diff != "" {
		t.Errorf("zero value (-want +got):\n%s", diff)
	}

	// An immutable source is safe to share: the fallback aliases it, so
	// even zero and similar hand back the source's elements unchanged.
	env = interp.NewEnv()
	env.Bind("x", value.FixedVector(1, 2))
	for _, line := range []string{"y = copy(x)", "y = zero(x)", "y = similar(x)"} {
		runStmt(t, env, line)
		if diff := cmp.Diff([]float64{1, 2}, elems(t, bound(t, env, "y"))); diff != "" {
			t.Errorf("%q did not alias the immutable source (-want +got):\n%s", line, diff)
		}
	}
}

func TestSimilarBigZeroFill(t *testing.T) {
	env := interp.NewEnv()
	data := []value.Elem{value.BigFromFloat(1.5), value.BigFromFloat(2.5)}
	src, err := value.NewDense([]int{2}, data)
	if err != nil {
		t.Fatal(err)
	}
	env.Bind("x", src)
	runStmt(t, env, "y = similar(x)")
	arr := bound(t, env, "y").(value.Array)
	for i := 0; i < arr.Len(); i++ {
		e := arr.At(i)
		if e == nil {
			t.Fatalf("element %d left unset by similar", i)
		}
		b, ok := e.(*value.Big)
		if !ok {
			t.Fatalf("element %d has kind %T, want arbitrary precision", i, e)
		}
		if b.BigFloat().Sign() != 0 {
			t.Errorf("element %d reads %s, want 0", i, b)
		}
	}
}

func matmulEnv(mutable bool) (*interp.Env, value.Value) {
	env := interp.NewEnv()
	ones := make([]value.Elem, 4)
	for i := range ones {
		ones[i] = value.Float(1)
	}
	a, _ := value.NewDense([]int{2, 2}, ones)
	env.Bind("A", a)
	env.Bind("x", value.FixedVector(1, 1))
	var target value.Value
	if mutable {
		target = value.Vector(0, 0)
	} else {
		target = value.FixedVector(0, 0)
	}
	env.Bind("y", target)
	return env, target
}

func TestMatMulMutable(t *testing.T) {
	env, target := matmulEnv(true)
	runStmt(t, env, "y = A × x")
	if diff := cmp.Diff([]float64{2, 2}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("value (-want +got):\n%s", diff)
	}
	if bound(t, env, "y") != target {
		t.Error("mutable target was rebound instead of multiplied in place")
	}
}

func TestMatMulImmutable(t *testing.T) {
	env, target := matmulEnv(false)
	runStmt(t, env, "y = A × x")
	if diff := cmp.Diff([]float64{2, 2}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 0}, elems(t, target)); diff != "" {
		t.Errorf("immutable target changed (-want +got):\n%s", diff)
	}
}

func TestMatMulFlattenedVariants(t *testing.T) {
	ones := make([]value.Elem, 4)
	for i := range ones {
		ones[i] = value.Float(1)
	}

	// vec(A) turns the 2x2 matrix into a length-4 row, so the product
	// against a length-4 column is a single element.
	env := interp.NewEnv()
	a, err := value.NewDense([]int{2, 2}, ones)
	if err != nil {
		t.Fatal(err)
	}
	env.Bind("A", a)
	env.Bind("x", value.FixedVector(1, 1, 1, 1))
	env.Bind("y", value.Vector(0))
	runStmt(t, env, "y = vec(A) × x")
	if diff := cmp.Diff([]float64{4}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("vec(A) value (-want +got):\n%s", diff)
	}

	// vec(x) flattens the right operand into a column.
	env = interp.NewEnv()
	a, err = value.NewDense([]int{2, 2}, append([]value.Elem(nil), ones...))
	if err != nil {
		t.Fatal(err)
	}
	env.Bind("A", a)
	env.Bind("x", value.FixedVector(1, 1))
	env.Bind("y", value.Vector(0, 0))
	runStmt(t, env, "y = A × vec(x)")
	if diff := cmp.Diff([]float64{2, 2}, elems(t, bound(t, env, "y"))); diff != "" {
		t.Errorf("vec(x) value (-want +got):\n%s", diff)
	}
}

func TestMatMulAccumulate(t *testing.T) {
	for _, mutable := range []bool{true, false} {
		env, _ := matmulEnv(mutable)
		runStmt(t, env, "y .= x")
		runStmt(t, env, "y += A × x")
		if diff := cmp.Diff([]float64{3, 3}, elems(t, bound(t, env, "y"))); diff != "" {
			t.Errorf("mutable=%v value (-want +got):\n%s", mutable, diff)
		}
	}
}

func TestAxpyBothBranches(t *testing.T) {
	for _, mutable := range []bool{true, false} {
		env := interp.NewEnv()
		env.Bind("a", value.Float(2))
		env.Bind("x", value.FixedVector(1, 1))
		if mutable {
			env.Bind("y", value.Vector(1, 1))
		} else {
			env.Bind("y", value.FixedVector(1, 1))
		}
		runStmt(t, env, "axpy!(a, x, y)")
		if diff := cmp.Diff([]float64{3, 3}, elems(t, bound(t, env, "y"))); diff != "" {
			t.Errorf("mutable=%v value (-want +got):\n%s", mutable, diff)
		}
	}
}

func TestAxpbyBothBranches(t *testing.T) {
	for _, mutable := range []bool{true, false} {
		env := interp.NewEnv()
		env.Bind("a", value.Float(2))
		env.Bind("b", value.Float(3))
		env.Bind("x", value.FixedVector(1, 1))
		if mutable {
			env.Bind("y", value.Vector(1, 1))
		} else {
			env.Bind("y", value.FixedVector(1, 1))
		}
		runStmt(t, env, "axpby!(a, x, b, y)")
		if diff := cmp.Diff([]float64{5, 5}, elems(t, bound(t, env, "y"))); diff != "" {
			t.Errorf("mutable=%v value (-want +got):\n%s", mutable, diff)
		}
	}
}

func TestElementwiseApplyBothBranches(t *testing.T) {
	for _, mutable := range []bool{true, false} {
		env := interp.NewEnv()
		env.Bind("x", value.FixedVector(1, 2))
		env.Bind("z", value.FixedVector(10, 20))
		if mutable {
			env.Bind("y", value.Vector(0, 0))
		} else {
			env.Bind("y", value.FixedVector(0, 0))
		}
		runStmt(t, env, "@. y = x + z")
		if diff := cmp.Diff([]float64{11, 22}, elems(t, bound(t, env, "y"))); diff != "" {
			t.Errorf("mutable=%v value (-want +got):\n%s", mutable, diff)
		}
	}
}

// Both capability branches must produce value-equal results for equal
// logical inputs, whatever the target representation.
func TestBranchEquivalence(t *testing.T) {
	lines := []string{
		"copyto!(y, x)",
		"y .= x",
		"y .+= x",
		"y .-= x",
		"y .*= x",
		"y ./= x",
		"@. y = x + x",
		"axpy!(a, x, y)",
	}
	for _, line := range lines {
		results := make([][]float64, 2)
		for i, mutable := range []bool{true, false} {
			env := interp.NewEnv()
			env.Bind("a", value.Float(2))
			env.Bind("x", value.FixedVector(2, 3))
			if mutable {
				env.Bind("y", value.Vector(4, 5))
			} else {
				env.Bind("y", value.FixedVector(4, 5))
			}
			runStmt(t, env, line)
			results[i] = elems(t, bound(t, env, "y"))
		}
		if diff := cmp.Diff(results[0], results[1]); diff != "" {
			t.Errorf("%q branches disagree (-mutable +immutable):\n%s", line, diff)
		}
	}
}

func TestViewTargetWritesThroughParent(t *testing.T) {
	env := interp.NewEnv()
	parent := value.Vector(0, 0, 0, 0)
	view, err := value.NewView(parent, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	env.Bind("y", view)
	env.Bind("x", value.FixedVector(7, 8))
	runStmt(t, env, "y .= x")
	if diff := cmp.Diff([]float64{0, 7, 8, 0}, elems(t, parent)); diff != "" {
		t.Errorf("parent (-want +got):\n%s", diff)
	}
}
