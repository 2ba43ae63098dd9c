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

package interp

import (
	"github.com/pkg/errors"
	"github.com/arraykit/bang/ir"
	"github.com/arraykit/bang/ops"
	"github.com/arraykit/bang/value"
)

// evalCall resolves the built-in call heads the emitter produces. The
// dispatch head is special: its first two arguments are the capability probe
// and the operation name, consumed here rather than evaluated as values.
func evalCall(env *Env, e *ir.Call) (value.Value, error) {
	if e.Fun.Name == "dispatch" {
		return evalDispatch(env, e)
	}
	args, err := evalArgs(env, e.Args)
	if err != nil {
		return nil, err
	}
	arity := func(n int) error {
		if len(args) != n {
			return errors.Errorf("%s expects %d arguments, got %d", e.Fun.Name, n, len(args))
		}
		return nil
	}
	switch e.Fun.Name {
	case "copy":
		return withArity(arity(1), func() (value.Value, error) { return ops.Copy(args[0]) })
	case "zero":
		return withArity(arity(1), func() (value.Value, error) { return ops.Zero(args[0]) })
	case "similar":
		return withArity(arity(1), func() (value.Value, error) { return ops.Similar(args[0]) })
	case "copyto!":
		return withArity(arity(2), func() (value.Value, error) { return ops.CopyInto(args[0], args[1]) })
	case "mul!":
		return withArity(arity(3), func() (value.Value, error) { return ops.MatMulInto(args[0], args[1], args[2]) })
	case "muladd!":
		return withArity(arity(3), func() (value.Value, error) { return ops.MulAddInto(args[0], args[1], args[2]) })
	case "axpy!":
		return withArity(arity(3), func() (value.Value, error) { return ops.Axpy(args[0], args[1], args[2]) })
	case "axpby!":
		return withArity(arity(4), func() (value.Value, error) { return ops.Axpby(args[0], args[1], args[2], args[3]) })
	case "vec", "flatten":
		return withArity(arity(1), func() (value.Value, error) { return ops.Flatten(args[0]) })
	case "restructure":
		return withArity(arity(2), func() (value.Value, error) { return ops.Restructure(args[0], args[1]) })
	}
	return nil, errors.Errorf("undefined function: %s", e.Fun.Name)
}

func withArity(err error, fn func() (value.Value, error)) (value.Value, error) {
	if err != nil {
		return nil, err
	}
	return fn()
}

func evalDispatch(env *Env, e *ir.Call) (value.Value, error) {
	if len(e.Args) < 3 {
		return nil, errors.Errorf("dispatch expects a probe, a name and a target, got %d arguments", len(e.Args))
	}
	probe, ok := e.Args[0].(*ir.CapTest)
	if !ok {
		return nil, errors.Errorf("first dispatch argument must be a capability probe, got %s", e.Args[0])
	}
	name, ok := e.Args[1].(*ir.Str)
	if !ok {
		return nil, errors.Errorf("second dispatch argument must be an operation name, got %s", e.Args[1])
	}
	pair, ok := ops.Lookup(name.Val)
	if !ok {
		return nil, errors.Errorf("unknown operation %q, recognized: %v", name.Val, ops.Names())
	}
	target, err := Eval(env, e.Args[2])
	if err != nil {
		return nil, err
	}
	probed, err := Eval(env, probe.X)
	if err != nil {
		return nil, err
	}
	rest, err := evalArgs(env, e.Args[3:])
	if err != nil {
		return nil, err
	}
	return pair.Dispatch(value.MutabilityOf(probed), target, rest...)
}

func evalArgs(env *Env, args []ir.Expr) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := Eval(env, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
