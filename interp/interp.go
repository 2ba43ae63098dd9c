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

// Package interp evaluates rewritten expression trees against an environment
// of named runtime values. The capability probe in an emitted conditional is
// evaluated here, at execution time, not at rewrite time.
package interp

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"github.com/arraykit/bang/ir"
	"github.com/arraykit/bang/ops"
	"github.com/arraykit/bang/value"
)

// Env binds identifiers to runtime values.
type Env struct {
	vars map[string]value.Value
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vars: map[string]value.Value{}}
}

// Bind sets name to v, shadowing any previous binding.
func (e *Env) Bind(name string, v value.Value) {
	e.vars[name] = v
}

// Lookup returns the value bound to name.
func (e *Env) Lookup(name string) (value.Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Names returns the bound identifiers, sorted.
func (e *Env) Names() []string {
	names := maps.Keys(e.vars)
	sort.Strings(names)
	return names
}

// Eval evaluates x in env. Assignments update env; the value of a
// conditional is the value of the last expression of the branch taken.
func Eval(env *Env, x ir.Expr) (value.Value, error) {
	switch e := x.(type) {
	case *ir.Ident:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return nil, errors.Errorf("undefined: %s", e.Name)
		}
		return v, nil
	case *ir.Number:
		return value.Float(e.Val), nil
	case *ir.Binary:
		return evalBinary(env, e)
	case *ir.Assign:
		return evalAssign(env, e)
	case *ir.Cond:
		return evalCond(env, e)
	case *ir.Call:
		return evalCall(env, e)
	case *ir.Macro:
		if e.Name == "." {
			return evalElementwiseApply(env, e.X)
		}
		return nil, errors.Errorf("cannot evaluate macro @%s directly", e.Name)
	case *ir.CapTest:
		v, err := Eval(env, e.X)
		if err != nil {
			return nil, err
		}
		if value.MutabilityOf(v) == value.CanMutate {
			return value.Float(1), nil
		}
		return value.Float(0), nil
	case *ir.Str:
		return nil, errors.Errorf("string literal %s outside a dispatch call", e)
	}
	return nil, errors.Errorf("cannot evaluate %T", x)
}

func evalBinary(env *Env, e *ir.Binary) (value.Value, error) {
	x, err := Eval(env, e.X)
	if err != nil {
		return nil, err
	}
	y, err := Eval(env, e.Y)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ir.ADD:
		return ops.Add(x, y)
	case ir.SUB:
		return ops.Sub(x, y)
	case ir.MUL:
		return ops.Mul(x, y)
	case ir.QUO:
		return ops.Quo(x, y)
	case ir.CROSS:
		return ops.MatMul(x, y)
	}
	return nil, errors.Errorf("cannot evaluate operator %s", e.Op)
}

func evalAssign(env *Env, e *ir.Assign) (value.Value, error) {
	if e.Tok == ir.ASSIGN {
		v, err := Eval(env, e.Rhs)
		if err != nil {
			return nil, err
		}
		env.Bind(e.Lhs.Name, v)
		return v, nil
	}
	target, ok := env.Lookup(e.Lhs.Name)
	if !ok {
		return nil, errors.Errorf("undefined: %s", e.Lhs.Name)
	}
	rhs, err := Eval(env, e.Rhs)
	if err != nil {
		return nil, err
	}
	switch e.Tok {
	case ir.ADDASSIGN:
		v, err := ops.Add(target, rhs)
		if err != nil {
			return nil, err
		}
		env.Bind(e.Lhs.Name, v)
		return v, nil
	case ir.BCASTASSIGN:
		return ops.FillInto(target, rhs)
	case ir.BCASTADD:
		return target, ops.AddInPlace(target, rhs)
	case ir.BCASTSUB:
		return target, ops.SubInPlace(target, rhs)
	case ir.BCASTMUL:
		return target, ops.MulInPlace(target, rhs)
	case ir.BCASTQUO:
		return target, ops.QuoInPlace(target, rhs)
	}
	return nil, errors.Errorf("cannot evaluate assignment %s", e)
}

// evalCond runs the branch selected by the capability probe. The probe is
// evaluated once, so both branches can never observe different
// classifications for the same value within one invocation.
func evalCond(env *Env, e *ir.Cond) (value.Value, error) {
	probe, ok := e.If.(*ir.CapTest)
	if !ok {
		return nil, errors.Errorf("condition of %s is not a capability probe", e)
	}
	target, err := Eval(env, probe.X)
	if err != nil {
		return nil, err
	}
	branch := e.Else
	if value.MutabilityOf(target) == value.CanMutate {
		branch = e.Then
	}
	var last value.Value
	for _, stmt := range branch {
		if last, err = Eval(env, stmt); err != nil {
			return nil, err
		}
	}
	return last, nil
}
