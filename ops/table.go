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
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"github.com/arraykit/bang/value"
)

type (
	// Impl is one side of an operation pair. The in-place side mutates
	// target and returns it; the out-of-place side computes a new value and
	// never touches target.
	Impl func(target value.Value, args ...value.Value) (value.Value, error)

	// Pair holds the two semantically equivalent forms of an operation.
	Pair struct {
		InPlace    Impl
		OutOfPlace Impl
	}
)

// Dispatch runs the side of the pair selected by the capability tag.
func (p Pair) Dispatch(m value.Mutability, target value.Value, args ...value.Value) (value.Value, error) {
	if m == value.CanMutate {
		return p.InPlace(target, args...)
	}
	return p.OutOfPlace(target, args...)
}

var table = map[string]Pair{
	"copyto!": {
		InPlace: unary("copyto!", CopyInto),
		// Immutable values are safe to share, so the target aliases the
		// source instead of allocating a copy.
		OutOfPlace: unary("copyto!", func(_, src value.Value) (value.Value, error) {
			return src, nil
		}),
	},
	"copy": {
		InPlace:    unary("copy", CopyInto),
		OutOfPlace: unary("copy", func(_, src value.Value) (value.Value, error) { return Copy(src) }),
	},
	".+=": {
		InPlace:    compoundIn(AddInPlace),
		OutOfPlace: unary(".+=", func(t, rhs value.Value) (value.Value, error) { return Add(t, rhs) }),
	},
	".-=": {
		InPlace:    compoundIn(SubInPlace),
		OutOfPlace: unary(".-=", func(t, rhs value.Value) (value.Value, error) { return Sub(t, rhs) }),
	},
	".*=": {
		InPlace:    compoundIn(MulInPlace),
		OutOfPlace: unary(".*=", func(t, rhs value.Value) (value.Value, error) { return Mul(t, rhs) }),
	},
	"./=": {
		InPlace:    compoundIn(QuoInPlace),
		OutOfPlace: unary("./=", func(t, rhs value.Value) (value.Value, error) { return Quo(t, rhs) }),
	},
}

// Lookup returns the operation pair registered under name. Absence is not an
// error: callers fall through to the next candidate shape.
func Lookup(name string) (Pair, bool) {
	p, ok := table[name]
	return p, ok
}

// Names returns the recognized operation names, sorted.
func Names() []string {
	names := maps.Keys(table)
	sort.Strings(names)
	return names
}

func unary(name string, fn func(target, rhs value.Value) (value.Value, error)) Impl {
	return func(target value.Value, args ...value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return fn(target, args[0])
	}
}

func compoundIn(fn func(target, rhs value.Value) error) Impl {
	return unary("compound assign", func(target, rhs value.Value) (value.Value, error) {
		if err := fn(target, rhs); err != nil {
			return nil, err
		}
		return target, nil
	})
}
