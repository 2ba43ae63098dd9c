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

// Mutability is the capability trait: whether a value supports indexed
// in-place writes.
type Mutability int

const (
	// CannotMutate marks values that must be rebound instead of written into.
	CannotMutate Mutability = iota
	// CanMutate marks values supporting indexed assignment.
	CanMutate
)

// String returns the name of the capability.
func (m Mutability) String() string {
	if m == CanMutate {
		return "CanMutate"
	}
	return "CannotMutate"
}

// MutabilityOf classifies a runtime value. The classification is pure: it
// inspects the value's type, never its contents, and is stable across calls
// for a given value.
//
// Scalars never mutate. Dense arrays always do. Views are transparent and
// take their parent's classification. Everything else goes through the
// indexed-assignment predicate.
func MutabilityOf(v Value) Mutability {
	switch x := v.(type) {
	case Float, *Big:
		return CannotMutate
	case *Dense:
		return CanMutate
	case *View:
		return MutabilityOf(x.parent)
	}
	if _, ok := v.(Setter); ok {
		return CanMutate
	}
	return CannotMutate
}
