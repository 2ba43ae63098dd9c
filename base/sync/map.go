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

// Package sync provides typed wrappers around the standard synchronization
// primitives backing the rewriter registries.
package sync

import "sync"

// Map is a generic synchronized map. It is a wrapper around Go's standard
// sync.Map, with all the same caveats. Registrations typically happen in
// init functions, lookups on every classification.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Store a key,value pair.
func (sm *Map[K, V]) Store(k K, v V) {
	sm.m.Store(k, v)
}

// Load returns the value registered under k and whether one is present.
func (sm *Map[K, V]) Load(k K) (V, bool) {
	vAny, ok := sm.m.Load(k)
	if !ok {
		var zero V
		return zero, false
	}
	return vAny.(V), true
}

// Range calls yield for each key,value pair until yield returns false.
func (sm *Map[K, V]) Range(yield func(K, V) bool) {
	sm.m.Range(func(k, v any) bool {
		return yield(k.(K), v.(V))
	})
}
