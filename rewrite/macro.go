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

package rewrite

import (
	"github.com/arraykit/bang/base/sync"
	"github.com/arraykit/bang/ir"
)

// Expander rewrites the statement wrapped by a macro into another
// expression. Expanders must be pure: expansion happens during
// classification and may not evaluate user values.
type Expander func(x ir.Expr) (ir.Expr, error)

var expanders sync.Map[string, Expander]

// RegisterMacro installs an expander for @name. A nested macro inside a
// rewritten statement is expanded one level at a time and the expansion
// re-classified, up to the configured depth.
func RegisterMacro(name string, fn Expander) {
	expanders.Store(name, fn)
}

func expanderFor(name string) (Expander, bool) {
	return expanders.Load(name)
}
