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

import "github.com/pkg/errors"

var (
	// ErrUnsupported reports an expression outside the supported grammar.
	ErrUnsupported = errors.New("expression not supported")

	// ErrMalformedForm reports a recognized special-form head whose
	// arguments fit none of its sub-variants.
	ErrMalformedForm = errors.New("malformed special form")

	// ErrMacroExpansion reports nested macro expansion exceeding the
	// configured depth without reducing to a recognized shape.
	ErrMacroExpansion = errors.New("macro expansion did not terminate")
)
