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
	"github.com/pkg/errors"
	"github.com/arraykit/bang/fmterr"
	"github.com/arraykit/bang/ir"
)

// DefaultMacroDepth bounds nested macro expansion. Expansion that has not
// reduced to a recognized shape by then fails with ErrMacroExpansion instead
// of relying on host recursion limits.
const DefaultMacroDepth = 32

// Options configure a rewrite.
type Options struct {
	// Source the expression was parsed from, for error positions. May be
	// nil for trees built programmatically.
	Source *fmterr.Source

	// NoFusedAccumulate removes the a += b × c spelling from the active
	// grammar. The form then classifies as Unsupported.
	NoFusedAccumulate bool

	// MaxMacroDepth overrides DefaultMacroDepth when positive.
	MaxMacroDepth int
}

// DefaultOptions returns the options Rewrite runs with.
func DefaultOptions() Options {
	return Options{MaxMacroDepth: DefaultMacroDepth}
}

// Rewrite transforms a mutate-if-possible expression into its
// capability-dispatch form. The input tree is never modified; the result
// shares operand subtrees with it. Rewriting is one-shot and stateless:
// either the whole expression is rewritten or an error is returned.
func Rewrite(x ir.Expr) (ir.Expr, error) {
	return RewriteOpts(DefaultOptions(), x)
}

// RewriteOpts is Rewrite with explicit options.
func RewriteOpts(opts Options, x ir.Expr) (ir.Expr, error) {
	if opts.MaxMacroDepth <= 0 {
		opts.MaxMacroDepth = DefaultMacroDepth
	}
	shape, resolved, err := classify(opts, x, 0)
	if err != nil {
		return nil, fmterr.Position(opts.Source, x, err)
	}
	out, err := emit(shape, resolved)
	if err != nil {
		return nil, fmterr.Position(opts.Source, x, err)
	}
	return out, nil
}

// emit builds the replacement expression for a classified shape. Every shape
// the classifier can return has a case here: the two tables stay in
// lock-step.
func emit(shape Shape, x ir.Expr) (ir.Expr, error) {
	switch shape {
	case CopyOf, ZeroOf, SimilarOf:
		return emitAlloc(shape, x.(*ir.Assign))
	case AxpyAssign:
		return emitAxpy(x.(*ir.Call))
	case GenericOpAssign:
		return emitGeneric(x)
	case MatMulAssign:
		return emitMatMul(x.(*ir.Assign))
	case ElementwiseApplyAssign:
		return emitElementwiseApply(x.(*ir.Macro))
	case BroadcastAssign:
		return emitBroadcast(x.(*ir.Assign))
	}
	return nil, errors.Wrapf(ErrUnsupported, "cannot rewrite %s", x)
}
