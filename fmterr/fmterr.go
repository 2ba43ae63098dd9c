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

// Package fmterr formats errors against a position in rewriter source.
package fmterr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/arraykit/bang/ir"
)

// Source holds the text a tree was parsed from so errors can point back into
// it. A nil Source is valid and yields position-less errors for trees built
// programmatically.
type Source struct {
	Name  string
	Input string

	lines []int // byte offsets of line starts, built lazily
}

// NewSource returns a source named name holding input.
func NewSource(name, input string) *Source {
	return &Source{Name: name, Input: input}
}

func (s *Source) lineStarts() []int {
	if s.lines != nil {
		return s.lines
	}
	s.lines = []int{0}
	for i := 0; i < len(s.Input); i++ {
		if s.Input[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s.lines
}

// PosString renders a position as "name:line:col:". Invalid positions render
// as the source name alone.
func (s *Source) PosString(pos ir.Pos) string {
	if s == nil {
		return ""
	}
	if !pos.IsValid() || int(pos) > len(s.Input) {
		return s.Name + ":"
	}
	starts := s.lineStarts()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > int(pos) })
	col := int(pos) - starts[line-1] + 1
	return fmt.Sprintf("%s:%d:%d:", s.Name, line, col)
}

type (
	// ErrorWithPos is an error attached to a position in rewriter source.
	ErrorWithPos interface {
		error
		Source() *Source
		Node() ir.Node
		Err() error
	}

	errorWithPos struct {
		src  *Source
		node ir.Node
		err  error
	}
)

// Position adds position information to an error.
func Position(src *Source, node ir.Node, err error) ErrorWithPos {
	return errorWithPos{src: src, node: node, err: err}
}

// Errorf returns a formatted rewrite error for the user.
func Errorf(src *Source, node ir.Node, format string, a ...any) error {
	return Position(src, node, errors.Errorf(format, a...))
}

// Internal marks an error as internal, potentially adding additional information.
func Internal(err error) error {
	return fmt.Errorf("internal rewriter error. This is a bug. Please report it. Error:\n%+v", err)
}

// Error returns a string description of the error.
func (err errorWithPos) Error() string {
	prefix := ""
	if err.src != nil && err.node != nil {
		prefix = err.src.PosString(err.node.Pos())
	}
	if prefix == "" {
		return err.err.Error()
	}
	return strings.TrimSuffix(prefix, ":") + ": " + err.err.Error()
}

// Unwrap the error.
func (err errorWithPos) Unwrap() error { return err.err }

// Source returns the source the error points into.
func (err errorWithPos) Source() *Source { return err.src }

// Node returns the offending node.
func (err errorWithPos) Node() ir.Node { return err.node }

// Err returns the underlying error.
func (err errorWithPos) Err() error { return err.err }
