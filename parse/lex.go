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

// Package parse builds expression trees from the textual spelling of the
// mutate-if-possible grammar. One statement per input.
package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arraykit/bang/fmterr"
	"github.com/arraykit/bang/ir"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokLparen
	tokRparen
	tokComma
	tokAt     // @name
	tokAtDot  // @.
	tokAssign // one of the ir assign tokens
	tokOp     // one of + - * / ×
)

type token struct {
	kind   tokKind
	pos    ir.Pos
	text   string
	tok    ir.Token // for tokAssign and tokOp
	number float64
}

type lexer struct {
	src *fmterr.Source
	pos int
}

func (l *lexer) errorf(pos ir.Pos, format string, a ...any) error {
	return fmterr.Errorf(l.src, &ir.Ident{NamePos: pos}, format, a...)
}

func (l *lexer) next() (token, error) {
	in := l.src.Input
	for l.pos < len(in) && (in[l.pos] == ' ' || in[l.pos] == '\t') {
		l.pos++
	}
	start := ir.Pos(l.pos)
	if l.pos >= len(in) {
		return token{kind: tokEOF, pos: start}, nil
	}
	r, size := utf8.DecodeRuneInString(in[l.pos:])
	switch {
	case r == '(':
		l.pos++
		return token{kind: tokLparen, pos: start, text: "("}, nil
	case r == ')':
		l.pos++
		return token{kind: tokRparen, pos: start, text: ")"}, nil
	case r == ',':
		l.pos++
		return token{kind: tokComma, pos: start, text: ","}, nil
	case r == '@':
		l.pos++
		if l.pos < len(in) && in[l.pos] == '.' {
			l.pos++
			return token{kind: tokAtDot, pos: start, text: "@."}, nil
		}
		name := l.ident()
		if name == "" {
			return token{}, l.errorf(start, "macro name expected after @")
		}
		return token{kind: tokAt, pos: start, text: name}, nil
	case r == '×':
		l.pos += size
		return token{kind: tokOp, pos: start, text: "×", tok: ir.CROSS}, nil
	case r == '=':
		l.pos++
		return token{kind: tokAssign, pos: start, text: "=", tok: ir.ASSIGN}, nil
	case r == '.':
		return l.dotToken(start)
	case r == '+' || r == '-' || r == '*' || r == '/':
		return l.opToken(start, byte(r))
	case unicode.IsDigit(r):
		return l.number(start)
	case unicode.IsLetter(r) || r == '_':
		return token{kind: tokIdent, pos: start, text: l.ident()}, nil
	}
	return token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) dotToken(start ir.Pos) (token, error) {
	in := l.src.Input
	for _, spelling := range []struct {
		text string
		tok  ir.Token
	}{
		{".+=", ir.BCASTADD},
		{".-=", ir.BCASTSUB},
		{".*=", ir.BCASTMUL},
		{"./=", ir.BCASTQUO},
		{".=", ir.BCASTASSIGN},
	} {
		if strings.HasPrefix(in[l.pos:], spelling.text) {
			l.pos += len(spelling.text)
			return token{kind: tokAssign, pos: start, text: spelling.text, tok: spelling.tok}, nil
		}
	}
	return token{}, l.errorf(start, "unexpected character '.'")
}

func (l *lexer) opToken(start ir.Pos, c byte) (token, error) {
	in := l.src.Input
	if c == '+' && l.pos+1 < len(in) && in[l.pos+1] == '=' {
		l.pos += 2
		return token{kind: tokAssign, pos: start, text: "+=", tok: ir.ADDASSIGN}, nil
	}
	l.pos++
	ops := map[byte]ir.Token{'+': ir.ADD, '-': ir.SUB, '*': ir.MUL, '/': ir.QUO}
	return token{kind: tokOp, pos: start, text: string(c), tok: ops[c]}, nil
}

func (l *lexer) number(start ir.Pos) (token, error) {
	in := l.src.Input
	end := l.pos
	for end < len(in) && (in[end] >= '0' && in[end] <= '9' || in[end] == '.') {
		end++
	}
	text := in[l.pos:end]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, l.errorf(start, "malformed number %q", text)
	}
	l.pos = end
	return token{kind: tokNumber, pos: start, text: text, number: v}, nil
}

// ident scans an identifier: letters, digits and underscores, with an
// optional trailing bang for the mutating call names.
func (l *lexer) ident() string {
	in := l.src.Input
	start := l.pos
	for l.pos < len(in) {
		r, size := utf8.DecodeRuneInString(in[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.pos += size
	}
	if l.pos > start && l.pos < len(in) && in[l.pos] == '!' {
		l.pos++
	}
	return in[start:l.pos]
}
