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

package parse

import (
	"strings"

	"go.uber.org/multierr"
	"github.com/arraykit/bang/fmterr"
	"github.com/arraykit/bang/ir"
)

type parser struct {
	lex *lexer
	cur token
}

// Statement parses one statement of the grammar.
func Statement(src *fmterr.Source) (ir.Expr, error) {
	p := &parser{lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	x, err := p.statement()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.errorf("unexpected %q after statement", p.cur.text)
	}
	return x, nil
}

// Program parses one statement per non-empty line, accumulating every parse
// error instead of stopping at the first.
func Program(name, input string) ([]ir.Expr, error) {
	var stmts []ir.Expr
	var errs error
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		x, err := Statement(fmterr.NewSource(name, trimmed))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		stmts = append(stmts, x)
	}
	return stmts, errs
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) errorf(format string, a ...any) error {
	return fmterr.Errorf(p.lex.src, &ir.Ident{NamePos: p.cur.pos}, format, a...)
}

func (p *parser) statement() (ir.Expr, error) {
	switch p.cur.kind {
	case tokAtDot, tokAt:
		at, name := p.cur.pos, "."
		if p.cur.kind == tokAt {
			name = p.cur.text
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.statement()
		if err != nil {
			return nil, err
		}
		return &ir.Macro{At: at, Name: name, X: inner}, nil
	case tokIdent:
		head := &ir.Ident{NamePos: p.cur.pos, Name: p.cur.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.cur.kind {
		case tokLparen:
			return p.call(head)
		case tokAssign:
			tokPos, tok := p.cur.pos, p.cur.tok
			if err := p.advance(); err != nil {
				return nil, err
			}
			rhs, err := p.expr()
			if err != nil {
				return nil, err
			}
			return &ir.Assign{Lhs: head, TokPos: tokPos, Tok: tok, Rhs: rhs}, nil
		}
		return nil, p.errorf("expected assignment or call after %s", head.Name)
	}
	return nil, p.errorf("expected a statement, got %q", p.cur.text)
}

func (p *parser) call(head *ir.Ident) (ir.Expr, error) {
	lparen := p.cur.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []ir.Expr
	for p.cur.kind != tokRparen {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.cur.kind != tokRparen {
			return nil, p.errorf("expected , or ) in arguments of %s", head.Name)
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ir.Call{Fun: head, Lparen: lparen, Args: args}, nil
}

func (p *parser) expr() (ir.Expr, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && (p.cur.tok == ir.ADD || p.cur.tok == ir.SUB) {
		opPos, op := p.cur.pos, p.cur.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = &ir.Binary{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x, nil
}

func (p *parser) term() (ir.Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && (p.cur.tok == ir.MUL || p.cur.tok == ir.QUO || p.cur.tok == ir.CROSS) {
		opPos, op := p.cur.pos, p.cur.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.primary()
		if err != nil {
			return nil, err
		}
		x = &ir.Binary{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x, nil
}

func (p *parser) primary() (ir.Expr, error) {
	switch p.cur.kind {
	case tokNumber:
		n := &ir.Number{ValPos: p.cur.pos, Raw: p.cur.text, Val: p.cur.number}
		return n, p.advance()
	case tokIdent:
		id := &ir.Ident{NamePos: p.cur.pos, Name: p.cur.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokLparen {
			return p.call(id)
		}
		return id, nil
	case tokLparen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRparen {
			return nil, p.errorf("expected ), got %q", p.cur.text)
		}
		return x, p.advance()
	}
	return nil, p.errorf("expected an operand, got %q", p.cur.text)
}
