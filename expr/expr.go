// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package expr parses the descriptor/Miniscript surface grammar
//
//	atom := name | name "(" args ")"
//	args := atom ("," atom)*
//	name := ident | ident ":" ident
//	ident := [A-Za-z0-9_]+
//
// into a bare name/args tree. A single ':' inside a name carries the
// wrapper-cast prefix notation (e.g. "tv:pk_k"); more than one is rejected.
// The parser performs no semantic interpretation — that happens in a
// separate from-tree pass (miniscript.FromTree) that dispatches on
// (name, arity). Only printable ASCII in [0x20, 0x7F] is accepted.
package expr

import (
	"strings"

	"github.com/pkt-cash/miniscript/mserr"
)

// Tree is one parsed atom: a name plus its (possibly empty) argument list.
// A leaf such as a hex literal or a decimal number is represented as a Tree
// with no Args.
type Tree struct {
	Name string
	Args []Tree
}

// Parse parses a single top-level expression and requires the whole string
// to be consumed.
func Parse(s string) (Tree, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7f {
			return Tree{}, mserr.ErrUnprintable.Newf("byte 0x%02x at offset %d", s[i], i)
		}
	}
	p := &parser{s: s}
	t, err := p.atom()
	if err != nil {
		return Tree{}, err
	}
	if p.pos != len(p.s) {
		return Tree{}, mserr.ErrExpectedChar.Newf("trailing input at offset %d: %q", p.pos, p.s[p.pos:])
	}
	return t, nil
}

type parser struct {
	s   string
	pos int
}

func isIdentByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

func (p *parser) ident() error {
	start := p.pos
	for p.pos < len(p.s) && isIdentByte(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return mserr.ErrUnexpectedChar.Newf("expected identifier at offset %d", start)
	}
	return nil
}

func (p *parser) atom() (Tree, error) {
	start := p.pos
	if err := p.ident(); err != nil {
		return Tree{}, err
	}
	if p.pos < len(p.s) && p.s[p.pos] == ':' {
		p.pos++
		if err := p.ident(); err != nil {
			return Tree{}, err
		}
		if p.pos < len(p.s) && p.s[p.pos] == ':' {
			return Tree{}, mserr.ErrMultiColon.Newf("%q", p.s[start:p.pos+1])
		}
	}
	name := p.s[start:p.pos]
	if p.pos >= len(p.s) || p.s[p.pos] != '(' {
		return Tree{Name: name}, nil
	}
	p.pos++ // consume '('
	var args []Tree
	for {
		a, err := p.atom()
		if err != nil {
			return Tree{}, err
		}
		args = append(args, a)
		if p.pos >= len(p.s) {
			return Tree{}, mserr.ErrExpectedChar.Newf("unterminated argument list for %q", name)
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
			continue
		case ')':
			p.pos++
			return Tree{Name: name, Args: args}, nil
		default:
			return Tree{}, mserr.ErrExpectedChar.Newf("expected ',' or ')' at offset %d, found %q", p.pos, p.s[p.pos])
		}
	}
}

// String renders the tree back to canonical surface syntax: minimal
// parenthesization, no whitespace.
func (t Tree) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "(" + strings.Join(parts, ",") + ")"
}
