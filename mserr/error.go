// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mserr implements the structural tag+payload error taxonomy
// required by the library's error handling design: every error is a typed
// code plus an optional detail string, and Error() produces a stable,
// single-line form that is part of the public contract and must not be
// reworded across versions.
//
// The shape follows btcutil/er (ErrorType groups related Codes, a
// Code.New(detail) constructs an instance, Is decodes it back) but drops
// stack capture and the version banner: this is a pure, in-process library
// with no running build to diagnose, not a node.
package mserr

import "fmt"

// ErrorType groups the error Codes belonging to one component of the
// pipeline (lexer, decoder, textual parser, type checker, satisfier).
type ErrorType struct {
	Name string
}

// NewErrorType declares a new component-level error type.
func NewErrorType(name string) ErrorType {
	return ErrorType{Name: name}
}

// Code identifies one kind of fault within an ErrorType.
type Code struct {
	typ  *ErrorType
	Name string
}

// Code declares a new error code under this type.
func (t *ErrorType) Code(name string) *Code {
	return &Code{typ: t, Name: name}
}

// Err is the concrete error value: a Code plus the detail that makes the
// message actionable (the offending token, byte, name, etc).
type Err struct {
	code   *Code
	detail string
}

// New constructs an Err carrying this code and an optional detail string.
func (c *Code) New(detail string) *Err {
	return &Err{code: c, detail: detail}
}

// Newf is New with fmt.Sprintf-style formatting of the detail.
func (c *Code) Newf(format string, a ...interface{}) *Err {
	return &Err{code: c, detail: fmt.Sprintf(format, a...)}
}

func (e *Err) Error() string {
	if e.detail == "" {
		return e.code.typ.Name + "." + e.code.Name
	}
	return fmt.Sprintf("%s.%s: %s", e.code.typ.Name, e.code.Name, e.detail)
}

// Code reports the Code identifying this error, for callers that want to
// switch on fault kind rather than match strings.
func (e *Err) Code() *Code {
	return e.code
}

// Is reports whether err was constructed from code c, by direct comparison
// of err's Code. No wrapping chain is walked: a wrapped *Err does not match.
func Is(err error, c *Code) bool {
	e, ok := err.(*Err)
	if !ok {
		return false
	}
	return e.code == c
}
