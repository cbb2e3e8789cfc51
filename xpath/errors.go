// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Error kinds raised by the compiler and the evaluator.  Parse and
// static errors carry the 1-based rune offset into the expression via
// the SyntaxError payload.

package xpath

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrParse - the expression is not well-formed XPath.
	ErrParse = errors.NewKind("xpath parse error: %s")

	// ErrStatic - well-formed but invalid against the static context:
	// unbound prefix, unknown function or arity.
	ErrStatic = errors.NewKind("xpath static error: %s")

	// ErrDynamic - discovered only at evaluation time: division by
	// zero on exact types, cast failure, bad regex, cardinality
	// violation.
	ErrDynamic = errors.NewKind("xpath dynamic error: %s")

	// ErrType - operand types incompatible with the operator.
	ErrType = errors.NewKind("xpath type error: %s")
)

// SyntaxError pinpoints where in the expression a parse or static
// error was detected.
type SyntaxError struct {
	Offset   int // 1-based rune offset into the expression
	Desc     string
	Expected string // expected token(s), if known
}

func (e *SyntaxError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("at offset %d: %s (expected %s)",
			e.Offset, e.Desc, e.Expected)
	}
	return fmt.Sprintf("at offset %d: %s", e.Offset, e.Desc)
}

func newParseError(offset int, desc, expected string) error {
	serr := &SyntaxError{Offset: offset, Desc: desc, Expected: expected}
	return ErrParse.Wrap(serr, serr.Error())
}

func newStaticError(offset int, desc string) error {
	serr := &SyntaxError{Offset: offset, Desc: desc}
	return ErrStatic.Wrap(serr, serr.Error())
}

// ErrorOffset recovers the expression offset from a parse or static
// error, if one was recorded.
func ErrorOffset(err error) (int, bool) {
	for err != nil {
		if serr, ok := err.(*SyntaxError); ok {
			return serr.Offset, true
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			return 0, false
		}
		err = causer.Cause()
	}
	return 0, false
}
