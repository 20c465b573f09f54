// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMem is reported when the region cannot hold the parse state.
	ErrNoMem = errors.New("region exhausted")

	// ErrTerminated is reported when a handler returned Stop.
	ErrTerminated = errors.New("terminated by handler")

	// ErrFinished is reported when Parse or Finish is called on a parser
	// whose document already ended, without an intervening Reset.
	ErrFinished = errors.New("parser is finished")

	// ErrUnexpectedEOF is reported by Finish when the input ends inside a
	// value.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError struct {
	Offset  int64 // stream offset of the offending byte
	Message string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at offset %d: %s", s.Offset, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// A scanError is reported by the literal scanner. Its offset is relative to
// the current chunk; the parser converts it into a *SyntaxError.
type scanError struct {
	pos int
	msg string
}

func (e scanError) Error() string { return e.msg }

func scanErrorf(pos int, msg string, args ...any) error {
	return scanError{pos: pos, msg: fmt.Sprintf(msg, args...)}
}
