// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

//go:build !debug

// Package debug supports tracing of parser state transitions. Tracing is
// compiled in only when the "debug" build tag is set.
package debug

// Printf does nothing unless the "debug" build tag is set.
func Printf(msg string, args ...any) {}

// On reports whether tracing is enabled.
const On = false
