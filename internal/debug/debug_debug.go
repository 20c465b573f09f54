// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

//go:build debug

package debug

import "log"

// Printf logs a trace message.
func Printf(msg string, args ...any) {
	log.Printf("jchunk: "+msg, args...)
}

// On reports whether tracing is enabled.
const On = true
