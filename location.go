// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// Len reports the length of s in bytes.
func (s Span) Len() int { return s.End - s.Pos }

// truncate returns a copy of s shortened to at most n bytes. If n <= 0, s is
// returned unchanged.
func (s Span) truncate(n int) Span {
	if n > 0 && s.Len() > n {
		s.End = s.Pos + n
	}
	return s
}
