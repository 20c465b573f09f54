// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "unicode/utf8"

// literalKind distinguishes quoted strings from bare primitives (numbers,
// true, false, null, and unquoted member names in lenient mode).
type literalKind byte

const (
	primitive literalKind = iota
	quoted
)

// scanResult reports whether a literal ended within the scanned fragment.
type scanResult byte

const (
	scanBroken scanResult = iota // the literal continues past the fragment
	scanDone                     // the literal is complete
)

// A fragment is a piece of literal text. Its span refers either to the
// current chunk, or to the resolved output of the scanner's register.
type fragment struct {
	Span
	fromReg bool
}

// A scanner recognizes the text of literals across chunk boundaries. An
// escape or multi-byte sequence interrupted by the end of a chunk is held in
// the register until the following chunk completes it.
type scanner struct {
	reg register

	// The most recent completed register sequence. It is kept separate from
	// the register so that a fragment referring to it stays valid until the
	// next sequence completes.
	out  [6]byte
	nout int

	lenient bool
}

// text returns the bytes of f, which must have been returned by the most
// recent call to scan on the same chunk.
func (s *scanner) text(chunk []byte, f fragment) []byte {
	if f.fromReg {
		return s.out[f.Pos:f.End]
	}
	return chunk[f.Pos:f.End]
}

// isDelim reports whether c terminates a primitive.
func isDelim(c byte, lenient bool) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ']', '}':
		return true
	case ':':
		return lenient
	}
	return false
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// scan reads a literal of the given kind from chunk starting at off. It
// returns the fragment of literal text found, the offset following the
// fragment, and whether the literal is complete. The closing quote of a
// string is consumed but not included in the fragment. The delimiter of a
// primitive is not consumed.
func (s *scanner) scan(kind literalKind, chunk []byte, off int) (fragment, int, scanResult, error) {
	if !s.reg.empty() {
		return s.resume(kind, chunk, off)
	}
	pos := off
	for pos < len(chunk) {
		c := chunk[pos]
		switch {
		case c == '"':
			if kind == primitive {
				return fragment{}, pos, scanDone, scanErrorf(pos, "unexpected %q in value", c)
			}
			return chunkFragment(off, pos), pos + 1, scanDone, nil

		case kind == primitive && isDelim(c, s.lenient):
			return chunkFragment(off, pos), pos, scanDone, nil

		case c == '\\':
			n, err := s.escape(chunk, pos)
			if err != nil {
				return fragment{}, pos, scanDone, err
			} else if n == 0 {
				return chunkFragment(off, pos), len(chunk), scanBroken, nil
			}
			pos += n

		case c >= utf8.RuneSelf:
			n, err := s.multibyte(chunk, pos)
			if err != nil {
				return fragment{}, pos, scanDone, err
			} else if n == 0 {
				return chunkFragment(off, pos), len(chunk), scanBroken, nil
			}
			pos += n

		case c < ' ' && kind == quoted && !s.lenient:
			return fragment{}, pos, scanDone, scanErrorf(pos, "control character %#02x in string", c)

		default:
			pos++
		}
	}
	return chunkFragment(off, pos), pos, scanBroken, nil
}

func chunkFragment(pos, end int) fragment { return fragment{Span: Span{Pos: pos, End: end}} }

// escape checks the escape sequence beginning with the backslash at
// chunk[pos]. It returns the length of the sequence, or 0 if the sequence is
// cut off by the end of the chunk, in which case the register holds it.
func (s *scanner) escape(chunk []byte, pos int) (int, error) {
	if pos+1 == len(chunk) {
		s.reg.setBackslash()
		return 0, nil
	}
	switch e := chunk[pos+1]; e {
	case '"', '/', '\\', 'b', 'f', 'n', 'r', 't':
		return 2, nil
	case 'u':
		digits := chunk[pos+2 : min(pos+6, len(chunk))]
		for i, d := range digits {
			if !isHexDigit(d) {
				return 0, scanErrorf(pos+2+i, "invalid hex digit %q in escape", d)
			}
		}
		if len(digits) < 4 {
			s.reg.setUnicode(digits)
			return 0, nil
		}
		return 6, nil
	default:
		return 0, scanErrorf(pos+1, "invalid escape %q", e)
	}
}

// multibyte checks the UTF-8 sequence whose leading byte is chunk[pos]. It
// returns the length of the sequence, or 0 if the sequence is cut off by the
// end of the chunk, in which case the register holds it.
func (s *scanner) multibyte(chunk []byte, pos int) (int, error) {
	lead := chunk[pos]
	size := utf8Len(lead)
	if size == 0 {
		return 0, scanErrorf(pos, "invalid UTF-8 leading byte %#02x", lead)
	}
	cont := chunk[pos+1 : min(pos+size, len(chunk))]
	for i, b := range cont {
		if !isCont(b) {
			return 0, scanErrorf(pos+1+i, "invalid UTF-8 continuation byte %#02x", b)
		}
	}
	if len(cont) < size-1 {
		s.reg.setUTF8(lead, cont)
		return 0, nil
	}
	return size, nil
}

// resume continues the sequence held in the register with bytes from chunk
// starting at off. When the sequence completes, its text is returned as a
// register fragment.
func (s *scanner) resume(kind literalKind, chunk []byte, off int) (fragment, int, scanResult, error) {
	pos := off
	if s.reg.kind == regBackslash && pos < len(chunk) {
		switch e := chunk[pos]; e {
		case '"', '/', '\\', 'b', 'f', 'n', 'r', 't':
			s.reg.push(e)
		case 'u':
			s.reg.setUnicode(nil)
		default:
			return fragment{}, pos, scanDone, scanErrorf(pos, "invalid escape %q", e)
		}
		pos++
	}
	for s.reg.need() > 0 && pos < len(chunk) {
		b := chunk[pos]
		if s.reg.kind == regUnicode && !isHexDigit(b) {
			return fragment{}, pos, scanDone, scanErrorf(pos, "invalid hex digit %q in escape", b)
		} else if s.reg.kind == regUTF8 && !isCont(b) {
			return fragment{}, pos, scanDone, scanErrorf(pos, "invalid UTF-8 continuation byte %#02x", b)
		}
		s.reg.push(b)
		pos++
	}
	if s.reg.need() > 0 {
		return fragment{}, pos, scanBroken, nil
	}

	s.nout = copy(s.out[:], s.reg.bytes())
	s.reg.reset()
	frag := fragment{Span: Span{Pos: 0, End: s.nout}, fromReg: true}

	// If the literal ends right after the sequence, finish it here rather
	// than reporting an empty fragment on the next scan.
	if pos < len(chunk) {
		c := chunk[pos]
		if kind == quoted && c == '"' {
			return frag, pos + 1, scanDone, nil
		} else if kind == primitive && isDelim(c, s.lenient) {
			return frag, pos, scanDone, nil
		}
	}
	return frag, pos, scanBroken, nil
}
