// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// regKind identifies what kind of split sequence a register holds.
type regKind byte

const (
	regEmpty     regKind = iota // no sequence in flight
	regBackslash                // a "\" ended the previous chunk
	regUnicode                  // a "\u" escape with 0-3 hex digits so far
	regUTF8                     // a UTF-8 leading byte with some continuation bytes
)

// A register holds an escape or multi-byte sequence that was split by a chunk
// boundary. The payload is the raw text of the sequence seen so far, so that
// it can be delivered verbatim once the sequence is complete:
//
//	regBackslash  buf[:1] == `\`
//	regUnicode    buf[:2] == `\u`, followed by the hex digits captured
//	regUTF8       buf[0] is the leading byte, followed by continuation bytes
//
// The longest sequence is six bytes: a \uXXXX escape, or the six-byte form
// permitted by RFC 2279.
type register struct {
	kind regKind
	n    int
	buf  [6]byte
}

func (r *register) empty() bool { return r.kind == regEmpty }

func (r *register) reset() { *r = register{} }

// bytes returns the raw text of the sequence captured so far.
func (r *register) bytes() []byte { return r.buf[:r.n] }

// digits returns the hex digits of a pending \u escape.
func (r *register) digits() []byte {
	if r.kind != regUnicode {
		return nil
	}
	return r.buf[2:r.n]
}

// leading returns the leading byte and the continuation bytes of a pending
// UTF-8 sequence.
func (r *register) leading() (byte, []byte) {
	if r.kind != regUTF8 {
		return 0, nil
	}
	return r.buf[0], r.buf[1:r.n]
}

// need reports how many more bytes complete the pending sequence.
func (r *register) need() int {
	switch r.kind {
	case regBackslash:
		return 2 - r.n
	case regUnicode:
		return 6 - r.n
	case regUTF8:
		return utf8Len(r.buf[0]) - r.n
	}
	return 0
}

func (r *register) push(b byte) { r.buf[r.n] = b; r.n++ }

func (r *register) setBackslash() {
	r.reset()
	r.kind = regBackslash
	r.push('\\')
}

func (r *register) setUnicode(digits []byte) {
	r.reset()
	r.kind = regUnicode
	r.push('\\')
	r.push('u')
	r.n += copy(r.buf[2:], digits)
}

func (r *register) setUTF8(lead byte, cont []byte) {
	r.reset()
	r.kind = regUTF8
	r.push(lead)
	r.n += copy(r.buf[1:], cont)
}

// utf8Len reports the length of the UTF-8 sequence introduced by the leading
// byte b, or 0 if b cannot begin a multi-byte sequence.
//
//	110xxxxx  2 bytes
//	1110xxxx  3 bytes
//	11110xxx  4 bytes
//	111110xx  5 bytes
//	1111110x  6 bytes
func utf8Len(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	case b&0xFC == 0xF8:
		return 5
	case b&0xFE == 0xFC:
		return 6
	}
	return 0
}

func isCont(b byte) bool { return b&0xC0 == 0x80 }

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
