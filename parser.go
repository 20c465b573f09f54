// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"bytes"
	"fmt"

	"github.com/creachadair/jchunk/internal/debug"
)

// bom is the UTF-8 encoding of a byte-order mark.
var bom = []byte{0xEF, 0xBB, 0xBF}

// A Parser is an incremental JSON tokenizer. Input is supplied in chunks of
// any size by calls to Parse, and the parser reports the structure of the
// input to a Handler as it goes. A value split across chunks is continued on
// the next call.
//
// The parser does not allocate. Parse state that must survive from one call
// to the next is stored in a region, a byte slice owned by the caller and
// passed to each call. The prefix of the region holds the stack of open
// containers, 8 bytes per level of nesting. The space following the stack
// holds the name of the object member in progress, if it was split across
// chunks. If the region is too small, Parse reports NoMem; the caller may
// then copy the contents of the region into a larger one and call Parse
// again with the same chunk. The caller must not otherwise modify the region
// while a document is in progress.
//
// A Parser is not safe for concurrent use by multiple goroutines.
type Parser struct {
	// Options, preserved by Reset.
	lenient  bool
	maxKey   int
	omitKeys bool

	status Status
	err    error
	ended  bool // Finish was called

	off       int   // offset of the next unread byte of the chunk
	streamOff int64 // total length of the chunks fully consumed
	depth     int   // depth of the top node, or -1 before the root exists

	literal literalKind // kind of the literal being scanned
	emitted bool        // whether an event was reported for the literal
	scan    scanner
	key     keyRef
	retry   retryKey

	stk stack // the current region, valid during a call
}

// keyWhere records where the bytes of a pending member name are stored.
type keyWhere byte

const (
	keyNone     keyWhere = iota // no member name pending
	keyInChunk                  // a span of the current chunk
	keyInRegion                 // a span of the region, after the stack
)

type keyRef struct {
	where keyWhere
	Span
}

// A retryKey records a fragment of a member name that did not fit into the
// region. It is added to the name on the next call to Parse.
type retryKey struct {
	ok   bool
	frag fragment
	done bool
}

// New constructs a new Parser in its initial state. By default the parser is
// strict, member names are not truncated, and ObjectKey events are reported.
func New() *Parser {
	p := new(Parser)
	p.Reset()
	return p
}

// Lenient configures the parser to accept (true) or reject (false) unquoted
// member names and values. In lenient mode a ":" also terminates a primitive,
// and missing or repeated commas are not reported.
func (p *Parser) Lenient(ok bool) { p.lenient = ok; p.scan.lenient = ok }

// SetMaxKeyLen limits the number of bytes of a member name reported in
// events to n. Excess bytes are dropped. If n <= 0, names are not truncated.
func (p *Parser) SetMaxKeyLen(n int) { p.maxKey = max(n, 0) }

// OmitKeyEvents configures the parser to suppress (true) or report (false)
// ObjectKey events. The member name is still reported with the value.
func (p *Parser) OmitKeyEvents(ok bool) { p.omitKeys = ok }

// Reset discards the state of p so that a new document can be parsed. The
// options set on p are preserved.
func (p *Parser) Reset() {
	*p = Parser{
		lenient:  p.lenient,
		maxKey:   p.maxKey,
		omitKeys: p.omitKeys,
		depth:    -1,
		scan:     scanner{lenient: p.lenient},
	}
}

// Status reports the status of the most recent call to Parse or Finish.
func (p *Parser) Status() Status { return p.status }

// Err reports the error corresponding to the most recent status of p. It
// returns a *SyntaxError if the input is malformed, ErrTerminated if a
// handler stopped the parse, ErrNoMem if the region is full, and otherwise
// nil.
func (p *Parser) Err() error { return p.err }

// StreamOffset reports the total length of the chunks consumed by p.
func (p *Parser) StreamOffset() int64 { return p.streamOff }

// Depth reports the current nesting depth of p. It is 0 between top-level
// values.
func (p *Parser) Depth() int { return max(p.depth, 0) }

// Parse consumes chunk, reporting events to h, and returns a status.
//
// Part means the chunk was consumed and either a value is still open or no
// top-level value has been seen yet. Success means the chunk was consumed, at
// least one top-level value is complete, and no value is open; further chunks
// may follow with whitespace or more top-level values. NoMem means region is
// too small: the caller must grow it (preserving its contents) and call Parse
// again with the same chunk. Invalid and Terminate end the document, as does
// a call to Finish, and p must then be Reset before it accepts more input.
//
// Parse panics if h == nil.
func (p *Parser) Parse(chunk, region []byte, h Handler) Status {
	if h == nil {
		panic("jchunk: nil handler")
	}
	if p.ended || p.status.IsFinal() {
		return p.finished()
	}
	if p.status != NoMem {
		p.off = 0
	}
	p.status, p.err = Part, nil
	p.stk = region
	defer func() { p.stk = nil }()

	if p.depth < 0 {
		if !p.stk.fits(0) {
			p.noMem()
			return p.status
		}
		p.stk.init(0, ArrayOpen)
		p.depth = 0
	}
	if p.retry.ok {
		r := p.retry
		p.retry = retryKey{}
		if !p.keyFragment(chunk, r.frag, r.done, h) {
			return p.status
		}
	}
	if p.off == 0 && p.streamOff == 0 && bytes.HasPrefix(chunk, bom) {
		p.off = len(bom)
	}

	for p.off < len(chunk) {
		ok := true
		switch top := p.stk.kind(p.depth); top {
		case ArrayVal, ObjectVal:
			ok = p.value(chunk, top, h)
		case ObjectKey:
			ok = p.objectKey(chunk, h)
		default:
			p.skipSpace(chunk)
			if p.off < len(chunk) {
				ok = p.structural(chunk, top, h)
			}
		}
		if !ok {
			return p.status
		}
	}
	return p.endChunk(chunk)
}

// Finish reports the end of the input to p, and returns Success if the input
// was complete. A primitive at the end of the input is complete; anything
// else still open is reported as Invalid. If the previous call reported
// NoMem, Finish reports NoMem again and the caller must first complete that
// call. After Finish, p must be Reset before it accepts more input.
func (p *Parser) Finish(region []byte) Status {
	if p.status == NoMem {
		return NoMem
	} else if p.status.IsFinal() {
		return p.finished()
	}
	p.ended = true
	if p.depth < 0 {
		p.status = Success
		return p.status
	}
	p.stk = region
	defer func() { p.stk = nil }()

	switch top := p.stk.kind(p.depth); top {
	case ArrayVal, ObjectVal:
		if p.literal != primitive {
			return p.eof("unterminated string")
		} else if !p.scan.reg.empty() {
			return p.eof("incomplete sequence %q in value", p.scan.reg.bytes())
		}
		p.endLiteral(top)
	case ObjectKey:
		return p.eof("incomplete member name")
	}
	if p.depth != 0 {
		return p.eof("unclosed %v", p.stk.kind(p.depth))
	}
	p.status = Success
	return p.status
}

// structural handles the byte at the current offset, which is not
// whitespace, when the top of the stack is a container or a member colon.
func (p *Parser) structural(chunk []byte, top Kind, h Handler) bool {
	switch top {
	case ArrayOpen:
		return p.arrayOpen(chunk, h)
	case ObjectOpen:
		return p.objectOpen(chunk, h)
	case ObjectComma:
		return p.startValue(chunk, h)
	}
	panic(fmt.Sprintf("jchunk: unexpected node kind %v", top))
}

func (p *Parser) arrayOpen(chunk []byte, h Handler) bool {
	switch c := chunk[p.off]; c {
	case ']':
		if p.depth == 0 {
			return p.syntaxf("unexpected %q at top level", c)
		} else if p.strict() && p.stk.count(p.depth) > 0 && !p.stk.member(p.depth) {
			return p.syntaxf("unexpected %q after comma", c)
		}
		return p.close(ArrayClose, h)
	case ',':
		if p.depth == 0 {
			// Top-level values are separated by whitespace only.
			if !p.lenient {
				return p.syntaxf("unexpected %q at top level", c)
			}
			p.off++
			return true
		} else if p.strict() && !p.stk.member(p.depth) {
			return p.syntaxf("unexpected %q", c)
		}
		p.stk.comma(p.depth)
		p.off++
		return true
	case '}', ':':
		return p.syntaxf("unexpected %q", c)
	}
	return p.startValue(chunk, h)
}

func (p *Parser) objectOpen(chunk []byte, h Handler) bool {
	switch c := chunk[p.off]; c {
	case '}':
		if p.key.where != keyNone {
			return p.syntaxf("missing value for member")
		} else if p.strict() && p.stk.count(p.depth) > 0 && !p.stk.member(p.depth) {
			return p.syntaxf("unexpected %q after comma", c)
		}
		return p.close(ObjectClose, h)
	case ',':
		if p.key.where != keyNone {
			return p.syntaxf("missing value for member")
		} else if p.strict() && !p.stk.member(p.depth) {
			return p.syntaxf("unexpected %q", c)
		}
		p.stk.comma(p.depth)
		p.off++
		return true
	case ':':
		if p.key.where == keyNone {
			return p.syntaxf("unexpected %q without member name", c)
		} else if !p.stk.fits(p.depth + 1) {
			return p.noMem()
		}
		p.push(ObjectComma)
		p.off++
		return true
	case '"':
		return p.startKey(quoted)
	case '[', '{', ']':
		return p.syntaxf("unexpected %q in object", c)
	}
	if c := chunk[p.off]; !p.lenient {
		return p.syntaxf("unquoted member name")
	} else if isDelim(c, true) {
		return p.syntaxf("unexpected %q in object", c)
	}
	return p.startKey(primitive)
}

func (p *Parser) startKey(kind literalKind) bool {
	if p.key.where != keyNone {
		return p.syntaxf("missing %q after member name", ':')
	} else if p.strict() && p.stk.member(p.depth) {
		return p.syntaxf("missing comma before member name")
	} else if !p.stk.fits(p.depth + 1) {
		return p.noMem()
	}
	p.push(ObjectKey)
	p.beginLiteral(kind)
	return true
}

// startValue begins the value whose first byte is at the current offset. In
// an array the new node is pushed; after a member name the new node replaces
// the ObjectComma node, and the member name is attached to it.
func (p *Parser) startValue(chunk []byte, h Handler) bool {
	member := p.stk.kind(p.depth) == ObjectComma
	d := p.depth
	if !member {
		if p.strict() && p.stk.member(p.depth) {
			return p.syntaxf("missing comma before value")
		}
		d++
	}
	if !p.stk.fits(d) {
		return p.noMem()
	}

	c := chunk[p.off]
	switch {
	case c == '[' || c == '{':
		kind := ArrayOpen
		if c == '{' {
			kind = ObjectOpen
		}
		var key []byte
		if member {
			key = p.keyBytes(chunk)
			p.replace(kind)
		} else {
			p.push(kind)
		}
		if !p.emit(h, kind, key, nil) {
			return false
		}
		p.key = keyRef{}
		p.off++
		return true
	case c == '"':
		// ok, string
	case isDelim(c, true):
		return p.syntaxf("unexpected %q, expected value", c)
	case !p.lenient && !isPrimitiveStart(c):
		return p.syntaxf("invalid character %q, expected value", c)
	}

	kind := primitive
	if c == '"' {
		kind = quoted
	}
	if member {
		p.replace(ObjectVal)
	} else {
		p.push(ArrayVal)
	}
	p.beginLiteral(kind)
	return true
}

// isPrimitiveStart reports whether c may begin a number, true, false, or
// null.
func isPrimitiveStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == 't' || c == 'f' || c == 'n'
}

// value scans the next fragment of an array element or member value.
func (p *Parser) value(chunk []byte, top Kind, h Handler) bool {
	frag, next, res, err := p.scan.scan(p.literal, chunk, p.off)
	if err != nil {
		return p.scanFailed(err)
	}
	p.off = next

	text := p.scan.text(chunk, frag)
	if len(text) != 0 || (res == scanDone && !p.emitted) {
		var key []byte
		if top == ObjectVal {
			key = p.keyBytes(chunk)
		}
		p.emitted = true
		if !p.emit(h, top, key, text) {
			return false
		}
	}
	if res == scanDone {
		p.endLiteral(top)
	}
	return true
}

// objectKey scans the next fragment of a member name.
func (p *Parser) objectKey(chunk []byte, h Handler) bool {
	frag, next, res, err := p.scan.scan(p.literal, chunk, p.off)
	if err != nil {
		return p.scanFailed(err)
	}
	p.off = next
	return p.keyFragment(chunk, frag, res == scanDone, h)
}

// keyFragment adds frag to the pending member name. If the name is complete,
// it reports an ObjectKey event and pops the ObjectKey node.
func (p *Parser) keyFragment(chunk []byte, frag fragment, done bool, h Handler) bool {
	if done && !frag.fromReg && p.key.where == keyNone {
		// The whole name is in the chunk; refer to it in place.
		p.key = keyRef{where: keyInChunk, Span: frag.truncate(p.maxKey)}
	} else if !p.appendKey(p.scan.text(chunk, frag)) {
		p.retry = retryKey{ok: true, frag: frag, done: done}
		return false
	}
	if !done {
		return true
	}
	if !p.omitKeys && !p.emit(h, ObjectKey, p.keyBytes(chunk), nil) {
		return false
	}
	p.pop()
	return true
}

// appendKey appends b to the copy of the pending member name in the region,
// starting a new copy if necessary.
func (p *Parser) appendKey(b []byte) bool {
	key := p.key
	if key.where != keyInRegion {
		base := p.keyBase()
		key = keyRef{where: keyInRegion, Span: Span{Pos: base, End: base}}
	}
	if p.maxKey > 0 {
		b = b[:min(len(b), max(p.maxKey-key.Len(), 0))]
	}
	if key.End+len(b) > len(p.stk) {
		return p.noMem()
	}
	key.End += copy(p.stk[key.End:], b)
	p.key = key
	return true
}

// persistKey copies a pending member name that refers to chunk into the
// region, so that it survives the end of the call.
func (p *Parser) persistKey(chunk []byte) bool {
	b := chunk[p.key.Pos:p.key.End]
	base := p.keyBase()
	if base+len(b) > len(p.stk) {
		return p.noMem()
	}
	p.key = keyRef{where: keyInRegion, Span: Span{Pos: base, End: base + copy(p.stk[base:], b)}}
	return true
}

// keyBase returns the region offset where a persisted member name is stored,
// the first byte past the node of the member.
func (p *Parser) keyBase() int {
	d := p.depth
	if p.stk.kind(d) == ObjectOpen {
		d++
	}
	return (d + 1) * nodeSize
}

func (p *Parser) keyBytes(chunk []byte) []byte {
	switch p.key.where {
	case keyInChunk:
		return chunk[p.key.Pos:p.key.End]
	case keyInRegion:
		return p.stk[p.key.Pos:p.key.End]
	}
	return nil
}

func (p *Parser) beginLiteral(kind literalKind) {
	p.literal = kind
	p.emitted = false
	if kind == quoted {
		p.off++
	}
}

// endLiteral pops the node of a completed value.
func (p *Parser) endLiteral(top Kind) {
	p.pop()
	p.emitted = false
	if top == ObjectVal {
		p.key = keyRef{}
	}
}

func (p *Parser) close(kind Kind, h Handler) bool {
	if !p.emit(h, kind, nil, nil) {
		return false
	}
	p.pop()
	p.off++
	return true
}

// endChunk finishes a call to Parse after the chunk is fully consumed.
func (p *Parser) endChunk(chunk []byte) Status {
	if p.key.where == keyInChunk && !p.persistKey(chunk) {
		return p.status
	}
	p.streamOff += int64(len(chunk))
	p.off = 0
	if p.depth == 0 && p.stk.count(0) > 0 {
		p.status = Success
	}
	return p.status
}

func (p *Parser) skipSpace(chunk []byte) {
	for p.off < len(chunk) && isSpace(chunk[p.off]) {
		p.off++
	}
}

func (p *Parser) strict() bool { return !p.lenient && p.depth > 0 }

func (p *Parser) push(kind Kind) {
	p.stk.markMember(p.depth)
	p.depth++
	p.stk.init(p.depth, kind)
	debug.Printf("push %v depth=%d", kind, p.depth)
}

func (p *Parser) replace(kind Kind) {
	p.stk.init(p.depth, kind)
	debug.Printf("replace %v depth=%d", kind, p.depth)
}

func (p *Parser) pop() {
	debug.Printf("pop %v depth=%d", p.stk.kind(p.depth), p.depth)
	p.depth--
	if p.depth == 0 {
		p.stk.comma(0) // each top-level value has its own index
	}
}

// emit reports an event for the node at the top of the stack.
func (p *Parser) emit(h Handler, kind Kind, key, data []byte) bool {
	e := Event{
		Kind:   kind,
		Depth:  p.depth,
		Index:  p.stk.count(p.depth - 1),
		Key:    key,
		Data:   data,
		Offset: p.streamOff + int64(p.off),
	}
	if debug.On {
		debug.Printf("event %v", e)
	}
	if h.HandleEvent(e) == Stop {
		p.status, p.err = Terminate, ErrTerminated
		return false
	}
	return true
}

func (p *Parser) noMem() bool {
	debug.Printf("no memory: region=%d depth=%d", len(p.stk), p.depth)
	p.status, p.err = NoMem, ErrNoMem
	return false
}

func (p *Parser) syntaxf(msg string, args ...any) bool {
	return p.fail(p.off, nil, msg, args...)
}

func (p *Parser) scanFailed(err error) bool {
	se := err.(scanError)
	return p.fail(se.pos, nil, "%v", se)
}

func (p *Parser) fail(pos int, err error, msg string, args ...any) bool {
	p.status = Invalid
	p.err = &SyntaxError{
		Offset:  p.streamOff + int64(pos),
		Message: fmt.Sprintf(msg, args...),
		err:     err,
	}
	debug.Printf("invalid: %v", p.err)
	return false
}

func (p *Parser) eof(msg string, args ...any) Status {
	p.fail(0, ErrUnexpectedEOF, msg, args...)
	return p.status
}

// finished reports misuse of a parser whose document has ended.
func (p *Parser) finished() Status {
	if p.status != Invalid {
		p.status, p.err = Invalid, ErrFinished
	}
	return p.status
}
