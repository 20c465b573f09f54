// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Default sizes used by a Stream.
const (
	DefaultChunkSize   = 4096
	DefaultRegionSize  = 256
	DefaultRegionLimit = 1 << 20
)

// Stream is a stream parser that reads input from an io.Reader in chunks and
// delivers events to a Handler corresponding with the structure of the input.
//
// A Stream reads each chunk into the same buffer, so event data are only
// valid during the HandleEvent call that receives them. When the parser
// reports that its region is full, the Stream doubles the region, up to a
// limit, and resumes. The input may contain any number of top-level values.
type Stream struct {
	r      io.Reader
	p      *Parser
	chunk  []byte
	region []byte
	limit  int
}

// NewStream constructs a new Stream that consumes input from r.
func NewStream(r io.Reader) *Stream {
	return &Stream{
		r:      r,
		p:      New(),
		chunk:  make([]byte, DefaultChunkSize),
		region: make([]byte, DefaultRegionSize),
		limit:  DefaultRegionLimit,
	}
}

// Parser returns the parser used by s, so that its options may be set.
func (s *Stream) Parser() *Parser { return s.p }

// SetChunkSize sets the size of the chunks read from the input. If n <= 0,
// DefaultChunkSize is used.
func (s *Stream) SetChunkSize(n int) {
	if n <= 0 {
		n = DefaultChunkSize
	}
	s.chunk = make([]byte, n)
}

// SetRegionSize sets the initial size of the parser region. If n <= 0,
// DefaultRegionSize is used. It must be called before parsing begins.
func (s *Stream) SetRegionSize(n int) {
	if n <= 0 {
		n = DefaultRegionSize
	}
	s.region = make([]byte, n)
}

// SetRegionLimit sets the maximum size to which the parser region may grow.
// If n <= 0, DefaultRegionLimit is used.
func (s *Stream) SetRegionLimit(n int) {
	if n <= 0 {
		n = DefaultRegionLimit
	}
	s.limit = n
}

// Parse reads the input to the end and delivers events to h, until either an
// error occurs or the input is exhausted. The context is checked between
// chunks.
//
// In case of a syntax error, the returned error has type [*SyntaxError]. If
// h stops the parse, Parse reports ErrTerminated. If the region would have to
// exceed its limit, Parse reports an error wrapping ErrNoMem. Otherwise, any
// error from the reader is returned.
func (s *Stream) Parse(ctx context.Context, h Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		nr, err := s.r.Read(s.chunk)
		if nr > 0 {
			if perr := s.parseChunk(s.chunk[:nr], h); perr != nil {
				return perr
			}
		}
		if errors.Is(err, io.EOF) {
			return s.finish(h)
		} else if err != nil {
			return err
		}
	}
}

// parseChunk delivers one chunk to the parser, growing the region as needed.
func (s *Stream) parseChunk(chunk []byte, h Handler) error {
	for {
		switch s.p.Parse(chunk, s.region, h) {
		case Part:
			return nil
		case Success:
			return s.flush(h)
		case NoMem:
			if err := s.grow(); err != nil {
				return err
			}
		default:
			return s.p.Err()
		}
	}
}

func (s *Stream) finish(h Handler) error {
	if s.p.Finish(s.region) != Success {
		return s.p.Err()
	}
	return s.flush(h)
}

// flush reports to h that no value is open, if h is a Flusher.
func (s *Stream) flush(h Handler) error {
	if f, ok := h.(Flusher); ok && f.Flush() == Stop {
		return ErrTerminated
	}
	return nil
}

// grow doubles the size of the region, preserving its contents.
func (s *Stream) grow() error {
	if len(s.region) >= s.limit {
		return fmt.Errorf("region limit %d bytes: %w", s.limit, ErrNoMem)
	}
	next := make([]byte, min(max(2*len(s.region), nodeSize), s.limit))
	copy(next, s.region)
	s.region = next
	return nil
}
