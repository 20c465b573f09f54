// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jchunk implements an incremental JSON tokenizer for input that
// arrives in chunks of arbitrary size.
//
// # Parsing
//
// The Parser type consumes input one chunk at a time and reports the
// structure of the input to a Handler. A chunk boundary may fall anywhere,
// including inside a string escape or a multi-byte UTF-8 character; the
// parser resumes where it stopped on the next call. The parser does not
// allocate: state that must survive from one call to the next is kept in a
// region of memory supplied by the caller.
//
//	p := jchunk.New()
//	region := make([]byte, 1024)
//	for chunk := range chunks {
//	   switch p.Parse(chunk, region, handler) {
//	   case jchunk.Part, jchunk.Success:
//	      continue
//	   default:
//	      log.Fatalf("Parse failed: %v", p.Err())
//	   }
//	}
//	if p.Finish(region) != jchunk.Success {
//	   log.Fatalf("Parse failed: %v", p.Err())
//	}
//
// When Parse reports NoMem, the caller should copy the region into a larger
// one and call Parse again with the same chunk.
//
// # Streaming
//
// The Stream type wraps a Parser to read from an io.Reader. It manages the
// chunk buffer and the region, growing the region as needed:
//
//	s := jchunk.NewStream(input)
//	if err := s.Parse(ctx, handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// # Handlers
//
// A Handler receives one Event for each structural position of the input:
//
//	Kind        | Reported at
//	----------- | ------------------------------------------------
//	ArrayOpen   | "["
//	ArrayVal    | each fragment of an array element
//	ArrayClose  | "]"
//	ObjectOpen  | "{"
//	ObjectKey   | a complete member name
//	ObjectVal   | each fragment of a member value
//	ObjectClose | "}"
//
// Each event reports its nesting depth (1 for a top-level value), its index
// among its siblings, and for object members the raw text of the member
// name. The text of literals is not decoded; see the Joiner type to receive
// each literal as a single event.
//
// The Key and Data fields of an event are only valid for the duration of
// the handler call; the handler must copy any data it needs to retain beyond
// the lifetime of the call.
package jchunk
