// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/creachadair/jchunk"
)

func TestStream(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},

		{`{"a":15}`, `
ObjectOpen 1/0
ObjectKey 2/0 key="a"
ObjectVal 2/0 key="a" data="15"
ObjectClose 1/0`},

		{`{"x":null, "y":["some long string", true]}`, `
ObjectOpen 1/0
ObjectKey 2/0 key="x"
ObjectVal 2/0 key="x" data="null"
ObjectKey 2/1 key="y"
ArrayOpen 2/1 key="y"
ArrayVal 3/0 data="some long string"
ArrayVal 3/1 data="true"
ArrayClose 2/1
ObjectClose 1/0`},

		// A sequence of documents, as in JSON Lines.
		{"[1]\n[2]\n{}\n", `
ArrayOpen 1/0
ArrayVal 2/0 data="1"
ArrayClose 1/0
ArrayOpen 1/1
ArrayVal 2/0 data="2"
ArrayClose 1/1
ObjectOpen 1/2
ObjectClose 1/2`},
		{"1\n2\n", "ArrayVal 1/0 data=\"1\"\nArrayVal 1/1 data=\"2\""},
		{"\"ab\" \"cd\"\ntrue", `
ArrayVal 1/0 data="ab"
ArrayVal 1/1 data="cd"
ArrayVal 1/2 data="true"`},
		{"  [1]  \n", "ArrayOpen 1/0\nArrayVal 2/0 data=\"1\"\nArrayClose 1/0"},
	}

	for _, test := range tests {
		for _, size := range []int{1, 3, 4096} {
			st := jchunk.NewStream(strings.NewReader(test.input))
			st.SetChunkSize(size)
			var rec recorder
			j := &jchunk.Joiner{H: &rec}
			if err := st.Parse(context.Background(), j); err != nil {
				t.Errorf("Parse %#q (chunk %d) failed: %v", test.input, size, err)
			}
			if diff := diffStrings(test.want, rec.output()); diff != "" {
				t.Errorf("Input: %#q (chunk %d)\nOutput: (-want, +got)\n%s", test.input, size, diff)
			}
		}
	}
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		input string
		estr  string
	}{
		{`{`, `at offset 1: unclosed ObjectOpen`},
		{`}`, `at offset 0: unexpected '}'`},
		{`{"true":}`, `at offset 8: unexpected '}', expected value`},
		{`[15,]`, `at offset 4: unexpected ']' after comma`},
		{`"what did you`, `at offset 13: unterminated string`},
		{"[1]\n[2,]", `at offset 7: unexpected ']' after comma`},
	}
	for _, test := range tests {
		st := jchunk.NewStream(iotest.OneByteReader(strings.NewReader(test.input)))
		err := st.Parse(context.Background(), jchunk.HandlerFunc(ignore))
		var serr *jchunk.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse %#q: got error %v, want *SyntaxError", test.input, err)
			continue
		}
		if got := serr.Error(); got != test.estr {
			t.Errorf("Parse %#q: got error %q, want %q", test.input, got, test.estr)
		}
	}
}

func TestStreamRegionGrowth(t *testing.T) {
	input := strings.Repeat("[", 100) + strings.Repeat("]", 100)

	st := jchunk.NewStream(strings.NewReader(input))
	st.SetChunkSize(7)
	st.SetRegionSize(16)
	var depth int
	if err := st.Parse(context.Background(), jchunk.HandlerFunc(func(e jchunk.Event) jchunk.Action {
		depth = max(depth, e.Depth)
		return jchunk.Continue
	})); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if depth != 100 {
		t.Errorf("Maximum depth: got %d, want 100", depth)
	}

	// With a limit, growth eventually fails.
	st = jchunk.NewStream(strings.NewReader(input))
	st.SetRegionSize(16)
	st.SetRegionLimit(256)
	if err := st.Parse(context.Background(), jchunk.HandlerFunc(ignore)); !errors.Is(err, jchunk.ErrNoMem) {
		t.Errorf("Parse with region limit: got %v, want %v", err, jchunk.ErrNoMem)
	}
}

func TestStreamStop(t *testing.T) {
	st := jchunk.NewStream(strings.NewReader(`[1, 2, 3]`))
	var n int
	err := st.Parse(context.Background(), jchunk.HandlerFunc(func(e jchunk.Event) jchunk.Action {
		if e.Kind == jchunk.ArrayVal {
			n++
			return jchunk.Stop
		}
		return jchunk.Continue
	}))
	if !errors.Is(err, jchunk.ErrTerminated) {
		t.Errorf("Parse: got %v, want %v", err, jchunk.ErrTerminated)
	}
	if n != 1 {
		t.Errorf("Handler saw %d values, want 1", n)
	}
}

func TestStreamContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := jchunk.NewStream(strings.NewReader(`[]`))
	if err := st.Parse(ctx, jchunk.HandlerFunc(ignore)); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse: got %v, want %v", err, context.Canceled)
	}
}

func TestStreamReadError(t *testing.T) {
	r := io.MultiReader(strings.NewReader(`[1,`), iotest.ErrReader(iotest.ErrTimeout))
	st := jchunk.NewStream(r)
	if err := st.Parse(context.Background(), jchunk.HandlerFunc(ignore)); !errors.Is(err, iotest.ErrTimeout) {
		t.Errorf("Parse: got %v, want %v", err, iotest.ErrTimeout)
	}
}

func TestStreamOffsets(t *testing.T) {
	var offsets []int64
	st := jchunk.NewStream(strings.NewReader("[1]\n[2]"))
	st.SetChunkSize(2)
	if err := st.Parse(context.Background(), jchunk.HandlerFunc(func(e jchunk.Event) jchunk.Action {
		if e.Kind == jchunk.ArrayOpen {
			offsets = append(offsets, e.Offset)
		}
		return jchunk.Continue
	})); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 4 {
		t.Errorf("ArrayOpen offsets: got %v, want [0 4]", offsets)
	}
}
