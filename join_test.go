// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk_test

import (
	"testing"

	"github.com/creachadair/jchunk"
)

func TestJoiner(t *testing.T) {
	events := []jchunk.Event{
		{Kind: jchunk.ObjectOpen, Depth: 1},
		{Kind: jchunk.ObjectKey, Depth: 2, Key: []byte("k")},
		{Kind: jchunk.ObjectVal, Depth: 2, Key: []byte("k"), Data: []byte("ab")},
		{Kind: jchunk.ObjectVal, Depth: 2, Key: []byte("k"), Data: []byte("cd")},
		{Kind: jchunk.ObjectKey, Depth: 2, Index: 1, Key: []byte("")},
		{Kind: jchunk.ObjectVal, Depth: 2, Index: 1, Key: []byte(""), Data: []byte("")},
		{Kind: jchunk.ObjectKey, Depth: 2, Index: 2, Key: []byte("list")},
		{Kind: jchunk.ArrayOpen, Depth: 2, Index: 2, Key: []byte("list")},
		{Kind: jchunk.ArrayVal, Depth: 3, Data: []byte("1")},
		{Kind: jchunk.ArrayVal, Depth: 3, Data: []byte("2")},
		{Kind: jchunk.ArrayVal, Depth: 3, Index: 1, Data: []byte("3")},
		{Kind: jchunk.ArrayClose, Depth: 2, Index: 2},
		{Kind: jchunk.ObjectClose, Depth: 1},
		{Kind: jchunk.ArrayVal, Depth: 1, Index: 1, Data: []byte("tr")},
		{Kind: jchunk.ArrayVal, Depth: 1, Index: 1, Data: []byte("ue")},
	}
	const want = `
ObjectOpen 1/0
ObjectKey 2/0 key="k"
ObjectVal 2/0 key="k" data="abcd"
ObjectKey 2/1 key=""
ObjectVal 2/1 key="" data=""
ObjectKey 2/2 key="list"
ArrayOpen 2/2 key="list"
ArrayVal 3/0 data="12"
ArrayVal 3/1 data="3"
ArrayClose 2/2
ObjectClose 1/0
ArrayVal 1/1 data="true"`

	var rec recorder
	j := &jchunk.Joiner{H: &rec}
	for _, e := range events {
		if j.HandleEvent(e) != jchunk.Continue {
			t.Fatalf("HandleEvent(%v) did not continue", e)
		}
	}
	if j.Flush() != jchunk.Continue {
		t.Error("Flush did not continue")
	}
	if j.Flush() != jchunk.Continue {
		t.Error("Second Flush did not continue")
	}
	if diff := diffStrings(want, rec.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestJoinerStop(t *testing.T) {
	j := &jchunk.Joiner{H: jchunk.HandlerFunc(func(e jchunk.Event) jchunk.Action {
		if e.Kind == jchunk.ArrayVal {
			return jchunk.Stop
		}
		return jchunk.Continue
	})}
	if got := j.HandleEvent(jchunk.Event{Kind: jchunk.ArrayVal, Depth: 2, Data: []byte("x")}); got != jchunk.Continue {
		t.Errorf("Held value: got %v, want continue", got)
	}
	if got := j.HandleEvent(jchunk.Event{Kind: jchunk.ArrayClose, Depth: 1}); got != jchunk.Stop {
		t.Errorf("Flushed value: got %v, want stop", got)
	}
}
