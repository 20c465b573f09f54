// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"fmt"
	"strings"
)

// An Event describes one structural position in the input.
//
// The Key and Data slices of an Event are only valid for the duration of the
// HandleEvent call that receives them. They may alias the caller's chunk or
// region. If the handler needs to retain them after it returns, it must copy
// the relevant data.
type Event struct {
	Kind  Kind // the kind of position
	Depth int  // nesting depth; top-level values are at depth 1
	Index int  // position among the siblings of the enclosing container

	// For ObjectKey and ObjectVal events, and for the ArrayOpen and
	// ObjectOpen events of a container that is an object member, Key is the
	// raw text of the member name (without quotes). Otherwise Key is nil.
	Key []byte

	// For ArrayVal and ObjectVal events, Data is a fragment of the raw text
	// of the value. A string value does not include its quotes, and its
	// escapes are not decoded. A value split across chunks may be reported by
	// several consecutive events with the same Kind, Depth, and Index.
	Data []byte

	// The stream offset at the time of the event.
	Offset int64
}

func (e Event) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v %d/%d", e.Kind, e.Depth, e.Index)
	if e.Key != nil {
		fmt.Fprintf(&sb, " key=%q", e.Key)
	}
	if e.Kind == ArrayVal || e.Kind == ObjectVal {
		fmt.Fprintf(&sb, " data=%q", e.Data)
	}
	return sb.String()
}

// A Handler handles events from parsing an input stream. If HandleEvent
// returns Stop, parsing ends with status Terminate.
type Handler interface {
	HandleEvent(Event) Action
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Event) Action

// HandleEvent implements the Handler interface by calling f.
func (f HandlerFunc) HandleEvent(e Event) Action { return f(e) }

// Flusher is an optional interface that a Handler may implement to learn that
// no value is open. A Stream calls Flush after each chunk that leaves a
// complete top-level value, and at the end of a successful parse. If Flush
// returns Stop, parsing ends.
type Flusher interface {
	Flush() Action
}
