// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// A Joiner is a Handler that reassembles literal values reported in several
// fragments, and forwards each value to H as a single event. Other events are
// forwarded unchanged.
//
// A Joiner holds each value until the next event shows that the value is
// complete. Call Flush at the end of the input to deliver the last value; a
// Stream does this automatically whenever no value is open.
//
// Consecutive fragments with the same Kind, Depth, and Index are joined. In
// lenient mode, two values of the same container separated by no comma share
// an index, and are joined unless an ObjectKey event separates them.
type Joiner struct {
	H Handler

	held bool  // whether cur is a value not yet delivered
	cur  Event // the held value, with Key and Data replaced by the buffers
	key  []byte
	data []byte
}

// HandleEvent implements the Handler interface.
func (j *Joiner) HandleEvent(e Event) Action {
	if j.held {
		if e.Kind == j.cur.Kind && e.Depth == j.cur.Depth && e.Index == j.cur.Index {
			j.data = append(j.data, e.Data...)
			j.cur.Offset = e.Offset
			return Continue
		} else if j.Flush() == Stop {
			return Stop
		}
	}
	if e.Kind != ArrayVal && e.Kind != ObjectVal {
		return j.H.HandleEvent(e)
	}
	j.held = true
	j.cur = e
	j.key = append(j.key[:0], e.Key...)
	j.data = append(j.data[:0], e.Data...)
	return Continue
}

// Flush delivers the held value, if any, to H and reports the result. If no
// value is held, Flush reports Continue.
func (j *Joiner) Flush() Action {
	if !j.held {
		return Continue
	}
	j.held = false
	e := j.cur
	if e.Key != nil {
		e.Key = j.key
		if e.Key == nil {
			e.Key = []byte{}
		}
	}
	e.Data = j.data
	return j.H.HandleEvent(e)
}
