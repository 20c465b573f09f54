// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

// Kind is the type of a structural position reported to a Handler.
type Kind byte

// Constants defining the valid Kind values.
const (
	ArrayOpen   Kind = iota // open bracket "["
	ArrayVal                // literal element of an array
	ArrayClose              // close bracket "]"
	ObjectOpen              // open brace "{"
	ObjectKey               // member name of an object
	ObjectComma             // between a member name and its value (":")
	ObjectVal               // literal value of an object member
	ObjectClose             // close brace "}"

	// Do not modify the order of these constants without updating the node
	// word layout in stack.go, which reserves three bits for a Kind.
)

var kindStr = [...]string{
	ArrayOpen:   "ArrayOpen",
	ArrayVal:    "ArrayVal",
	ArrayClose:  "ArrayClose",
	ObjectOpen:  "ObjectOpen",
	ObjectKey:   "ObjectKey",
	ObjectComma: "ObjectComma",
	ObjectVal:   "ObjectVal",
	ObjectClose: "ObjectClose",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return "invalid kind"
	}
	return kindStr[v]
}

// IsLiteral reports whether k marks a position whose events carry literal
// text (a value or a member name).
func (k Kind) IsLiteral() bool { return k == ArrayVal || k == ObjectKey || k == ObjectVal }

// Status is the outcome of a call to Parse or Finish.
type Status byte

// Constants defining the valid Status values.
const (
	Part      Status = iota // more input is needed
	Success                 // a top-level value is complete and none is open
	NoMem                   // the region is too small; grow it and call again
	Invalid                 // the input is malformed, or the parser is misused
	Terminate               // a handler asked to stop
)

var statusStr = [...]string{
	Part:      "part",
	Success:   "success",
	NoMem:     "no memory",
	Invalid:   "invalid",
	Terminate: "terminate",
}

func (s Status) String() string {
	v := int(s)
	if v >= len(statusStr) {
		return "invalid status"
	}
	return statusStr[v]
}

// IsFinal reports whether s ends the current document, so that the parser
// must be Reset before it accepts more input.
func (s Status) IsFinal() bool { return s == Invalid || s == Terminate }

// Action is the result of a Handler method, telling the parser whether to
// continue.
type Action byte

const (
	Continue Action = iota // keep parsing
	Stop                   // abort parsing with status Terminate
)
