// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package sqlfilter translates query documents into parameterized SQL.
//
// A query document is a JSON object describing an operation on a table:
//
//	{
//	  "resname":    "t1",
//	  "properties": ["col1", "col2"],
//	  "data":       ["v1", "v2"],
//	  "dataset":    [["v1", "v2"], ["v3", "v4"]],
//	  "filter":     ["AND", ["GE", "col1", 5], ["LIKE", "col2", "a%"]]
//	}
//
// All members are optional, and members with other names are ignored. A
// filter is an array whose first element names an operator. The logical
// operators AND and OR take one or more filters as operands; the others take
// a column name followed by values:
//
//	Operator             | Operands       | Condition
//	-------------------- | -------------- | ----------------------
//	BETWEEN, NOTBETWEEN  | col, lo, hi    | col BETWEEN ? AND ?
//	IN, NOTIN            | col, v1, ...   | col IN (?,...)
//	ISNULL, NOTNULL      | col            | col ISNULL
//	LIKE, NOTLIKE        | col, v         | col LIKE ?
//	MATCH, NOTMATCH      | col, v         | col MATCH ?
//	GT, LT, GE, LE       | col, v         | col > ?, col < ?, ...
//	EQ, NE               | col, v         | col == ?, col != ?
//
// The document is consumed as a stream of events from a jchunk parser, so
// it is never held in memory as a whole.
package sqlfilter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/jchunk"
	"github.com/creachadair/jchunk/internal/escape"
	"go4.org/mem"
)

// A Request is the translation of a query document.
type Request struct {
	Resource   string   // the table name ("resname")
	Properties []string // column names ("properties")
	Data       []any    // one row of values ("data")
	Dataset    [][]any  // rows of values ("dataset")

	// Condition is the translated filter, using "?" placeholders for the
	// values in Args. It is empty if the document has no filter, or if the
	// filter is an empty array.
	Condition string
	Args      []any
}

// Parse reads a query document from r and translates it.
func Parse(ctx context.Context, r io.Reader) (*Request, error) {
	return ParseStream(ctx, jchunk.NewStream(r))
}

// ParseStream reads a query document from s and translates it. The caller
// may configure s and its parser before calling ParseStream.
func ParseStream(ctx context.Context, s *jchunk.Stream) (*Request, error) {
	var b Builder
	if err := s.Parse(ctx, &jchunk.Joiner{H: &b}); err != nil {
		if b.err != nil {
			return nil, b.err
		}
		return nil, err
	}
	return b.Request()
}

// An Error reports a query document that is well-formed JSON but is not a
// valid request.
type Error struct {
	Offset  int64  // stream offset of the offending event
	Message string // description of the problem
}

func (e *Error) Error() string { return fmt.Sprintf("at offset %d: %s", e.Offset, e.Message) }

// ErrNoRequest is reported by Builder.Request if no document was seen.
var ErrNoRequest = errors.New("no request")

// A Builder is a jchunk.Handler that translates a query document. Each value
// must be delivered in a single event, so a Builder is normally used behind
// a jchunk.Joiner.
type Builder struct {
	req     Request
	started bool
	done    bool
	section section
	frames  []*frame
	err     error
}

type section byte

const (
	sectionNone section = iota
	sectionResource
	sectionProperties
	sectionData
	sectionDataset
	sectionFilter
)

var sectionNames = [...]string{
	sectionResource:   "resname",
	sectionProperties: "properties",
	sectionData:       "data",
	sectionDataset:    "dataset",
	sectionFilter:     "filter",
}

func findSection(key []byte) section {
	k := mem.B(key)
	for i, name := range sectionNames {
		if name != "" && k.EqualString(name) {
			return section(i)
		}
	}
	return sectionNone
}

// Request returns the translated request. It reports an error if the
// document was invalid or incomplete.
func (b *Builder) Request() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	} else if !b.started {
		return nil, ErrNoRequest
	} else if !b.done {
		return nil, errors.New("incomplete request")
	}
	req := b.req
	return &req, nil
}

// HandleEvent implements the jchunk.Handler interface.
func (b *Builder) HandleEvent(e jchunk.Event) jchunk.Action {
	if b.err != nil {
		return jchunk.Stop
	}
	if err := b.handle(e); err != nil {
		b.err = &Error{Offset: e.Offset, Message: err.Error()}
		return jchunk.Stop
	}
	return jchunk.Continue
}

func (b *Builder) handle(e jchunk.Event) error {
	if e.Depth == 1 {
		return b.top(e)
	}
	if e.Depth == 2 && e.Key != nil {
		b.section = findSection(e.Key)
	}
	if e.Kind == jchunk.ObjectKey {
		return nil
	}
	switch b.section {
	case sectionResource:
		if e.Kind != jchunk.ObjectVal {
			return errors.New("resname must be a string")
		}
		name := decodeString(e.Data)
		if !isIdent(mem.S(name)) {
			return fmt.Errorf("invalid resource name %q", name)
		}
		b.req.Resource = name

	case sectionProperties:
		if isOuterArray(e) {
			return nil
		} else if e.Depth != 3 || e.Kind != jchunk.ArrayVal {
			return errors.New("properties must be an array of column names")
		}
		if !isIdent(mem.B(e.Data)) {
			return fmt.Errorf("invalid column name %q", e.Data)
		}
		b.req.Properties = append(b.req.Properties, string(e.Data))

	case sectionData:
		if isOuterArray(e) {
			return nil
		} else if e.Depth != 3 || e.Kind != jchunk.ArrayVal {
			return errors.New("data must be an array of values")
		}
		b.req.Data = append(b.req.Data, decodeValue(e.Data))

	case sectionDataset:
		if isOuterArray(e) {
			return nil
		}
		switch {
		case e.Depth == 3 && e.Kind == jchunk.ArrayOpen:
			b.req.Dataset = append(b.req.Dataset, []any{})
		case e.Depth == 3 && e.Kind == jchunk.ArrayClose:
		case e.Depth == 4 && e.Kind == jchunk.ArrayVal:
			row := &b.req.Dataset[len(b.req.Dataset)-1]
			*row = append(*row, decodeValue(e.Data))
		default:
			return errors.New("dataset must be an array of arrays of values")
		}

	case sectionFilter:
		return b.filter(e)
	}
	return nil
}

// top handles events at depth 1, which must bracket a single object.
func (b *Builder) top(e jchunk.Event) error {
	switch e.Kind {
	case jchunk.ObjectOpen:
		if b.started {
			return errors.New("multiple requests in input")
		}
		b.started = true
	case jchunk.ObjectClose:
		b.done = true
	default:
		return errors.New("request must be a JSON object")
	}
	return nil
}

func isOuterArray(e jchunk.Event) bool {
	return e.Depth == 2 && (e.Kind == jchunk.ArrayOpen || e.Kind == jchunk.ArrayClose)
}

// A frame records the state of one filter array under construction.
type frame struct {
	op     Op
	n      int    // elements seen so far
	column string // column name, for comparison operators
	nargs  int    // values bound so far
	parts  []string
}

func (b *Builder) filter(e jchunk.Event) error {
	switch e.Kind {
	case jchunk.ArrayOpen:
		if e.Depth > 2 {
			up := b.frames[len(b.frames)-1]
			if up.n == 0 {
				return errors.New("filter operator must be a string")
			} else if !up.op.logical() {
				return fmt.Errorf("operand %d of %v must be a value", up.n, up.op)
			}
			up.n++
		}
		b.frames = append(b.frames, new(frame))

	case jchunk.ArrayVal:
		f := b.frames[len(b.frames)-1]
		idx := f.n
		f.n++
		switch {
		case idx == 0:
			op, ok := lookupOp(e.Data)
			if !ok {
				return fmt.Errorf("unknown filter operator %q", e.Data)
			}
			f.op = op
		case f.op.logical():
			return fmt.Errorf("operand %d of %v must be a filter", idx, f.op)
		case idx == 1:
			if !isIdent(mem.B(e.Data)) {
				return fmt.Errorf("invalid column name %q", e.Data)
			}
			f.column = string(e.Data)
		default:
			b.req.Args = append(b.req.Args, decodeValue(e.Data))
			f.nargs++
		}

	case jchunk.ArrayClose:
		f := b.frames[len(b.frames)-1]
		b.frames = b.frames[:len(b.frames)-1]
		if len(b.frames) == 0 && f.n == 0 {
			b.req.Condition = "" // an empty filter selects everything
			return nil
		}
		cond, err := f.render()
		if err != nil {
			return err
		}
		if len(b.frames) == 0 {
			b.req.Condition = cond
		} else {
			up := b.frames[len(b.frames)-1]
			up.parts = append(up.parts, cond)
		}

	default:
		if e.Depth == 2 {
			return errors.New("filter must be an array")
		}
		return errors.New("filter must not contain objects")
	}
	return nil
}

// render returns the condition text for a completed filter.
func (f *frame) render() (string, error) {
	want := func(n int) error {
		if f.n != n {
			return fmt.Errorf("%v requires %d operands, got %d", f.op, n-1, f.n-1)
		}
		return nil
	}
	switch f.op {
	case 0:
		return "", errors.New("empty filter")
	case And, Or:
		if len(f.parts) == 0 {
			return "", fmt.Errorf("%v requires at least one filter", f.op)
		}
		return "(" + strings.Join(f.parts, " "+f.op.String()+" ") + ")", nil
	case Between, NotBetween:
		if err := want(4); err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s ? AND ?)", f.column, f.op.sql()), nil
	case In, NotIn:
		if f.n < 3 {
			return "", fmt.Errorf("%v requires a column and at least one value", f.op)
		}
		marks := strings.Repeat(",?", f.nargs)[1:]
		return fmt.Sprintf("(%s %s (%s))", f.column, f.op.sql(), marks), nil
	case IsNull, NotNull:
		if err := want(2); err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s)", f.column, f.op.sql()), nil
	default:
		if err := want(3); err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s ?)", f.column, f.op.sql()), nil
	}
}

// isIdent reports whether s is a valid SQL identifier. A single dot is
// permitted to qualify a column name with a table name.
func isIdent(s mem.RO) bool {
	if s.Len() == 0 {
		return false
	}
	dots := 0
	for i := 0; i < s.Len(); i++ {
		switch c := s.At(i); {
		case c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0 && s.At(i-1) != '.':
		case c == '.' && i > 0 && i < s.Len()-1 && dots == 0:
			dots++
		default:
			return false
		}
	}
	return true
}

// decodeValue converts the raw text of a value into a Go value. The event
// stream does not distinguish a quoted string from a bare literal, so
// values are typed by their text: null, true, and false become nil and the
// corresponding bool, valid JSON numbers become json.Number, and all other
// text is a string with its escapes decoded.
func decodeValue(data []byte) any {
	v := mem.B(data)
	switch {
	case v.EqualString("null"):
		return nil
	case v.EqualString("true"):
		return true
	case v.EqualString("false"):
		return false
	case isNumber(data):
		return json.Number(data)
	}
	return decodeString(data)
}

func decodeString(data []byte) string {
	s, err := escape.Unquote(mem.B(data))
	if err != nil {
		return string(data)
	}
	return string(s)
}

func isNumber(data []byte) bool {
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return false
	}
	return json.Valid(data)
}

// formatValue renders v as a JSON value.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case string:
		return escape.Quote(t)
	default:
		return fmt.Sprint(t)
	}
}

// FormatValues renders a list of request values as a JSON array.
func FormatValues(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r *Request) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resource: %s\n", escape.Quote(r.Resource))
	if len(r.Properties) != 0 {
		props := make([]any, len(r.Properties))
		for i, p := range r.Properties {
			props[i] = p
		}
		fmt.Fprintf(&sb, "properties: %s\n", FormatValues(props))
	}
	if len(r.Data) != 0 {
		fmt.Fprintf(&sb, "data: %s\n", FormatValues(r.Data))
	}
	for i, row := range r.Dataset {
		fmt.Fprintf(&sb, "dataset[%d]: %s\n", i, FormatValues(row))
	}
	if r.Condition != "" {
		fmt.Fprintf(&sb, "condition: %s\n", escape.Quote(r.Condition))
		fmt.Fprintf(&sb, "args: %s\n", FormatValues(r.Args))
	}
	return sb.String()
}
