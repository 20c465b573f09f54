// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk_test

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/creachadair/jchunk"
	"github.com/creachadair/jchunk/internal/escape"
	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go4.org/mem"
)

// pathCollector records the raw text of each literal value by its gjson path.
type pathCollector struct {
	stack []string // segments of the open containers below the top level
	vals  map[string]string
}

func segment(e jchunk.Event) string {
	if e.Key != nil {
		return string(e.Key)
	}
	return strconv.Itoa(e.Index)
}

func (c *pathCollector) HandleEvent(e jchunk.Event) jchunk.Action {
	switch e.Kind {
	case jchunk.ArrayOpen, jchunk.ObjectOpen:
		if e.Depth > 1 {
			c.stack = append(c.stack, segment(e))
		}
	case jchunk.ArrayClose, jchunk.ObjectClose:
		if e.Depth > 1 {
			c.stack = c.stack[:len(c.stack)-1]
		}
	case jchunk.ArrayVal, jchunk.ObjectVal:
		path := strings.Join(append(c.stack[:len(c.stack):len(c.stack)], segment(e)), ".")
		c.vals[path] = string(e.Data)
	}
	return jchunk.Continue
}

func (c *pathCollector) paths() []string {
	var out []string
	for p := range c.vals {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func buildDoc(t *testing.T) string {
	t.Helper()
	doc := `{}`
	var err error
	for _, s := range []struct {
		path  string
		value any
	}{
		{"name", `Alice "A" Smith`},
		{"age", 37},
		{"nested.ok", true},
		{"nested.none", nil},
		{"nested.ratio", -0.25},
		{"nested.deeper.city", "Zürich"},
	} {
		doc, err = sjson.Set(doc, s.path, s.value)
		if err != nil {
			t.Fatalf("Set %q: %v", s.path, err)
		}
	}
	for _, s := range []struct{ path, raw string }{
		{"tags", `["中文", "😀", "é😀"]`},
		{"nested.list", `[{"x": 1.5}, "tab\there", []]`},
	} {
		doc, err = sjson.SetRaw(doc, s.path, s.raw)
		if err != nil {
			t.Fatalf("SetRaw %q: %v", s.path, err)
		}
	}
	return doc
}

func TestCrossCheck(t *testing.T) {
	doc := buildDoc(t)
	wantPaths := []string{
		"age", "name",
		"nested.deeper.city", "nested.list.0.x", "nested.list.1",
		"nested.none", "nested.ok", "nested.ratio",
		"tags.0", "tags.1", "tags.2",
	}

	for _, size := range []int{1, 2, 5, 64} {
		c := &pathCollector{vals: make(map[string]string)}
		st := jchunk.NewStream(strings.NewReader(doc))
		st.SetChunkSize(size)
		st.SetRegionSize(8)
		if err := st.Parse(context.Background(), &jchunk.Joiner{H: c}); err != nil {
			t.Fatalf("Parse (chunk %d): %v", size, err)
		}
		if diff := cmp.Diff(wantPaths, c.paths()); diff != "" {
			t.Errorf("Paths (chunk %d): (-want, +got)\n%s", size, diff)
		}

		for path, got := range c.vals {
			r := gjson.Get(doc, path)
			want := r.Raw
			if r.Type == gjson.String {
				want = want[1 : len(want)-1]

				// The decoded text must also agree.
				dec, err := escape.Unquote(mem.S(got))
				if err != nil {
					t.Errorf("Unquote %q: %v", got, err)
				} else if string(dec) != r.String() {
					t.Errorf("Path %q decoded: got %q, want %q", path, dec, r.String())
				}
			}
			if got != want {
				t.Errorf("Path %q (chunk %d): got %#q, want %#q", path, size, got, want)
			}
		}
	}
}

// For inputs whose numbers are well-formed, the strict parser accepts
// exactly the documents gjson considers valid.
func TestCrossCheckValid(t *testing.T) {
	inputs := []string{
		`{"a":1}`,
		`{"a":[true,false,null],"b":{"c":"d"}}`,
		`["xé", "\\", "\/"]`,
		`[]`,
		`[1,2,]`,
		`{"a" 1}`,
		`{"a":1,}`,
		`[1 2]`,
		`[`,
		`]`,
		`{"a":}`,
		`"x\u00zz"`,
		`["a\qb"]`,
		`{1:2}`,
		`[1],[2]`,
		`1,2`,
	}
	for _, input := range inputs {
		want := gjson.Valid(input)
		st := jchunk.NewStream(strings.NewReader(input))
		st.SetChunkSize(3)
		got := st.Parse(context.Background(), jchunk.HandlerFunc(ignore)) == nil
		if got != want {
			t.Errorf("Valid %#q: got %v, want %v", input, got, want)
		}
	}
}
