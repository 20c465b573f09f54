// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func runTool(t *testing.T, ctx context.Context, input string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(ctx, append([]string{"jchunk"}, args...), strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const eventInput = `{"a":[1,"x"], "b": {}}`

const eventOutput = `ObjectOpen 1/0
  ObjectKey 2/0 key="a"
  ArrayOpen 2/0 key="a"
    ArrayVal 3/0 data="1"
    ArrayVal 3/1 data="x"
  ArrayClose 2/0
  ObjectKey 2/1 key="b"
  ObjectOpen 2/1 key="b"
  ObjectClose 2/1
ObjectClose 1/0
`

func TestEvents(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		args []string
	}{
		{"Default", nil},
		{"Joined", []string{"-join", "-chunk", "2", "-region", "8"}},
		{"Paced", []string{"-join", "-chunk", "5", "-rate", "1000"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, out, errs := runTool(t, ctx, eventInput, test.args...)
			if code != 0 {
				t.Fatalf("Exit code %d, stderr:\n%s", code, errs)
			}
			if diff := cmp.Diff(eventOutput, out); diff != "" {
				t.Errorf("Output (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.json")
		if err := os.WriteFile(path, []byte(eventInput), 0644); err != nil {
			t.Fatalf("Write input: %v", err)
		}
		code, out, errs := runTool(t, ctx, "", "-file", path)
		if code != 0 || out != eventOutput {
			t.Errorf("Exit code %d, output:\n%s\nstderr:\n%s", code, out, errs)
		}
	})

	t.Run("OmitKeys", func(t *testing.T) {
		_, out, _ := runTool(t, ctx, `{"k":true}`, "-omit-keys")
		const want = "ObjectOpen 1/0\n  ObjectVal 2/0 key=\"k\" data=\"true\"\nObjectClose 1/0\n"
		if out != want {
			t.Errorf("Output: got %q, want %q", out, want)
		}
	})

	t.Run("Lenient", func(t *testing.T) {
		if code, _, _ := runTool(t, ctx, `{k: v}`); code != 1 {
			t.Errorf("Strict exit code: got %d, want 1", code)
		}
		code, out, errs := runTool(t, ctx, `{k: v}`, "-lenient")
		const want = "ObjectOpen 1/0\n  ObjectKey 2/0 key=\"k\"\n  ObjectVal 2/0 key=\"k\" data=\"v\"\nObjectClose 1/0\n"
		if code != 0 || out != want {
			t.Errorf("Lenient: exit %d, output %q (stderr %q); want %q", code, out, errs, want)
		}
	})

	t.Run("MaxKey", func(t *testing.T) {
		_, out, _ := runTool(t, ctx, `{"abcdef":1}`, "-maxkey", "3", "-omit-keys")
		if !strings.Contains(out, `key="abc" data="1"`) {
			t.Errorf("Output: got %q, want truncated key", out)
		}
	})

	t.Run("Colors", func(t *testing.T) {
		_, out, _ := runTool(t, ctx, `[1]`, "-colors")
		if !strings.Contains(out, "\033[") {
			t.Errorf("Output: got %q, want colour codes", out)
		}
		_, out, _ = runTool(t, ctx, `[1]`, "-colors", "-nocolors")
		if strings.Contains(out, "\033[") {
			t.Errorf("Output: got %q, want no colour codes", out)
		}
	})

	t.Run("Help", func(t *testing.T) {
		code, out, _ := runTool(t, ctx, "", "-help")
		if code != 0 || !strings.Contains(out, "Usage: jchunk") {
			t.Errorf("Help: exit %d, output %q", code, out)
		}
	})
}

func TestSQL(t *testing.T) {
	const input = `{"resname":"t1","properties":["a"],"filter":["EQ","id",7]}`
	const want = `resource: "t1"
properties: ["a"]
condition: "(id == ?)"
args: [7]
statement: "SELECT a FROM t1 WHERE (id == ?)"
bind: [7]
`
	code, out, errs := runTool(t, context.Background(), input, "-sql", "-chunk", "3")
	if code != 0 {
		t.Fatalf("Exit code %d, stderr:\n%s", code, errs)
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Output (-want, +got):\n%s", diff)
	}

	code, _, errs = runTool(t, context.Background(), `{"filter":["XX"]}`, "-sql")
	if code != 1 || !strings.Contains(errs, `unknown filter operator "XX"`) {
		t.Errorf("Invalid filter: exit %d, stderr %q", code, errs)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		code  int
		want  string
	}{
		{"Syntax", `[1,]`, nil, 1, `unexpected ']' after comma`},
		{"Unclosed", `{"a":`, []string{"-chunk", "1"}, 1, "unclosed"},
		{"Usage", ``, []string{"-chunk", "-3"}, 2, "chunk must not be negative"},
		{"Extra", ``, []string{"more"}, 2, "unexpected arguments"},
		{"NoFile", ``, []string{"-file", "/nonexistent/input.json"}, 1, "no such file"},
		{"RegionLimit", `[[[[[[[[[[[[[[[[]]]]]]]]]]]]]]]]`, []string{"-region", "8", "-region-limit", "32"}, 1, "region limit 32 bytes"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, _, errs := runTool(t, context.Background(), test.input, test.args...)
			if code != test.code {
				t.Errorf("Exit code: got %d, want %d", code, test.code)
			}
			if !strings.Contains(errs, test.want) {
				t.Errorf("Stderr: got %q, want %q", errs, test.want)
			}
		})
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, errs := runTool(t, ctx, `[1, 2, 3]`, "-rate", "1")
	if code != 1 || !strings.Contains(errs, "context canceled") {
		t.Errorf("Canceled: exit %d, stderr %q", code, errs)
	}
}
