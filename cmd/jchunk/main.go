// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jchunk reads JSON input in chunks and prints the events reported
// by the incremental parser, one per line. With -sql, it instead translates
// a query document into a parameterized SQL statement.
//
// Run "jchunk -help" for a list of options.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creachadair/jchunk"
	"github.com/creachadair/jchunk/internal/config"
	"github.com/creachadair/jchunk/internal/escape"
	"github.com/creachadair/jchunk/sqlfilter"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go4.org/mem"
	"golang.org/x/time/rate"
)

func main() {
	// Do not handle SIGPIPE; a closed stdout is reported as EPIPE instead.
	signal.Ignore(syscall.SIGPIPE)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes the tool and returns its exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(stdout, config.Usage())
		return 0
	} else if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s\n", err, config.Usage())
		return 2
	}

	input := stdin
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		input = f
	}
	if cfg.Rate > 0 {
		input = &pacedReader{ctx: ctx, r: input, lim: rate.NewLimiter(rate.Limit(cfg.Rate), 1)}
	}

	s := jchunk.NewStream(input)
	s.SetChunkSize(cfg.ChunkSize)
	s.SetRegionSize(cfg.RegionSize)
	s.SetRegionLimit(cfg.RegionLimit)
	p := s.Parser()
	p.Lenient(cfg.Lenient)
	p.SetMaxKeyLen(cfg.MaxKeyLen)
	p.OmitKeyEvents(cfg.OmitKeys)

	out := stdout
	var pal *palette
	if cfg.UseColor(isTerminal(stdout)) {
		pal = &defaultPalette
		if f, ok := stdout.(*os.File); ok {
			out = colorable.NewColorable(f)
		}
	}
	w := bufio.NewWriter(out)

	if cfg.SQL {
		err = printSQL(ctx, s, w)
	} else {
		err = printEvents(ctx, s, w, pal, cfg.Join)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe that was closed, e.g. by head.
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func printEvents(ctx context.Context, s *jchunk.Stream, w *bufio.Writer, pal *palette, join bool) error {
	pr := &printer{w: w, pal: pal}
	var h jchunk.Handler = pr
	if join {
		h = &jchunk.Joiner{H: pr}
	}
	err := s.Parse(ctx, h)
	if pr.err != nil {
		return pr.err
	}
	return err
}

func printSQL(ctx context.Context, s *jchunk.Stream, w *bufio.Writer) error {
	req, err := sqlfilter.ParseStream(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprint(w, req)
	stmt, args, err := req.Statement()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "statement: %s\nbind: %s\n", escape.Quote(stmt), sqlfilter.FormatValues(args))
	return nil
}

// A printer is a jchunk.Handler that writes one line for each event.
type printer struct {
	w   *bufio.Writer
	pal *palette // nil for plain output
	buf []byte
	err error
}

func (p *printer) HandleEvent(e jchunk.Event) jchunk.Action {
	b := append(p.buf[:0], strings.Repeat("  ", max(e.Depth-1, 0))...)
	b = p.pal.wrap(b, p.pal.kindCode(e.Kind), e.Kind.String())
	b = fmt.Appendf(b, " %d/%d", e.Depth, e.Index)
	if e.Key != nil {
		b = append(b, " key="...)
		b = p.pal.wrap(b, p.pal.keyCode(), string(escape.AppendQuote(nil, mem.B(e.Key))))
	}
	if e.Kind == jchunk.ArrayVal || e.Kind == jchunk.ObjectVal {
		b = append(b, " data="...)
		b = p.pal.wrap(b, p.pal.dataCode(), string(escape.AppendQuote(nil, mem.B(e.Data))))
	}
	b = append(b, '\n')
	p.buf = b
	if _, err := p.w.Write(b); err != nil {
		p.err = err
		return jchunk.Stop
	}
	return jchunk.Continue
}

// A pacedReader limits the rate of reads from r.
type pacedReader struct {
	ctx context.Context
	r   io.Reader
	lim *rate.Limiter
}

func (p *pacedReader) Read(buf []byte) (int, error) {
	if err := p.lim.Wait(p.ctx); err != nil {
		return 0, err
	}
	return p.r.Read(buf)
}
