// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package config handles the command-line settings of the jchunk tool.
//
// Settings may be given as flags, or in a configuration file named by the
// -config flag. A file whose name ends in .yaml or .yml is read as YAML;
// any other file is read as JSON with comments and trailing commas (HuJSON).
// Flags given on the command line override values from the file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"
)

var (
	ErrExtraArguments = errors.New("unexpected arguments")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidColors  = errors.New("colors must be auto, always, or never")
)

// Color settings.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings for one run of the tool.
type Config struct {
	File        string  `json:"file"        yaml:"file"`        // input path; stdin if empty
	ChunkSize   int     `json:"chunk"       yaml:"chunk"`       // bytes per read (0 = default)
	RegionSize  int     `json:"region"      yaml:"region"`      // initial region size (0 = default)
	RegionLimit int     `json:"regionLimit" yaml:"regionLimit"` // maximum region size (0 = default)
	MaxKeyLen   int     `json:"maxKey"      yaml:"maxKey"`      // member name limit (0 = unlimited)
	Lenient     bool    `json:"lenient"     yaml:"lenient"`
	OmitKeys    bool    `json:"omitKeys"    yaml:"omitKeys"`
	Join        bool    `json:"join"        yaml:"join"`
	SQL         bool    `json:"sql"         yaml:"sql"`
	Rate        float64 `json:"rate"        yaml:"rate"`   // chunks per second (0 = unlimited)
	Colors      string  `json:"colors"      yaml:"colors"` // auto, always, or never
}

// Default returns a Config with default settings.
func Default() *Config { return &Config{Colors: ColorAuto} }

// UseColor reports whether output should be coloured, given whether the
// output is a terminal.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Colors {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// Validate reports an error if c is not a usable configuration.
func (c *Config) Validate() error {
	for _, v := range []struct {
		name string
		val  int
	}{
		{"chunk", c.ChunkSize}, {"region", c.RegionSize},
		{"region-limit", c.RegionLimit}, {"maxkey", c.MaxKeyLen},
	} {
		if v.val < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, v.name)
		}
	}
	if c.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidConfig)
	}
	if c.RegionLimit != 0 && c.RegionSize > c.RegionLimit {
		return fmt.Errorf("%w: region size %d exceeds limit %d", ErrInvalidConfig, c.RegionSize, c.RegionLimit)
	}
	switch c.Colors {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %w, got %q", ErrInvalidConfig, ErrInvalidColors, c.Colors)
	}
	return nil
}

// Load reads settings from the named file into c. Settings not mentioned
// in the file are unchanged.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		if err := json.Unmarshal(std, c); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}
	return nil
}

// bindFlags attaches flags to the fields of c, using the current values of
// c as defaults.
func bindFlags(fs *flag.FlagSet, c *Config, configPath *string) {
	fs.StringVar(configPath, "config", "", "Path to a HuJSON or YAML configuration file")
	fs.StringVar(&c.File, "file", c.File, "JSON input file (stdin if omitted)")
	fs.IntVar(&c.ChunkSize, "chunk", c.ChunkSize, "Size in bytes of each chunk read (0 for default)")
	fs.IntVar(&c.RegionSize, "region", c.RegionSize, "Initial size in bytes of the parser region (0 for default)")
	fs.IntVar(&c.RegionLimit, "region-limit", c.RegionLimit, "Maximum size in bytes of the parser region (0 for default)")
	fs.IntVar(&c.MaxKeyLen, "maxkey", c.MaxKeyLen, "Truncate member names to this many bytes (0 for no limit)")
	fs.BoolVar(&c.Lenient, "lenient", c.Lenient, "Accept unquoted member names and values")
	fs.BoolVar(&c.OmitKeys, "omit-keys", c.OmitKeys, "Do not report member names as separate events")
	fs.BoolVar(&c.Join, "join", c.Join, "Report each value as a single event")
	fs.BoolVar(&c.SQL, "sql", c.SQL, "Translate a query document to SQL")
	fs.Float64Var(&c.Rate, "rate", c.Rate, "Maximum chunks read per second (0 for unlimited)")
	fs.BoolFunc("colors", "Force coloured output", func(string) error {
		c.Colors = ColorAlways
		return nil
	})
	fs.BoolFunc("nocolors", "Disable coloured output", func(string) error {
		c.Colors = ColorNever
		return nil
	})
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	return fs
}

// Parse parses command-line arguments, where args[0] is the program name,
// and returns a validated Config. If help is requested, Parse reports
// flag.ErrHelp.
func Parse(args []string) (*Config, error) {
	name := "jchunk"
	if len(args) != 0 {
		name, args = args[0], args[1:]
	}

	// Find the config file, if any, so that flags can override it.
	var path string
	pre := newFlagSet(name)
	bindFlags(pre, Default(), &path)
	if err := pre.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		if err := cfg.Load(path); err != nil {
			return nil, err
		}
	}
	fs := newFlagSet(name)
	bindFlags(fs, cfg, &path)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("%w: %q", ErrExtraArguments, fs.Args())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Usage returns a usage string for the tool.
func Usage() string {
	return `jchunk - incremental JSON event tokenizer

Usage: jchunk [options]

Reads JSON from a file or stdin in chunks and prints one line per event.

Options:
  -config FILE        HuJSON or YAML configuration file
  -file FILE          JSON input file (stdin if omitted)
  -chunk N            Size in bytes of each chunk read (default 4096)
  -region N           Initial size in bytes of the parser region (default 256)
  -region-limit N     Maximum size in bytes of the parser region (default 1MiB)
  -maxkey N           Truncate member names to N bytes (0 for no limit)
  -lenient            Accept unquoted member names and values
  -omit-keys          Do not report member names as separate events
  -join               Report each value as a single event
  -sql                Translate a query document to SQL
  -rate N             Maximum chunks read per second (0 for unlimited)
  -colors, -nocolors  Force or disable coloured output
  -h, -help           Show this help message

Examples:
  jchunk -file input.json -chunk 16          # Show events for 16-byte reads
  jchunk -join -lenient < input.json         # Show whole values, lenient mode
  jchunk -sql -file query.json               # Translate a query document`
}
