// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import "github.com/creachadair/jchunk"

// Some ANSI colour codes.
const (
	reset       = "\033[0m"
	yellow      = "\033[33m"
	green       = "\033[32m"
	dimWhite    = "\033[37;2m"
	brightBlue  = "\033[34;1m"
	brightWhite = "\033[37;1m"
)

// A palette assigns colours to the parts of an event line. A nil *palette
// prints without colour.
type palette struct {
	open, close, value, key, data string
}

var defaultPalette = palette{
	open:  brightWhite,
	close: dimWhite,
	value: yellow,
	key:   brightBlue,
	data:  green,
}

func (p *palette) kindCode(k jchunk.Kind) string {
	if p == nil {
		return ""
	}
	switch k {
	case jchunk.ArrayOpen, jchunk.ObjectOpen:
		return p.open
	case jchunk.ArrayClose, jchunk.ObjectClose:
		return p.close
	default:
		return p.value
	}
}

func (p *palette) keyCode() string {
	if p == nil {
		return ""
	}
	return p.key
}

func (p *palette) dataCode() string {
	if p == nil {
		return ""
	}
	return p.data
}

// wrap appends s to buf, surrounded by code and a reset if code is not empty.
func (p *palette) wrap(buf []byte, code, s string) []byte {
	if code == "" {
		return append(buf, s...)
	}
	buf = append(buf, code...)
	buf = append(buf, s...)
	return append(buf, reset...)
}
