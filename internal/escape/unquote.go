// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape decodes and encodes the text of JSON strings as it appears
// in parser events, without the enclosing quotation marks.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes the raw text of a JSON string with the enclosing quotation
// marks already removed, as reported in the Data and Key fields of events.
//
// A \u escape for a UTF-16 surrogate pair is combined into a single rune. An
// unpaired surrogate, or an escape with invalid hex digits, is replaced by
// the Unicode replacement rune. Unquote reports an error for an escape
// sequence cut off by the end of the input.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(nil, src), nil
	}
	return AppendUnquote(make([]byte, 0, src.Len()), src)
}

// AppendUnquote appends the decoded text of src to dst, as Unquote does, and
// returns the extended slice.
func AppendUnquote(dst []byte, src mem.RO) ([]byte, error) {
	putRune := func(r rune) { dst = utf8.AppendRune(dst, r) }
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dst, src), nil
		}
		dst = mem.Append(dst, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			dst = append(dst, c)
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r, n, err := decodeUnicode(src)
			if err != nil {
				return nil, err
			}
			putRune(r)
			src = src.SliceFrom(n)
		default:
			putRune(utf8.RuneError)
		}
	}
}

// decodeUnicode decodes the hex digits of a \u escape at the front of src,
// combining a following low surrogate escape if src begins with a high
// surrogate. It returns the rune and the number of bytes consumed.
func decodeUnicode(src mem.RO) (rune, int, error) {
	if src.Len() < 4 {
		return 0, 0, errors.New("incomplete Unicode escape")
	}
	v, err := parseHex(src.SliceTo(4))
	if err != nil {
		return utf8.RuneError, 4, nil
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}

	// A high surrogate must be followed by a \u escape for a low surrogate.
	if src.Len() >= 10 && src.At(4) == '\\' && src.At(5) == 'u' {
		if lo, err := parseHex(src.Slice(6, 10)); err == nil {
			if c := utf16.DecodeRune(r, rune(lo)); c != utf8.RuneError {
				return c, 10, nil
			}
		}
	}
	return utf8.RuneError, 4, nil
}

func parseHex(data mem.RO) (int64, error) {
	var v int64
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
