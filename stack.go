// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import "encoding/binary"

// nodeSize is the number of region bytes occupied by one stack node.
const nodeSize = 8

// Each node is a little-endian 64-bit word:
//
//	bits 0-2   the Kind of the node
//	bit  3     set when a child has begun since the last comma
//	bits 8-63  the number of commas seen by the node
const (
	kindMask   = 0x07
	memberFlag = 0x08
	countShift = 8
)

// A stack is a view of the node stack in the prefix of a region. Node 0 is
// the root wrapper, an ArrayOpen node that holds the top-level values.
type stack []byte

// fits reports whether the stack has room for a node at depth d.
func (s stack) fits(d int) bool { return d >= 0 && (d+1)*nodeSize <= len(s) }

func (s stack) word(d int) uint64 { return binary.LittleEndian.Uint64(s[d*nodeSize:]) }

func (s stack) setWord(d int, w uint64) { binary.LittleEndian.PutUint64(s[d*nodeSize:], w) }

// init sets the node at depth d to a fresh node of kind k.
func (s stack) init(d int, k Kind) { s.setWord(d, uint64(k)) }

// kind returns the kind of the node at depth d.
func (s stack) kind(d int) Kind { return Kind(s.word(d) & kindMask) }

// count returns the number of commas seen by the node at depth d. This is
// the index of its current child.
func (s stack) count(d int) int { return int(s.word(d) >> countShift) }

// member reports whether a child of the node at depth d has begun since its
// last comma.
func (s stack) member(d int) bool { return s.word(d)&memberFlag != 0 }

func (s stack) markMember(d int) { s.setWord(d, s.word(d)|memberFlag) }

// comma records a comma in the node at depth d.
func (s stack) comma(d int) {
	w := s.word(d)
	n := w>>countShift + 1
	s.setWord(d, w&kindMask|n<<countShift)
}
