// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package sqlfilter

import "go4.org/mem"

// Op is a filter operator.
type Op byte

// Constants defining the filter operators.
const (
	And Op = iota + 1
	Or
	Between
	NotBetween
	In
	NotIn
	Like
	NotLike
	Match
	NotMatch
	Gt
	Lt
	Ge
	Le
	Eq
	Ne
	IsNull
	NotNull
)

var opInfo = [...]struct {
	name string // as written in a filter
	sql  string // as written in a condition
}{
	And:        {"AND", "AND"},
	Or:         {"OR", "OR"},
	Between:    {"BETWEEN", "BETWEEN"},
	NotBetween: {"NOTBETWEEN", "NOT BETWEEN"},
	In:         {"IN", "IN"},
	NotIn:      {"NOTIN", "NOT IN"},
	Like:       {"LIKE", "LIKE"},
	NotLike:    {"NOTLIKE", "NOT LIKE"},
	Match:      {"MATCH", "MATCH"},
	NotMatch:   {"NOTMATCH", "NOT MATCH"},
	Gt:         {"GT", ">"},
	Lt:         {"LT", "<"},
	Ge:         {"GE", ">="},
	Le:         {"LE", "<="},
	Eq:         {"EQ", "=="},
	Ne:         {"NE", "!="},
	IsNull:     {"ISNULL", "ISNULL"},
	NotNull:    {"NOTNULL", "NOTNULL"},
}

func (o Op) String() string {
	if o == 0 || int(o) >= len(opInfo) {
		return "invalid operator"
	}
	return opInfo[o].name
}

func (o Op) sql() string { return opInfo[o].sql }

func (o Op) logical() bool { return o == And || o == Or }

// lookupOp returns the operator named by text, ignoring case.
func lookupOp(text []byte) (Op, bool) {
	t := mem.B(text)
	for i := And; int(i) < len(opInfo); i++ {
		if mem.EqualFold(t, mem.S(opInfo[i].name)) {
			return i, true
		}
	}
	return 0, false
}
