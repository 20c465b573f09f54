// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package sqlfilter

import (
	"errors"
	"fmt"
	"strings"
)

// Statement returns a parameterized SQL statement for r, and the values to
// bind to its placeholders in order. The kind of statement depends on which
// members the request has:
//
//   - With a dataset, an INSERT of each row into the properties.
//   - With data, an UPDATE setting the properties to the data.
//   - With properties only, a SELECT of the properties.
//   - Otherwise, a DELETE.
//
// The condition, if any, is applied to UPDATE, SELECT, and DELETE.
func (r *Request) Statement() (string, []any, error) {
	if r.Resource == "" {
		return "", nil, errors.New("missing resource name")
	}
	var sb strings.Builder
	var args []any
	switch {
	case len(r.Dataset) != 0:
		if len(r.Properties) == 0 {
			return "", nil, errors.New("dataset requires properties")
		}
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", r.Resource, strings.Join(r.Properties, ", "))
		row := "(" + strings.Repeat(", ?", len(r.Properties))[2:] + ")"
		for i, vals := range r.Dataset {
			if len(vals) != len(r.Properties) {
				return "", nil, fmt.Errorf("dataset row %d has %d values, want %d", i, len(vals), len(r.Properties))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(row)
			args = append(args, vals...)
		}
		return sb.String(), args, nil

	case len(r.Data) != 0:
		if len(r.Data) != len(r.Properties) {
			return "", nil, fmt.Errorf("data has %d values, want %d", len(r.Data), len(r.Properties))
		}
		fmt.Fprintf(&sb, "UPDATE %s SET ", r.Resource)
		for i, p := range r.Properties {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p + " = ?")
		}
		args = append(args, r.Data...)

	case len(r.Properties) != 0:
		fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(r.Properties, ", "), r.Resource)

	default:
		fmt.Fprintf(&sb, "DELETE FROM %s", r.Resource)
	}
	if r.Condition != "" {
		sb.WriteString(" WHERE " + r.Condition)
		args = append(args, r.Args...)
	}
	return sb.String(), args, nil
}
