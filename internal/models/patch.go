package models

import "strings"

// Assignment is one "column = ?" pair of an UPDATE. Column always comes from
// a constant inside a typed patch, never from request input.
type Assignment struct {
	Column string
	Value  interface{}
}

// SetClause renders assignments as "a = ?, b = ?" plus the matching args.
func SetClause(assignments []Assignment) (string, []interface{}) {
	parts := make([]string, 0, len(assignments))
	args := make([]interface{}, 0, len(assignments))
	for _, a := range assignments {
		parts = append(parts, a.Column+" = ?")
		args = append(args, a.Value)
	}
	return strings.Join(parts, ", "), args
}
