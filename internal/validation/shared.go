package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error collects field-level validation failures. Fields maps the JSON path of
// the offending field (for example "assets.a1.capacity") to a message.
type Error struct {
	Fields map[string]string
}

// Error lists the failures ordered by field path so messages are stable.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	msgs := make([]string, len(fields))
	for i, field := range fields {
		msgs[i] = fmt.Sprintf("%s: %s", field, e.Fields[field])
	}
	return strings.Join(msgs, "; ")
}
