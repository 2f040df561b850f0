package constraint

import "strings"

// ErrorKind tags a graph-build failure (§4.B, §7).
type ErrorKind int

const (
	ErrCircular ErrorKind = iota
	ErrInvalidRef
)

// GraphError is returned by BuildGraph when the dependency graph cannot be
// constructed.
type GraphError struct {
	Kind    ErrorKind
	Message string
	Cycle   []string // e.g. ["#a.width", "#b.width", "#a.width"]
}

func (e *GraphError) Error() string {
	if e.Kind == ErrCircular {
		return "CIRCULAR_CONSTRAINT: " + strings.Join(e.Cycle, " -> ")
	}
	return "INVALID_CONSTRAINT: " + e.Message
}
