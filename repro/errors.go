package repro

// ErrorKind tags a repro bundle parse/validate failure (§4.J, §7).
type ErrorKind int

const (
	ErrJSON ErrorKind = iota
	ErrBundle
	ErrSchema
	ErrVersion
	ErrUnknownField
)

func (k ErrorKind) String() string {
	switch k {
	case ErrJSON:
		return "PARSE_JSON"
	case ErrBundle:
		return "PARSE_BUNDLE"
	case ErrSchema:
		return "PARSE_SCHEMA"
	case ErrVersion:
		return "PARSE_VERSION"
	case ErrUnknownField:
		return "PARSE_UNKNOWN_FIELD"
	}
	return "UNKNOWN"
}

// ValidationError reports a malformed or unsupported repro bundle. Path is a
// JSON-path-style pointer (e.g. "$.schema", "$.eventCapture.batches[2].step") identifying
// where the failure was found, mirroring the teacher's plain-struct error
// style (no wrapped stack of interfaces, just a kind/message/location).
type ValidationError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Kind.String() + " at " + e.Path + ": " + e.Message
}
