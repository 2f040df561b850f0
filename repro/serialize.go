package repro

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var schemaPattern = regexp.MustCompile(`^rezi-repro-v(\d+)$`)

// ParseReproBundle parses and validates data as a "rezi-repro-v1" bundle
// (§4.J, §6 parseReproBundle). Unknown top-level fields are rejected;
// version mismatches are distinguished from other schema malformations so
// a caller can tell "understood but unsupported" from "not a repro bundle
// at all" (§7).
func ParseReproBundle(data []byte) (*Bundle, error) {
	var probe struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &ValidationError{Kind: ErrJSON, Path: "$", Message: err.Error()}
	}

	var schema string
	if err := json.Unmarshal(probe.Schema, &schema); err != nil {
		return nil, &ValidationError{Kind: ErrSchema, Path: "$.schema", Message: "schema must be a string"}
	}
	m := schemaPattern.FindStringSubmatch(schema)
	if m == nil {
		return nil, &ValidationError{Kind: ErrSchema, Path: "$.schema", Message: "unrecognized schema " + strconv.Quote(schema)}
	}
	if m[1] != "1" {
		return nil, &ValidationError{Kind: ErrVersion, Path: "$.schema", Message: "unsupported schema version " + schema}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var b Bundle
	if err := dec.Decode(&b); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return nil, &ValidationError{Kind: ErrUnknownField, Path: "$", Message: err.Error()}
		}
		return nil, &ValidationError{Kind: ErrBundle, Path: "$", Message: err.Error()}
	}

	if err := Validate(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SerializeReproBundle produces the canonical bytes for b (§6, §8 seed 6):
// struct field declaration order is fixed and lexicographic by JSON tag, so
// two Bundles built from differently-key-ordered source JSON serialize
// byte-identically once decoded into this type.
func SerializeReproBundle(b *Bundle) ([]byte, error) {
	return json.Marshal(b)
}
