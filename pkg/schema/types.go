package schema

import (
	"errors"
	"strings"
)

// FieldType is the on-chain type tag of a schema column.
type FieldType string

const (
	TypeUint256 FieldType = "uint256"
	TypeString  FieldType = "string"
	TypeBool    FieldType = "bool"
	TypeAddress FieldType = "address"
	TypeBytes32 FieldType = "bytes32"
	TypeBytes   FieldType = "bytes"
	TypeUint8   FieldType = "uint8"
	TypeUint64  FieldType = "uint64"
	TypeInt256  FieldType = "int256"
)

// ErrUnknownType is returned when a type tag is not in Types().
var ErrUnknownType = errors.New("schema: unknown field type")

var selectableTypes = []FieldType{
	TypeUint256,
	TypeString,
	TypeBool,
	TypeAddress,
	TypeBytes32,
	TypeBytes,
	TypeUint8,
	TypeUint64,
	TypeInt256,
}

// Types returns the selectable type tags in display order. The first entry is
// the builder default.
func Types() []FieldType {
	out := make([]FieldType, len(selectableTypes))
	copy(out, selectableTypes)
	return out
}

// DefaultType is the type a new builder starts with.
func DefaultType() FieldType {
	return selectableTypes[0]
}

// ParseType normalises a tag and checks it against Types().
func ParseType(raw string) (FieldType, error) {
	candidate := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Known() {
		return candidate, nil
	}
	return "", ErrUnknownType
}

// Known reports whether t is one of the selectable types.
func (t FieldType) Known() bool {
	for _, known := range selectableTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Field is a single named, typed column. ID is a local identity used to
// address the entry while building; it is not part of the wire format.
type Field struct {
	ID   string    `json:"-"`
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Label renders the field the way the builder list shows it: "age (uint256)".
func (f Field) Label() string {
	return f.Name + " (" + string(f.Type) + ")"
}

// Schema is a registered schema as returned by the attestation service.
type Schema struct {
	ID     string  `json:"schemaId"`
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"data"`
}

// Names returns the field names in order.
func Names(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}
