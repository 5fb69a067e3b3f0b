package value

import "fmt"

// Type is the declared value type of a property.
type Type string

const (
	TypeString    Type = "string"
	TypeBoolean   Type = "boolean"
	TypeLong      Type = "long"
	TypeDouble    Type = "double"
	TypeDate      Type = "date"
	TypeBinary    Type = "binary"
	TypeReference Type = "reference"
)

// Types lists every declared type in a stable order.
var Types = []Type{
	TypeString,
	TypeBoolean,
	TypeLong,
	TypeDouble,
	TypeDate,
	TypeBinary,
	TypeReference,
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeBoolean, TypeLong, TypeDouble, TypeDate, TypeBinary, TypeReference:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// ParseType converts a type name into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown value type %q", s)
	}
	return t, nil
}
