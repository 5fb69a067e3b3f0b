package value

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a sealed interface over the property value types.
// Only StringValue, BoolValue, LongValue, DoubleValue, DateValue,
// BinaryValue and ReferenceValue implement it.
type Value interface {
	value() // Sealed
	Type() Type
}

// StringValue is a string property value.
type StringValue string

func (StringValue) value()     {}
func (StringValue) Type() Type { return TypeString }

// BoolValue is a boolean property value.
type BoolValue bool

func (BoolValue) value()     {}
func (BoolValue) Type() Type { return TypeBoolean }

// LongValue is a 64-bit integer property value.
type LongValue int64

func (LongValue) value()     {}
func (LongValue) Type() Type { return TypeLong }

// DoubleValue is a floating point property value.
type DoubleValue float64

func (DoubleValue) value()     {}
func (DoubleValue) Type() Type { return TypeDouble }

// DateValue is a timestamp property value.
type DateValue time.Time

func (DateValue) value()     {}
func (DateValue) Type() Type { return TypeDate }

// Time returns the timestamp held by d.
func (d DateValue) Time() time.Time { return time.Time(d) }

// BinaryValue is an opaque binary payload.
type BinaryValue []byte

func (BinaryValue) value()     {}
func (BinaryValue) Type() Type { return TypeBinary }

// ReferenceValue holds the identifier of a target node.
// It never owns the target; reference cycles are legal.
type ReferenceValue string

func (ReferenceValue) value()     {}
func (ReferenceValue) Type() Type { return TypeReference }

// ID returns the referenced node identifier.
func (r ReferenceValue) ID() string { return string(r) }

// String creates a StringValue.
func String(s string) StringValue { return StringValue(s) }

// Bool creates a BoolValue.
func Bool(b bool) BoolValue { return BoolValue(b) }

// Long creates a LongValue.
func Long(n int64) LongValue { return LongValue(n) }

// Double creates a DoubleValue.
func Double(f float64) DoubleValue { return DoubleValue(f) }

// Date creates a DateValue.
func Date(t time.Time) DateValue { return DateValue(t) }

// Binary creates a BinaryValue.
func Binary(b []byte) BinaryValue { return BinaryValue(b) }

// Reference creates a ReferenceValue pointing at the node with the given id.
func Reference(id string) ReferenceValue { return ReferenceValue(id) }

// Strings converts plain strings into string values.
func Strings(ss ...string) []Value {
	vals := make([]Value, len(ss))
	for i, s := range ss {
		vals[i] = StringValue(s)
	}
	return vals
}

// Format returns the lexical form of v.
// Parse(v.Type(), Format(v)) yields an equal value.
func Format(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return string(val)
	case BoolValue:
		return strconv.FormatBool(bool(val))
	case LongValue:
		return strconv.FormatInt(int64(val), 10)
	case DoubleValue:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case DateValue:
		return time.Time(val).Format(time.RFC3339Nano)
	case BinaryValue:
		return base64.StdEncoding.EncodeToString(val)
	case ReferenceValue:
		return string(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Parse converts a lexical form into a value of type t.
func Parse(t Type, s string) (Value, error) {
	switch t {
	case TypeString:
		return StringValue(s), nil
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", t, err)
		}
		return BoolValue(b), nil
	case TypeLong:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", t, err)
		}
		return LongValue(n), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", t, err)
		}
		return DoubleValue(f), nil
	case TypeDate:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", t, err)
		}
		return DateValue(ts), nil
	case TypeBinary:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", t, err)
		}
		return BinaryValue(b), nil
	case TypeReference:
		if s == "" {
			return nil, fmt.Errorf("parse %s: empty identifier", t)
		}
		return ReferenceValue(s), nil
	default:
		return nil, fmt.Errorf("unknown value type %q", t)
	}
}

// Check verifies that every value in vals has type t.
func Check(t Type, vals []Value) error {
	for i, v := range vals {
		if v == nil {
			return fmt.Errorf("value[%d] is nil", i)
		}
		if v.Type() != t {
			return fmt.Errorf("value[%d] is %s, expected %s", i, v.Type(), t)
		}
	}
	return nil
}
