package value

// BinaryPlaceholder replaces binary payloads in display renderings.
const BinaryPlaceholder = "*** binary value not shown ***"

// Property is a named, typed property read from a node.
//
// Values keeps the stored order. A single-valued property always holds
// exactly one value.
type Property struct {
	Name     string
	Path     string // absolute path of the property: <node path>/<name>
	Type     Type
	Multiple bool
	Values   []Value
}

// Value returns the first value, or nil when the property holds none.
func (p Property) Value() Value {
	if len(p.Values) == 0 {
		return nil
	}
	return p.Values[0]
}

// Lexical returns the lexical forms of all values in stored order.
func (p Property) Lexical() []string {
	out := make([]string, len(p.Values))
	for i, v := range p.Values {
		out[i] = Format(v)
	}
	return out
}
