package relational

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/schema"
	"github.com/roach88/arbor/internal/value"
)

// DateLayouts are tried in order by StatementOption.DateValue.
var DateLayouts = []string{
	time.RFC3339,
	"1/2/06 3:04 PM",
	time.DateTime,
	time.DateOnly,
}

// StatementOption is a single named, string-valued option attached to a
// relational element, such as a DDL option on a table or column.
//
// The option is strictly scalar: every plural accessor fails with
// UNSUPPORTED_OPERATION. Setting a blank value removes the option node.
type StatementOption struct {
	*Object

	descriptor       *schema.PropertyDescriptor
	descriptorLoaded bool
}

var _ Element = (*StatementOption)(nil)

func newStatementOption(tx *repo.Transaction, s repo.Store, path string) *StatementOption {
	return &StatementOption{Object: NewObject(tx, s, path)}
}

func (o *StatementOption) Kind() Kind { return KindStatementOption }

// Option returns the option value. An option without one fails NOT_FOUND.
func (o *StatementOption) Option() (string, error) {
	v, ok, err := o.stringValue(PropValue)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", repo.NewNotFound("option", repo.Join(o.path, PropValue), "option value")
	}
	return v, nil
}

// SetOption writes the option value. When the value is blank the option
// node is removed right after the write.
func (o *StatementOption) SetOption(newValue string) error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	if err := o.store.SetProperty(o.tx, n, PropValue, value.TypeString, false, value.String(newValue)); err != nil {
		return err
	}
	if strings.TrimSpace(newValue) == "" {
		return o.store.Remove(o.tx, n)
	}
	return nil
}

// Set writes a single value of any type with a string form. No values is
// rejected and more than one is unsupported.
func (o *StatementOption) Set(values ...any) error {
	const op = "set"
	switch len(values) {
	case 0:
		return repo.Errorf(repo.CodeInvalidArgument, op, "a statement option requires a value")
	case 1:
		s, err := cast.ToStringE(values[0])
		if err != nil {
			return &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: "value has no string form", Path: o.path, Err: err}
		}
		return o.SetOption(s)
	default:
		return repo.NewUnsupported(op, fmt.Sprintf("a statement option holds one value, got %d", len(values)))
	}
}

// BooleanValue parses the option with strconv.ParseBool.
func (o *StatementOption) BooleanValue() (bool, error) {
	s, err := o.Option()
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, repo.NewParseError("boolean value", s, err)
	}
	return b, nil
}

// IntegerValue parses the option as a 32-bit integer.
func (o *StatementOption) IntegerValue() (int, error) {
	s, err := o.Option()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, repo.NewParseError("integer value", s, err)
	}
	return int(n), nil
}

// LongValue parses the option as a 64-bit integer.
func (o *StatementOption) LongValue() (int64, error) {
	s, err := o.Option()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, repo.NewParseError("long value", s, err)
	}
	return n, nil
}

// DoubleValue parses the option as a float64.
func (o *StatementOption) DoubleValue() (float64, error) {
	s, err := o.Option()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, repo.NewParseError("double value", s, err)
	}
	return f, nil
}

// DateValue parses the option with the first of DateLayouts that fits.
func (o *StatementOption) DateValue() (time.Time, error) {
	s, err := o.Option()
	if err != nil {
		return time.Time{}, err
	}
	var errs []error
	for _, layout := range DateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	return time.Time{}, repo.NewParseError("date value", s, errors.Join(errs...))
}

// StringValue returns the option.
func (o *StatementOption) StringValue() (string, error) { return o.Option() }

// Value returns the option.
func (o *StatementOption) Value() (string, error) { return o.Option() }

// ValueType is always string, however the value is later parsed.
func (o *StatementOption) ValueType() value.Type { return value.TypeString }

// IsMultiple is always false.
func (o *StatementOption) IsMultiple() bool { return false }

func (o *StatementOption) BooleanValues() ([]bool, error)   { return nil, scalarOnly("boolean values") }
func (o *StatementOption) IntegerValues() ([]int, error)    { return nil, scalarOnly("integer values") }
func (o *StatementOption) LongValues() ([]int64, error)     { return nil, scalarOnly("long values") }
func (o *StatementOption) DoubleValues() ([]float64, error) { return nil, scalarOnly("double values") }
func (o *StatementOption) DateValues() ([]time.Time, error) { return nil, scalarOnly("date values") }
func (o *StatementOption) StringValues() ([]string, error)  { return nil, scalarOnly("string values") }
func (o *StatementOption) Values() ([]any, error)           { return nil, scalarOnly("values") }
func (o *StatementOption) BinaryValue() ([]byte, error)     { return nil, scalarOnly("binary value") }

func scalarOnly(op string) error {
	return repo.NewUnsupported(op, "statement options hold a single string value")
}

// Descriptor returns the property descriptor the parent's primary type
// declares under this option's name, or nil when there is none. The
// result, including a miss, is cached for the life of the view.
func (o *StatementOption) Descriptor() (*schema.PropertyDescriptor, error) {
	if o.descriptorLoaded {
		return o.descriptor, nil
	}
	parent, err := o.Parent()
	if err != nil {
		return nil, err
	}
	pn, err := parent.Node()
	if err != nil {
		return nil, err
	}
	name := o.Name()
	for _, pd := range o.store.Schema().PropertyDescriptors(pn.PrimaryType) {
		if pd.Name == name {
			o.descriptor = &pd
			break
		}
	}
	o.descriptorLoaded = true
	return o.descriptor, nil
}

// Children is always empty; options have no child elements.
func (o *StatementOption) Children() ([]Element, error) {
	return []Element{}, nil
}
