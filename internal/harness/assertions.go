package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/arbor/internal/relational"
	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/tree"
)

// AssertionContext provides what assertions read from.
type AssertionContext struct {
	Store repo.Store
	Tx    *repo.Transaction
	Dump  string
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Dump     string // Full tree dump for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Dump != "" {
		fmt.Fprintf(&buf, "\nTree:%s", e.Dump)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertExists:
		return assertExists(a, actx, true)
	case AssertAbsent:
		return assertExists(a, actx, false)
	case AssertProperty:
		return assertProperty(a, actx)
	case AssertChildCount:
		return assertChildCount(a, actx)
	case AssertKind:
		return assertKind(a, actx)
	case AssertDumpContains:
		return assertDumpContains(a, actx)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertExists checks whether a node is at the path.
func assertExists(a Assertion, actx *AssertionContext, want bool) error {
	got, err := actx.Store.Exists(actx.Tx, a.Path)
	if err != nil {
		return err
	}
	if got == want {
		return nil
	}
	state := map[bool]string{true: "present", false: "absent"}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s", a.Path, state[want]),
		Actual:   state[got],
		Dump:     actx.Dump,
	}
}

// assertProperty compares the displayed property value, the form the dump uses.
func assertProperty(a Assertion, actx *AssertionContext) error {
	n, err := actx.Store.Get(actx.Tx, a.Path)
	if err != nil {
		return err
	}
	got, err := tree.DisplayValue(actx.Tx, actx.Store, n, a.Name)
	actual := got
	switch {
	case repo.IsNotFound(err):
		actual = "property absent"
	case err != nil:
		return err
	case got == a.Equals:
		return nil
	}
	return &AssertionError{
		Type:     AssertProperty,
		Expected: fmt.Sprintf("%s=%s", repo.Join(a.Path, a.Name), a.Equals),
		Actual:   actual,
		Dump:     actx.Dump,
	}
}

// assertChildCount checks the number of direct children.
func assertChildCount(a Assertion, actx *AssertionContext) error {
	n, err := actx.Store.Get(actx.Tx, a.Path)
	if err != nil {
		return err
	}
	children, err := actx.Store.Children(actx.Tx, n)
	if err != nil {
		return err
	}
	if len(children) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertChildCount,
		Expected: fmt.Sprintf("%d children under %s", a.Count, a.Path),
		Actual:   fmt.Sprintf("%d children", len(children)),
		Dump:     actx.Dump,
	}
}

// assertKind matches the node against the default resolver registry.
func assertKind(a Assertion, actx *AssertionContext) error {
	n, err := actx.Store.Get(actx.Tx, a.Path)
	if err != nil {
		return err
	}
	got := relational.KindUnknown
	if r, ok := relational.DefaultRegistry().Match(n); ok {
		got = r.Identifier()
	}
	if string(got) == a.Kind {
		return nil
	}
	return &AssertionError{
		Type:     AssertKind,
		Expected: fmt.Sprintf("%s resolves to %s", a.Path, a.Kind),
		Actual:   string(got),
		Dump:     actx.Dump,
	}
}

// assertDumpContains checks the traversal dump for a fragment. Escaped
// tabs and newlines in the text are expanded first.
func assertDumpContains(a Assertion, actx *AssertionContext) error {
	text := strings.NewReplacer(`\t`, "\t", `\n`, "\n").Replace(a.Text)
	if strings.Contains(actx.Dump, text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDumpContains,
		Expected: fmt.Sprintf("dump containing %q", text),
		Actual:   "not found",
		Dump:     actx.Dump,
	}
}
