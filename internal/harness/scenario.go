package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arbor/internal/repo"
)

// Scenario defines a tree scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Types lists CUE node type files layered over the builtin types.
	// Relative paths are resolved against the scenario file's directory.
	Types []string `yaml:"types,omitempty"`

	// Setup steps establish the starting tree. Any failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps are the steps under test. Their outcomes are checked
	// against expect clauses.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final tree.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single tree operation.
type Step struct {
	// Op names the operation (see the Op constants).
	Op string `yaml:"op"`

	// Path is the absolute path the operation acts on. For mkpath and
	// model it is the path to find or create, relative to At.
	Path string `yaml:"path"`

	// At is the absolute start path for mkpath and model. Defaults to "/".
	At string `yaml:"at,omitempty"`

	// Name is the child, property, or option name.
	Name string `yaml:"name,omitempty"`

	// Type is the node type for add_child, add_mixin, and the default
	// intermediate type for mkpath. For set_property it is the value type.
	Type string `yaml:"type,omitempty"`

	// FinalType is the type of the last node mkpath creates.
	FinalType string `yaml:"final_type,omitempty"`

	// Multiple marks a multi-valued property.
	Multiple bool `yaml:"multiple,omitempty"`

	// Values are lexical property values. References are target paths.
	Values []string `yaml:"values,omitempty"`

	// Value is the statement option value.
	Value string `yaml:"value,omitempty"`

	// Columns names the constrained columns of a key.
	Columns []string `yaml:"columns,omitempty"`

	// References is the table path a foreign key points at.
	References string `yaml:"references,omitempty"`

	// Expect checks the step outcome. Without it the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected step outcome.
type ExpectClause struct {
	// Error is the expected error code, e.g. "NOT_FOUND". Empty expects success.
	Error string `yaml:"error,omitempty"`

	// Path is the path the step should report, e.g. the node mkpath returned.
	Path string `yaml:"path,omitempty"`
}

// Step operations.
const (
	OpMkpath         = "mkpath"
	OpAddChild       = "add_child"
	OpAddMixin       = "add_mixin"
	OpSetProperty    = "set_property"
	OpRemoveProperty = "remove_property"
	OpRemove         = "remove"
	OpModel          = "model"
	OpTable          = "table"
	OpColumn         = "column"
	OpPrimaryKey     = "primary_key"
	OpForeignKey     = "foreign_key"
	OpOption         = "option"
)

// Assertion validates the final tree.
type Assertion struct {
	// Type specifies the assertion type (see the Assert constants).
	Type string `yaml:"type"`

	// Path is the node checked (exists, absent, property, child_count, kind).
	Path string `yaml:"path,omitempty"`

	// Name is the property name (property).
	Name string `yaml:"name,omitempty"`

	// Equals is the expected displayed property value (property).
	Equals string `yaml:"equals,omitempty"`

	// Count is the expected number of children (child_count).
	Count int `yaml:"count,omitempty"`

	// Kind is the expected view kind (kind).
	Kind string `yaml:"kind,omitempty"`

	// Text is the expected dump fragment (dump_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertExists       = "exists"
	AssertAbsent       = "absent"
	AssertProperty     = "property"
	AssertChildCount   = "child_count"
	AssertKind         = "kind"
	AssertDumpContains = "dump_contains"
)

// LoadScenario reads and parses a scenario YAML file. Type file paths are
// resolved relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving type file paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve type paths BEFORE validation
	for i, typesPath := range scenario.Types {
		if !filepath.IsAbs(typesPath) && basePath != "" {
			scenario.Types[i] = filepath.Join(basePath, typesPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, typesPath := range s.Types {
		if _, err := os.Stat(typesPath); os.IsNotExist(err) {
			return fmt.Errorf("types file not found: %s", typesPath)
		}
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), &step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is only allowed in flow steps", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks the fields each operation needs.
func validateStep(where string, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("%s: op is required", where)
	}
	if st.Path == "" {
		return fmt.Errorf("%s: path is required", where)
	}

	switch st.Op {
	case OpMkpath, OpModel, OpRemove:
	case OpAddChild, OpTable, OpColumn, OpPrimaryKey, OpRemoveProperty:
		if st.Name == "" {
			return fmt.Errorf("%s: name is required for %s", where, st.Op)
		}
	case OpAddMixin:
		if st.Type == "" {
			return fmt.Errorf("%s: type is required for %s", where, st.Op)
		}
	case OpSetProperty:
		if st.Name == "" || st.Type == "" {
			return fmt.Errorf("%s: name and type are required for %s", where, st.Op)
		}
	case OpForeignKey:
		if st.Name == "" || st.References == "" {
			return fmt.Errorf("%s: name and references are required for %s", where, st.Op)
		}
	case OpOption:
		if st.Name == "" {
			return fmt.Errorf("%s: name is required for %s", where, st.Op)
		}
	default:
		return fmt.Errorf("%s: unknown op %q", where, st.Op)
	}

	if st.Expect != nil && st.Expect.Error != "" && !repo.Code(st.Expect.Error).Valid() {
		return fmt.Errorf("%s.expect: unknown error code %q", where, st.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertExists, AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
	case AssertProperty:
		if a.Path == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: path and name are required for property", index)
		}
	case AssertChildCount:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for child_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for child_count", index)
		}
	case AssertKind:
		if a.Path == "" || a.Kind == "" {
			return fmt.Errorf("assertions[%d]: path and kind are required for kind", index)
		}
	case AssertDumpContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for dump_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
