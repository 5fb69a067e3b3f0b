package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/arbor/internal/value"
)

//go:embed defs.cue
var defsCUE []byte

//go:embed types.cue
var typesCUE []byte

// CompileError represents a schema error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Load(typesCUE, "types.cue")
})

// Default returns the built-in node types. The result is shared and immutable.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Load compiles CUE node type definitions into a standalone registry.
//
// The source declares node types under a top-level "types" struct:
//
//	types: "rel:table": {
//		supertypes: ["rel:relational"]
//		properties: "rel:cardinality": {type: "long", default: "-1"}
//	}
func Load(src []byte, filename string) (*Registry, error) {
	types, err := Compile(src, filename)
	if err != nil {
		return nil, err
	}
	return NewRegistry(types...)
}

// LoadFile compiles a CUE file and layers its types over base.
// Types in the file may inherit from types of base.
func LoadFile(base *Registry, path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	types, err := Compile(src, path)
	if err != nil {
		return nil, err
	}
	return base.With(types...)
}

// Compile parses CUE node type definitions after unifying them with the
// #NodeType and #Property definitions.
func Compile(src []byte, filename string) ([]NodeType, error) {
	ctx := cuecontext.New()

	defs := ctx.CompileBytes(defsCUE, cue.Filename("defs.cue"))
	if err := defs.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := defs.Unify(v)
	if err := unified.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	typesVal := unified.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "types is required",
			Pos:     v.Pos(),
		}
	}
	if err := typesVal.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var types []NodeType
	for iter.Next() {
		nt, err := compileNodeType(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		types = append(types, nt)
	}
	if len(types) == 0 {
		return nil, &CompileError{
			Field:   "types",
			Message: "no node types declared",
			Pos:     v.Pos(),
		}
	}
	return types, nil
}

func compileNodeType(name string, v cue.Value) (NodeType, error) {
	nt := NodeType{Name: name}

	var err error
	if nt.Mixin, err = v.LookupPath(cue.ParsePath("mixin")).Bool(); err != nil {
		return nt, formatCUEError(err)
	}
	if nt.Residual, err = v.LookupPath(cue.ParsePath("residual")).Bool(); err != nil {
		return nt, formatCUEError(err)
	}

	supIter, err := v.LookupPath(cue.ParsePath("supertypes")).List()
	if err != nil {
		return nt, formatCUEError(err)
	}
	for supIter.Next() {
		sup, err := supIter.Value().String()
		if err != nil {
			return nt, formatCUEError(err)
		}
		nt.Supertypes = append(nt.Supertypes, sup)
	}

	propIter, err := v.LookupPath(cue.ParsePath("properties")).Fields()
	if err != nil {
		return nt, formatCUEError(err)
	}
	for propIter.Next() {
		pd, err := compileProperty(name, propIter.Selector().Unquoted(), propIter.Value())
		if err != nil {
			return nt, err
		}
		nt.Properties = append(nt.Properties, pd)
	}

	return nt, nil
}

func compileProperty(typeName, name string, v cue.Value) (PropertyDescriptor, error) {
	pd := PropertyDescriptor{Name: name, DeclaringType: typeName}

	typeStr, err := v.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return pd, formatCUEError(err)
	}
	if pd.Type, err = value.ParseType(typeStr); err != nil {
		return pd, &CompileError{Field: typeName + "." + name, Message: err.Error(), Pos: v.Pos()}
	}

	if pd.Multiple, err = v.LookupPath(cue.ParsePath("multiple")).Bool(); err != nil {
		return pd, formatCUEError(err)
	}
	if pd.Mandatory, err = v.LookupPath(cue.ParsePath("mandatory")).Bool(); err != nil {
		return pd, formatCUEError(err)
	}

	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		if pd.Default, err = dv.String(); err != nil {
			return pd, formatCUEError(err)
		}
		if _, err := value.Parse(pd.Type, pd.Default); err != nil {
			return pd, &CompileError{
				Field:   typeName + "." + name,
				Message: fmt.Sprintf("default %q: %v", pd.Default, err),
				Pos:     dv.Pos(),
			}
		}
		pd.HasDefault = true
	}

	return pd, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
