package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/schema"
)

// TypesOptions holds flags for the types command.
type TypesOptions struct {
	*RootOptions
	Files []string // extra CUE files layered over the configured types
}

// PropertyInfo describes one property in the types output.
type PropertyInfo struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Multiple      bool   `json:"multiple,omitempty"`
	Mandatory     bool   `json:"mandatory,omitempty"`
	Default       string `json:"default,omitempty"`
	DeclaringType string `json:"declaring_type"`
}

// TypeInfo describes one node type in the types output.
type TypeInfo struct {
	Name       string         `json:"name"`
	Mixin      bool           `json:"mixin,omitempty"`
	Residual   bool           `json:"residual,omitempty"`
	Supertypes []string       `json:"supertypes,omitempty"`
	Properties []PropertyInfo `json:"properties"`
}

// NewTypesCommand creates the types command, which lists the node types the
// store validates properties against.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TypesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "types [name...]",
		Short: "List node types and their properties",
		Long: `List the builtin node types, plus those of the configured schema file,
with their inherited properties. Name arguments restrict the listing.

--file layers more CUE files on top, which also checks that they compile.

Example:
  arbor types rel:table
  arbor types --file ./types/audit.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd, opts, args)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Files, "file", nil, "extra CUE type file (repeatable)")

	return cmd
}

func runTypes(cmd *cobra.Command, opts *TypesOptions, names []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := loadEnvironment(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err)
	}
	types := env.types
	for _, f := range opts.Files {
		formatter.VerboseLog("loading %s", f)
		types, err = schema.LoadFile(types, f)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitFailure, "invalid type file", err))
		}
	}

	if len(names) == 0 {
		names = types.Names()
	}
	infos := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		nt, ok := types.Lookup(name)
		if !ok {
			return formatter.Fail(NewExitError(ExitFailure, fmt.Sprintf("unknown node type %q", name)))
		}
		infos = append(infos, describeType(types, nt))
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}
	var b strings.Builder
	for i, info := range infos {
		if i > 0 {
			b.WriteString("\n")
		}
		writeType(&b, info)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

func describeType(types *schema.Registry, nt schema.NodeType) TypeInfo {
	info := TypeInfo{
		Name:       nt.Name,
		Mixin:      nt.Mixin,
		Residual:   nt.Residual,
		Supertypes: nt.Supertypes,
		Properties: []PropertyInfo{},
	}
	for _, pd := range types.PropertyDescriptors(nt.Name) {
		p := PropertyInfo{
			Name:          pd.Name,
			Type:          pd.Type.String(),
			Multiple:      pd.Multiple,
			Mandatory:     pd.Mandatory,
			DeclaringType: pd.DeclaringType,
		}
		if pd.HasDefault {
			p.Default = pd.Default
		}
		info.Properties = append(info.Properties, p)
	}
	return info
}

// writeType renders a type header followed by one indented line per property:
//
//	rel:table < rel:relational
//	  rel:cardinality long = -1
//	  rel:description string (rel:relational)
func writeType(b *strings.Builder, info TypeInfo) {
	b.WriteString(info.Name)
	if len(info.Supertypes) > 0 {
		fmt.Fprintf(b, " < %s", strings.Join(info.Supertypes, ", "))
	}
	if info.Mixin {
		b.WriteString(" [mixin]")
	}
	if info.Residual {
		b.WriteString(" [residual]")
	}
	b.WriteString("\n")

	for _, p := range info.Properties {
		fmt.Fprintf(b, "  %s %s", p.Name, p.Type)
		if p.Multiple {
			b.WriteString("[]")
		}
		if p.Mandatory {
			b.WriteString(" !")
		}
		if p.Default != "" {
			fmt.Fprintf(b, " = %s", p.Default)
		}
		if p.DeclaringType != info.Name {
			fmt.Fprintf(b, " (%s)", p.DeclaringType)
		}
		b.WriteString("\n")
	}
}
