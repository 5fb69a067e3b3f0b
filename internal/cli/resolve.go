package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/relational"
)

// ResolvedElement is one typed view in the resolve output.
type ResolvedElement struct {
	Path string          `json:"path"`
	Kind relational.Kind `json:"kind"`
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	ResolvedElement
	Children []ResolvedElement `json:"children"`
}

// NewResolveCommand creates the resolve command, which prints the typed
// view of a node and of its resolvable children.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the typed view of a node",
		Long: `Resolve the node at path through the built-in resolvers and list the
children that resolve too. A node no resolver accepts fails with
TYPE_MISMATCH.

Example:
  arbor resolve /models/sales/orders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootOpts, args[0])
		},
	}
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	formatter := newFormatter(cmd, rootOpts)

	env, err := openEnvironment(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err)
	}
	defer env.Close()

	tx, err := env.store.Begin(cmd.Context(), "resolve")
	if err != nil {
		return formatter.Fail(domainExit("failed to begin transaction", err))
	}
	defer tx.Rollback()

	node, err := env.store.Get(tx, path)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot read %s", path), err))
	}

	registry := relational.DefaultRegistry().WithMetrics(env.store.Metrics())
	elem, err := registry.ResolveNode(tx, env.store, node)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot resolve %s", path), err))
	}
	children, err := registry.Project(elem)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot list children of %s", path), err))
	}

	result := ResolveResult{
		ResolvedElement: ResolvedElement{Path: elem.Path(), Kind: elem.Kind()},
		Children:        make([]ResolvedElement, 0, len(children)),
	}
	for _, c := range children {
		result.Children = append(result.Children, ResolvedElement{Path: c.Path(), Kind: c.Kind()})
	}

	if rootOpts.Format == "json" {
		err = formatter.Success(result)
	} else {
		err = formatter.Success(formatResolve(result))
	}
	if err != nil {
		return err
	}
	return env.reportStats(rootOpts, cmd.ErrOrStderr())
}

// formatResolve renders the element and its children, one per line, with
// children indented.
func formatResolve(r ResolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %s", r.Kind, r.Path)
	for _, c := range r.Children {
		fmt.Fprintf(&b, "\n  %-16s %s", c.Kind, c.Path)
	}
	return b.String()
}
