package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/tree"
)

// TreeResult is the JSON payload of the tree command.
type TreeResult struct {
	Path string `json:"path"`
	Dump string `json:"dump"`
}

// NewTreeCommand creates the tree command, which prints the traversal dump
// of a subtree.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the subtree under a path",
		Long: `Print every node under path (default "/") with its properties,
one line per node and property, indented by depth.

Example:
  arbor tree /models/sales --db ./arbor.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return runTree(cmd, rootOpts, path)
		},
	}
}

func runTree(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	formatter := newFormatter(cmd, rootOpts)

	env, err := openEnvironment(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err)
	}
	defer env.Close()

	tx, err := env.store.Begin(cmd.Context(), "tree")
	if err != nil {
		return formatter.Fail(domainExit("failed to begin transaction", err))
	}
	defer tx.Rollback()

	node, err := env.store.Get(tx, path)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot read %s", path), err))
	}
	dump, err := tree.Traverse(tx, env.store, node)
	if err != nil {
		return formatter.Fail(domainExit("traversal failed", err))
	}
	formatter.VerboseLog("traversed %s in transaction %s", node.Path, tx.ID())

	if rootOpts.Format == "json" {
		err = formatter.Success(TreeResult{Path: node.Path, Dump: dump})
	} else {
		_, err = fmt.Fprint(cmd.OutOrStdout(), dump)
	}
	if err != nil {
		return err
	}
	return env.reportStats(rootOpts, cmd.ErrOrStderr())
}
