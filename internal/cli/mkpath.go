package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/tree"
)

// MkpathOptions holds flags for the mkpath command.
type MkpathOptions struct {
	*RootOptions
	From      string // absolute start path
	Type      string // type of intermediate nodes
	FinalType string // type of the last created node
}

// MkpathResult is the JSON payload of the mkpath command.
type MkpathResult struct {
	Path        string   `json:"path"`
	ID          string   `json:"id"`
	PrimaryType string   `json:"primary_type"`
	Mixins      []string `json:"mixins,omitempty"`
}

// NewMkpathCommand creates the mkpath command, which finds or creates a
// path and commits.
func NewMkpathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MkpathOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mkpath <path>",
		Short: "Find or create every node along a path",
		Long: `Walk path below --from, creating each missing segment, and commit.

Existing segments are reused. Created nodes get --type, except the last one
which gets --final-type when set. With --type set, a path that already
resolves to a node of that type is returned unchanged.

Example:
  arbor mkpath models/sales --final-type rel:model`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMkpath(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "/", "absolute path to start from")
	cmd.Flags().StringVar(&opts.Type, "type", "", "node type for created segments (default nt:unstructured)")
	cmd.Flags().StringVar(&opts.FinalType, "final-type", "", "node type for the last created segment")

	return cmd
}

func runMkpath(cmd *cobra.Command, opts *MkpathOptions, path string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := openEnvironment(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return formatter.Fail(err)
	}
	defer env.Close()

	tx, err := env.store.Begin(cmd.Context(), "mkpath")
	if err != nil {
		return formatter.Fail(domainExit("failed to begin transaction", err))
	}
	defer func() {
		if !tx.State().Terminal() {
			_ = tx.Rollback()
		}
	}()

	from, err := env.store.Get(tx, opts.From)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot read %s", opts.From), err))
	}
	node, err := tree.FindOrCreate(tx, env.store, from, path, opts.Type, opts.FinalType)
	if err != nil {
		return formatter.Fail(domainExit(fmt.Sprintf("cannot create %s", path), err))
	}
	if err := tx.Commit(); err != nil {
		return formatter.Fail(domainExit("commit failed", err))
	}
	env.logger.Debug("path ready", "path", node.Path, "id", node.ID, "type", node.PrimaryType)

	if opts.Format == "json" {
		err = formatter.Success(MkpathResult{
			Path:        node.Path,
			ID:          node.ID,
			PrimaryType: node.PrimaryType,
			Mixins:      node.Mixins,
		})
	} else {
		err = formatter.Success(fmt.Sprintf("%s [%s]", node.Path, node.PrimaryType))
	}
	if err != nil {
		return err
	}
	return env.reportStats(opts.RootOptions, cmd.ErrOrStderr())
}
