package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string // explicit config file, overrides the search path
	Database   string // database path, overrides the config file
	Verbose    bool
	Stats      bool   // print store counters to stderr after the command
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the arbor CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arbor",
		Short: "arbor - typed views over a node tree",
		Long: "Inspect and build a hierarchical node store through its typed relational views: " +
			"models, tables, columns, keys and statement options.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: search $ARBOR_CONFIG, ./arbor.yaml, ~/.config/arbor)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database path (overrides the config file)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.Stats, "stats", false, "print store counters to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewMkpathCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
