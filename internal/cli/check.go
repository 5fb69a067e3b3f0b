package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/harness"
	"github.com/roach88/arbor/internal/logging"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Update bool   // rewrite golden files instead of comparing
	Filter string // only run scenarios whose name contains Filter
}

// ScenarioResult represents the result of running a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Passed bool     `json:"passed"`
	Errors []string `json:"errors,omitempty"`
	Golden string   `json:"golden,omitempty"` // "match", "mismatch", "missing" or "updated"
}

// CheckResult represents the overall result of the check command.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// Golden comparison outcomes.
const (
	goldenMatch    = "match"
	goldenMismatch = "mismatch"
	goldenMissing  = "missing"
	goldenUpdated  = "updated"
)

// NewCheckCommand creates the check command, which runs scenario files and
// compares their tree dumps to golden files.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario>...",
		Short: "Run tree scenarios and compare golden dumps",
		Long: `Run scenario files, or every *.yaml file in the given directories, each
against a fresh in-memory store.

A scenario passes when its expect clauses and assertions hold and its tree
dump matches golden/<name>.golden next to the scenario file. --update
rewrites the golden files.

Example:
  arbor check ./scenarios
  arbor check ./scenarios/sales_model.yaml --update`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this text")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, paths []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	files, err := harness.FindScenarios(paths...)
	if err != nil {
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) {
			return formatter.Fail(WrapExitError(ExitCommandError, "scenario not found", err))
		}
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to list scenarios", err))
	}
	if len(files) == 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "no scenario files found"))
	}

	logger := logging.NewNop()
	if opts.Verbose {
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), slog.LevelDebug)
	}

	result := CheckResult{Scenarios: []ScenarioResult{}}
	for _, sr := range harness.RunFiles(files, harness.WithLogger(logger)) {
		if opts.Filter != "" && sr.Err == nil && !strings.Contains(sr.Scenario, opts.Filter) {
			formatter.VerboseLog("skipping %s", sr.Scenario)
			continue
		}
		r := checkScenario(sr, opts.Update)
		result.Scenarios = append(result.Scenarios, r)
		result.Total++
		if r.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeCheckText(cmd.OutOrStdout(), result, opts.Update)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// checkScenario folds the run outcome and the golden comparison into one result.
func checkScenario(sr harness.SuiteResult, update bool) ScenarioResult {
	r := ScenarioResult{Name: sr.Scenario, Path: sr.Path}
	if r.Name == "" {
		r.Name = strings.TrimSuffix(filepath.Base(sr.Path), filepath.Ext(sr.Path))
	}
	if sr.Err != nil {
		r.Errors = []string{sr.Err.Error()}
		return r
	}
	r.Errors = sr.Result.Errors

	golden := goldenFilePath(sr.Path, sr.Scenario)
	var err error
	r.Golden, err = compareGolden(golden, sr.Result.Dump, update)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
	switch r.Golden {
	case goldenMismatch:
		r.Errors = append(r.Errors, fmt.Sprintf("dump differs from %s", golden))
	case goldenMissing:
		r.Errors = append(r.Errors, fmt.Sprintf("golden file %s missing (run with --update)", golden))
	}
	r.Passed = sr.Result.Pass && len(r.Errors) == 0
	return r
}

// goldenFilePath returns golden/<name>.golden next to the scenario file.
func goldenFilePath(scenarioPath, name string) string {
	return filepath.Join(filepath.Dir(scenarioPath), "golden", name+".golden")
}

func compareGolden(path, dump string, update bool) (string, error) {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(dump), 0644); err != nil {
			return "", fmt.Errorf("write golden file: %w", err)
		}
		return goldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return goldenMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, []byte(dump)) {
		return goldenMismatch, nil
	}
	return goldenMatch, nil
}

func writeCheckText(w io.Writer, result CheckResult, update bool) {
	for _, s := range result.Scenarios {
		if s.Passed {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range s.Errors {
				fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n    "))
			}
		}
	}
	if update {
		fmt.Fprintln(w, "Golden files updated")
	}
	fmt.Fprintf(w, "\nCheck Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
