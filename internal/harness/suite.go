package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScenarioNotFoundError is returned when a named scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// FindScenarios expands paths into scenario files. A directory contributes
// every *.yaml and *.yml file directly inside it, sorted by name. Files are
// kept in the order given.
func FindScenarios(paths ...string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{Path: p}
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}

// SuiteResult pairs each scenario file with its outcome.
type SuiteResult struct {
	Path     string
	Scenario string
	Result   *Result
	Err      error
}

// Passed reports whether the scenario loaded, ran and passed.
func (r SuiteResult) Passed() bool {
	return r.Err == nil && r.Result != nil && r.Result.Pass
}

// RunFiles loads and runs each scenario file. Load and run failures are
// recorded per file rather than stopping the suite.
func RunFiles(files []string, opts ...Option) []SuiteResult {
	results := make([]SuiteResult, 0, len(files))
	for _, f := range files {
		sr := SuiteResult{Path: f}
		scenario, err := LoadScenario(f)
		if err != nil {
			sr.Err = err
			results = append(results, sr)
			continue
		}
		sr.Scenario = scenario.Name
		sr.Result, sr.Err = Run(scenario, opts...)
		results = append(results, sr)
	}
	return results
}
