package harness

// Step outcomes recorded in the trace.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Phase   string `json:"phase"` // "setup" or "flow"
	Op      string `json:"op"`
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Code    string `json:"code,omitempty"`   // error code when Outcome is "error"
	Result  string `json:"result,omitempty"` // path the step produced, if any
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Dump is the traversal dump of the whole tree after the flow.
	Dump string `json:"dump"`

	// Metrics is the store's counter snapshot after commit.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event, numbering it.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
