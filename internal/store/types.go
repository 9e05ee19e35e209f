package store

// Batch is one recorded invocation of the check command.
type Batch struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Filter string `json:"filter,omitempty"`
	Seq    int64  `json:"seq"`
}

// Run is the recorded verdict of one scenario.
type Run struct {
	ID       string `json:"id"`
	BatchID  string `json:"batch_id"`
	Scenario string `json:"scenario"`
	Model    string `json:"model"`
	Pass     bool   `json:"pass"`

	// Outcome is ok, violation or failure for runs that executed, and
	// error for scenarios that could not run.
	Outcome string `json:"outcome"`

	Applied        int    `json:"applied"`
	FailedStep     int    `json:"failed_step,omitempty"`
	ViolationKind  string `json:"violation_kind,omitempty"`
	ViolationLabel string `json:"violation_label,omitempty"`
	FinalState     string `json:"final_state,omitempty"`

	// Errors holds expectation mismatches, or the error for outcome error.
	Errors []string `json:"errors,omitempty"`

	Fingerprint string `json:"fingerprint,omitempty"`
	Seq         int64  `json:"seq"`
}

// OutcomeError marks a run whose scenario could not be executed.
const OutcomeError = "error"
