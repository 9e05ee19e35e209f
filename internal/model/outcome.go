package model

import (
	"errors"

	"github.com/roach88/fsmcheck/internal/canon"
	"github.com/roach88/fsmcheck/internal/checker"
	"github.com/roach88/fsmcheck/internal/contract"
)

// Outcome is the rendered result of running one message sequence.
type Outcome struct {
	Model   string `json:"model"`
	Applied int    `json:"applied"`
	Steps   []Step `json:"steps"`

	// FinalState and Context describe the machine after the run, including
	// after a failed step.
	FinalState string `json:"final_state"`
	Context    any    `json:"context"`

	// Violation is set when a contract failed.
	Violation *Violation `json:"violation,omitempty"`

	// Failure is set when the machine itself failed (for example a handler
	// returned an invalid state) or the sequence was rejected.
	Failure string `json:"failure,omitempty"`

	// FailedStep is the 1-indexed failing message, 0 when none failed.
	FailedStep int `json:"failed_step,omitempty"`

	Uncovered Uncovered `json:"uncovered"`
}

// Step is one applied message.
type Step struct {
	Seq     int64    `json:"seq"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Message string   `json:"message"`
	Outputs []string `json:"outputs"`
	Context any      `json:"context"`
}

// Violation mirrors contract.Violation with a stable JSON shape.
type Violation struct {
	Kind   string `json:"kind"`
	State  string `json:"state,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Label  string `json:"label,omitempty"`
	Index  int    `json:"index"`
	Detail string `json:"detail,omitempty"`
}

// Uncovered lists what a passing run went through without any contract.
type Uncovered struct {
	States      []string `json:"states"`
	Transitions []string `json:"transitions"`
}

// OK reports whether the run finished without a violation or failure.
func (o *Outcome) OK() bool {
	return o.Violation == nil && o.Failure == ""
}

// Fingerprint returns the content fingerprint of the outcome. Two runs of
// the same sequence on fresh machines have equal fingerprints.
func (o *Outcome) Fingerprint() (string, error) {
	return canon.Fingerprint(canon.DomainTrace, o)
}

// setError classifies err into a violation or a failure.
func (o *Outcome) setError(err error) {
	if err == nil {
		return
	}
	o.FailedStep = checker.FailedStep(err)

	if v, ok := contract.AsViolation(err); ok {
		o.Violation = &Violation{
			Kind:   string(v.Kind),
			State:  v.State,
			From:   v.From,
			To:     v.To,
			Label:  v.Label,
			Index:  v.Index,
			Detail: v.Detail,
		}
		return
	}

	// Report the machine's error without the step prefix; FailedStep
	// already carries the position.
	var se *checker.StepError
	if errors.As(err, &se) {
		o.Failure = se.Err.Error()
		return
	}
	o.Failure = err.Error()
}

func newUncovered(c checker.Coverage) Uncovered {
	u := Uncovered{
		States:      c.States,
		Transitions: make([]string, len(c.Transitions)),
	}
	if u.States == nil {
		u.States = []string{}
	}
	for i, p := range c.Transitions {
		u.Transitions[i] = p.String()
	}
	return u
}
