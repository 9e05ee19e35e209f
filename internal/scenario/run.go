package scenario

import (
	"fmt"

	"github.com/roach88/fsmcheck/internal/checker"
	"github.com/roach88/fsmcheck/internal/model"
)

// Result is the verdict of one scenario.
type Result struct {
	Scenario string `json:"scenario"`
	Model    string `json:"model"`

	// Pass is true when the run matched every expectation.
	Pass bool `json:"pass"`

	// Errors lists the mismatches. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	Outcome *model.Outcome `json:"outcome"`

	// Fingerprint identifies the run's trace.
	Fingerprint string `json:"fingerprint"`
}

// Run replays s against its model from catalog and evaluates the verdict.
//
// The returned error is for scenarios that cannot run at all (unknown model,
// undecodable messages). A run that completes with the wrong verdict is a
// failing Result, not an error.
func Run(catalog *model.Catalog, s *Scenario, opts ...checker.Option) (*Result, error) {
	m, err := catalog.Lookup(s.Model)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	out, err := m.Run(s.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	fp, err := out.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	errs := Evaluate(out, s.Expect)
	return &Result{
		Scenario:    s.Name,
		Model:       m.Name(),
		Pass:        len(errs) == 0,
		Errors:      errs,
		Outcome:     out,
		Fingerprint: fp,
	}, nil
}
