package scenario

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fsmcheck/internal/canon"
	"github.com/roach88/fsmcheck/internal/model"
)

// TraceSnapshot is the part of a run compared against golden files.
type TraceSnapshot struct {
	Scenario   string           `json:"scenario"`
	Steps      []model.Step     `json:"steps"`
	FinalState string           `json:"final_state"`
	Violation  *model.Violation `json:"violation,omitempty"`
	Failure    string           `json:"failure,omitempty"`
}

// Snapshot extracts the golden-comparable part of r.
func Snapshot(r *Result) TraceSnapshot {
	return TraceSnapshot{
		Scenario:   r.Scenario,
		Steps:      r.Outcome.Steps,
		FinalState: r.Outcome.FinalState,
		Violation:  r.Outcome.Violation,
		Failure:    r.Outcome.Failure,
	}
}

// AssertGolden compares the canonical JSON of r's trace with
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func AssertGolden(t *testing.T, name string, r *Result) error {
	t.Helper()

	data, err := canon.Marshal(Snapshot(r))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
