package scenario

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roach88/fsmcheck/internal/model"
)

// OutcomeOf classifies a run as ok, violation or failure.
func OutcomeOf(out *model.Outcome) string {
	switch {
	case out.Violation != nil:
		return OutcomeViolation
	case out.Failure != "":
		return OutcomeFailure
	default:
		return OutcomeOK
	}
}

// Evaluate compares a run against exp and returns one message per mismatch.
// An empty result means the run matched.
func Evaluate(out *model.Outcome, exp Expect) []string {
	var errs []string
	mismatch := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if got := OutcomeOf(out); got != exp.Outcome {
		mismatch("outcome", exp.Outcome, describe(out))
	}

	if exp.Kind != "" || exp.Label != "" {
		var kind, label string
		if out.Violation != nil {
			kind, label = out.Violation.Kind, out.Violation.Label
		}
		if exp.Kind != "" && kind != exp.Kind {
			mismatch("kind", exp.Kind, orNone(kind))
		}
		if exp.Label != "" && label != exp.Label {
			mismatch("label", fmt.Sprintf("%q", exp.Label), orNone(quoteNonEmpty(label)))
		}
	}

	if exp.Step != 0 && out.FailedStep != exp.Step {
		mismatch("step", exp.Step, out.FailedStep)
	}

	if exp.FinalState != "" && out.FinalState != exp.FinalState {
		mismatch("final_state", exp.FinalState, out.FinalState)
	}

	if len(exp.Context) > 0 {
		errs = append(errs, compareContext(out.Context, exp.Context)...)
	}

	if exp.Outputs != nil {
		got := allOutputs(out)
		if fmt.Sprint(got) != fmt.Sprint(exp.Outputs) {
			mismatch("outputs", exp.Outputs, got)
		}
	}

	return errs
}

// compareContext checks each expected field against the JSON form of the
// final context. Values are compared by their printed form so that YAML
// integers match JSON numbers.
func compareContext(ctx any, want map[string]any) []string {
	raw, err := json.Marshal(ctx)
	if err != nil {
		return []string{fmt.Sprintf("context: cannot encode %T: %v", ctx, err)}
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		return []string{fmt.Sprintf("context: %T is not an object", ctx)}
	}

	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, k := range keys {
		v, ok := got[k]
		if !ok {
			errs = append(errs, fmt.Sprintf("context.%s: expected %v, field not present", k, want[k]))
			continue
		}
		if fmt.Sprint(v) != fmt.Sprint(want[k]) {
			errs = append(errs, fmt.Sprintf("context.%s: expected %v, got %v", k, want[k], v))
		}
	}
	return errs
}

func allOutputs(out *model.Outcome) []string {
	all := []string{}
	for _, s := range out.Steps {
		all = append(all, s.Outputs...)
	}
	return all
}

func describe(out *model.Outcome) string {
	switch OutcomeOf(out) {
	case OutcomeViolation:
		return fmt.Sprintf("violation (%s at step %d)", out.Violation.Kind, out.FailedStep)
	case OutcomeFailure:
		return fmt.Sprintf("failure (%s)", out.Failure)
	default:
		return OutcomeOK
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func quoteNonEmpty(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf("%q", s)
}
