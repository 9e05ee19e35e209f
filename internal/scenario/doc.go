// Package scenario replays message sequences from YAML files against a
// registered model and judges the verdict.
//
// # Scenario Format
//
//	name: meow_then_eat
//	description: "A hungry cat meows, eats, and the bowl is refilled"
//	model: bowl
//	messages:
//	  - kind: meow
//	  - kind: eat
//	    args: { pct: 30 }
//	expect:
//	  outcome: ok
//	  final_state: full
//	  context: { contents: 70 }
//	  outputs: ["buy(10)"]
//
// # Expectations
//
//   - outcome: one of ok, violation, failure (required)
//   - kind: the violated check (precondition, postcondition, invariant, transition)
//   - label: the violated contract's label
//   - step: the 1-indexed failing message
//   - final_state: the state after the run
//   - context: subset of the final context, compared field by field
//   - outputs: every output of the run, in order
//
// Only outcome is required; every other field is checked when present.
// kind and label require outcome: violation, and step requires a failing
// outcome.
//
// # Golden Traces
//
// AssertGolden compares the canonical JSON of a run's trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/scenario -update
package scenario
