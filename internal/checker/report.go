package checker

import (
	"sort"

	"github.com/roach88/fsmcheck/internal/contract"
)

// Step records one applied message.
type Step[C, M, O any] struct {
	Seq     int64
	From    string
	To      string
	Message M
	Outputs []O
	Context C // context after the message was applied
}

// Report describes the most recent run of a Checker.
type Report[C, M, O any] struct {
	// Applied is the number of messages sent to the machine.
	Applied int

	// Steps holds one record per applied message, in order.
	Steps []Step[C, M, O]

	// Uncovered lists states and transitions the run went through that had
	// no registered contract. Absence of a contract is success, so these are
	// the places where a passing run proves nothing.
	Uncovered Coverage
}

// Coverage is a set of state names and transition pairs.
type Coverage struct {
	States      []string
	Transitions []contract.Pair
}

// Empty reports whether the coverage lists nothing.
func (c Coverage) Empty() bool {
	return len(c.States) == 0 && len(c.Transitions) == 0
}

// coverage tracks which states and transitions a run visited.
type coverage struct {
	states      map[string]struct{}
	transitions map[contract.Pair]struct{}
}

func newCoverage() *coverage {
	return &coverage{
		states:      make(map[string]struct{}),
		transitions: make(map[contract.Pair]struct{}),
	}
}

func (c *coverage) visit(from, to string) {
	c.states[from] = struct{}{}
	c.states[to] = struct{}{}
	c.transitions[contract.Pair{From: from, To: to}] = struct{}{}
}

// uncovered returns visited entries for which has* reports false.
func (c *coverage) uncovered(hasState func(string) bool, hasTransition func(from, to string) bool) Coverage {
	var out Coverage
	for s := range c.states {
		if !hasState(s) {
			out.States = append(out.States, s)
		}
	}
	for p := range c.transitions {
		// Self-loops are rarely given rules; only report real moves.
		if p.From == p.To {
			continue
		}
		if !hasTransition(p.From, p.To) {
			out.Transitions = append(out.Transitions, p)
		}
	}
	sort.Strings(out.States)
	sort.Slice(out.Transitions, func(i, j int) bool {
		if out.Transitions[i].From != out.Transitions[j].From {
			return out.Transitions[i].From < out.Transitions[j].From
		}
		return out.Transitions[i].To < out.Transitions[j].To
	})
	return out
}
