package contract

import (
	"errors"
	"fmt"
	"sort"
)

// Predicate is a side-effect-free condition over a context.
type Predicate[C any] func(ctx C) bool

// Evidence is everything a transition rule can inspect about one step.
type Evidence[C, M, O any] struct {
	Before  C
	After   C
	Message M
	Outputs []O
}

// Rule validates one transition. It returns nil when the transition is
// legal, or an error describing the clause that failed.
type Rule[C, M, O any] func(ev Evidence[C, M, O]) error

// Pair is an ordered (from, to) transition key.
type Pair struct {
	From string
	To   string
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return p.From + " -> " + p.To
}

type condition[C any] struct {
	label string
	pred  Predicate[C]
}

type transition[C, M, O any] struct {
	label string
	rule  Rule[C, M, O]
}

// Registry is an append-only store of state-keyed and transition-keyed
// contracts plus global invariants.
type Registry[C, M, O any] struct {
	pre         map[string]condition[C]
	post        map[string]condition[C]
	invariants  []condition[C]
	transitions map[Pair]transition[C, M, O]
}

// NewRegistry creates an empty registry.
func NewRegistry[C, M, O any]() *Registry[C, M, O] {
	return &Registry[C, M, O]{
		pre:         make(map[string]condition[C]),
		post:        make(map[string]condition[C]),
		transitions: make(map[Pair]transition[C, M, O]),
	}
}

// Precondition registers the precondition for state, replacing any earlier one.
func (r *Registry[C, M, O]) Precondition(state, label string, pred Predicate[C]) *Registry[C, M, O] {
	r.pre[state] = condition[C]{label: label, pred: pred}
	return r
}

// Postcondition registers the postcondition for state, replacing any earlier one.
func (r *Registry[C, M, O]) Postcondition(state, label string, pred Predicate[C]) *Registry[C, M, O] {
	r.post[state] = condition[C]{label: label, pred: pred}
	return r
}

// Invariant appends a global invariant.
func (r *Registry[C, M, O]) Invariant(label string, pred Predicate[C]) *Registry[C, M, O] {
	r.invariants = append(r.invariants, condition[C]{label: label, pred: pred})
	return r
}

// Transition registers the rule for the (from, to) pair, replacing any earlier one.
func (r *Registry[C, M, O]) Transition(from, to, label string, rule Rule[C, M, O]) *Registry[C, M, O] {
	r.transitions[Pair{From: from, To: to}] = transition[C, M, O]{label: label, rule: rule}
	return r
}

// CheckPreconditions evaluates the precondition registered for state.
func (r *Registry[C, M, O]) CheckPreconditions(state string, ctx C) error {
	c, ok := r.pre[state]
	if !ok {
		return nil
	}
	if c.pred(ctx) {
		return nil
	}
	return &Violation{
		Kind:    KindPrecondition,
		State:   state,
		Label:   c.label,
		Index:   -1,
		Context: render(ctx),
	}
}

// CheckPostconditions evaluates the postcondition registered for state
// against ctx.
func (r *Registry[C, M, O]) CheckPostconditions(state string, ctx C) error {
	c, ok := r.post[state]
	if !ok {
		return nil
	}
	if c.pred(ctx) {
		return nil
	}
	return &Violation{
		Kind:    KindPostcondition,
		State:   state,
		Label:   c.label,
		Index:   -1,
		Context: render(ctx),
	}
}

// CheckInvariants evaluates every invariant in registration order and fails
// on the first false one.
func (r *Registry[C, M, O]) CheckInvariants(ctx C) error {
	for i, c := range r.invariants {
		if c.pred(ctx) {
			continue
		}
		return &Violation{
			Kind:    KindInvariant,
			Label:   c.label,
			Index:   i,
			Context: render(ctx),
		}
	}
	return nil
}

// CheckTransition evaluates the rule registered for the exact (from, to) pair.
func (r *Registry[C, M, O]) CheckTransition(from, to string, ev Evidence[C, M, O]) error {
	t, ok := r.transitions[Pair{From: from, To: to}]
	if !ok {
		return nil
	}
	err := t.rule(ev)
	if err == nil {
		return nil
	}
	return &Violation{
		Kind:    KindTransition,
		From:    from,
		To:      to,
		Label:   t.label,
		Index:   -1,
		Detail:  err.Error(),
		Context: render(ev.After),
	}
}

// HasState reports whether any precondition or postcondition is keyed by state.
func (r *Registry[C, M, O]) HasState(state string) bool {
	_, pre := r.pre[state]
	_, post := r.post[state]
	return pre || post
}

// HasTransition reports whether a rule is registered for (from, to).
func (r *Registry[C, M, O]) HasTransition(from, to string) bool {
	_, ok := r.transitions[Pair{From: from, To: to}]
	return ok
}

// States returns the sorted names that have a precondition or postcondition.
func (r *Registry[C, M, O]) States() []string {
	seen := make(map[string]struct{}, len(r.pre)+len(r.post))
	for s := range r.pre {
		seen[s] = struct{}{}
	}
	for s := range r.post {
		seen[s] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for s := range seen {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// Transitions returns the registered pairs ordered by from, then to.
func (r *Registry[C, M, O]) Transitions() []Pair {
	pairs := make([]Pair, 0, len(r.transitions))
	for p := range r.transitions {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	return pairs
}

// Invariants returns the number of registered invariants.
func (r *Registry[C, M, O]) Invariants() int {
	return len(r.invariants)
}

// Require returns nil when cond holds and a formatted error otherwise.
func Require(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return fmt.Errorf(format, args...)
}

// FromPredicate adapts a boolean transition predicate into a Rule.
func FromPredicate[C, M, O any](pred func(ev Evidence[C, M, O]) bool) Rule[C, M, O] {
	return func(ev Evidence[C, M, O]) error {
		if pred(ev) {
			return nil
		}
		return errRuleFailed
	}
}

// All combines rules; the first failing rule wins.
func All[C, M, O any](rules ...Rule[C, M, O]) Rule[C, M, O] {
	return func(ev Evidence[C, M, O]) error {
		for _, rule := range rules {
			if err := rule(ev); err != nil {
				return err
			}
		}
		return nil
	}
}

var errRuleFailed = errors.New("rule returned false")
