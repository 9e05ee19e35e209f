package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tank struct {
	Level int
}

type fill int

type alarm string

type tankRegistry = Registry[tank, fill, alarm]

func newTankRegistry() *tankRegistry {
	return NewRegistry[tank, fill, alarm]()
}

func TestRegistry_VacuousTruth(t *testing.T) {
	r := newTankRegistry()

	for _, ctx := range []tank{{Level: -100}, {Level: 0}, {Level: 1 << 20}} {
		assert.NoError(t, r.CheckPreconditions("anything", ctx))
		assert.NoError(t, r.CheckPostconditions("anything", ctx))
		assert.NoError(t, r.CheckInvariants(ctx))
		assert.NoError(t, r.CheckTransition("a", "b", Evidence[tank, fill, alarm]{Before: ctx, After: ctx}))
	}
}

func TestRegistry_UnrelatedKeysAreVacuous(t *testing.T) {
	r := newTankRegistry().
		Precondition("low", "never", func(tank) bool { return false }).
		Postcondition("low", "never", func(tank) bool { return false }).
		Transition("low", "high", "never", FromPredicate(func(Evidence[tank, fill, alarm]) bool { return false }))

	assert.NoError(t, r.CheckPreconditions("high", tank{}))
	assert.NoError(t, r.CheckPostconditions("high", tank{}))
	assert.NoError(t, r.CheckTransition("high", "low", Evidence[tank, fill, alarm]{}))
	assert.NoError(t, r.CheckTransition("low", "low", Evidence[tank, fill, alarm]{}))
}

func TestRegistry_Precondition(t *testing.T) {
	r := newTankRegistry().
		Precondition("low", "low tank is below 10", func(c tank) bool { return c.Level < 10 })

	require.NoError(t, r.CheckPreconditions("low", tank{Level: 3}))

	err := r.CheckPreconditions("low", tank{Level: 12})
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindPrecondition, v.Kind)
	assert.Equal(t, "low", v.State)
	assert.Equal(t, "low tank is below 10", v.Label)
	assert.Equal(t, "{Level:12}", v.Context)
	assert.Contains(t, err.Error(), `precondition violated in state "low": low tank is below 10`)
	assert.Contains(t, err.Error(), "{Level:12}")
}

func TestRegistry_Postcondition(t *testing.T) {
	r := newTankRegistry().
		Postcondition("high", "high tank is at least 10", func(c tank) bool { return c.Level >= 10 })

	require.NoError(t, r.CheckPostconditions("high", tank{Level: 10}))

	err := r.CheckPostconditions("high", tank{Level: 9})
	assert.Equal(t, KindPostcondition, ViolationKind(err))
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := newTankRegistry().
		Precondition("low", "first", func(tank) bool { return false }).
		Precondition("low", "second", func(tank) bool { return true })

	assert.NoError(t, r.CheckPreconditions("low", tank{}))
	assert.Equal(t, []string{"low"}, r.States())
}

func TestRegistry_InvariantsFailOnFirstFalse(t *testing.T) {
	var evaluated []string
	track := func(label string, result bool) Predicate[tank] {
		return func(tank) bool {
			evaluated = append(evaluated, label)
			return result
		}
	}

	r := newTankRegistry().
		Invariant("first", track("first", true)).
		Invariant("second", track("second", false)).
		Invariant("third", track("third", false))

	err := r.CheckInvariants(tank{Level: 1})
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindInvariant, v.Kind)
	assert.Equal(t, "second", v.Label)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, []string{"first", "second"}, evaluated)
	assert.Contains(t, err.Error(), "invariant violated (#1): second")
	assert.Equal(t, 3, r.Invariants())
}

func TestRegistry_TransitionSeesAllEvidence(t *testing.T) {
	var got Evidence[tank, fill, alarm]
	r := newTankRegistry().
		Transition("low", "high", "filled by a large pour", func(ev Evidence[tank, fill, alarm]) error {
			got = ev
			if ev.Message < 10 {
				return fmt.Errorf("pour of %d is too small", ev.Message)
			}
			return nil
		})

	ev := Evidence[tank, fill, alarm]{
		Before:  tank{Level: 1},
		After:   tank{Level: 6},
		Message: 5,
		Outputs: []alarm{"ding"},
	}
	err := r.CheckTransition("low", "high", ev)
	require.Error(t, err)
	assert.Equal(t, ev, got)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindTransition, v.Kind)
	assert.Equal(t, "low", v.From)
	assert.Equal(t, "high", v.To)
	assert.Equal(t, "pour of 5 is too small", v.Detail)
	assert.Equal(t, "{Level:6}", v.Context)
	assert.Contains(t, err.Error(), `transition violated for "low" -> "high": filled by a large pour: pour of 5 is too small`)

	ev.Message = 12
	assert.NoError(t, r.CheckTransition("low", "high", ev))
}

func TestRegistry_Introspection(t *testing.T) {
	ok := func(tank) bool { return true }
	rule := FromPredicate(func(Evidence[tank, fill, alarm]) bool { return true })

	r := newTankRegistry().
		Precondition("b", "", ok).
		Postcondition("a", "", ok).
		Transition("b", "a", "", rule).
		Transition("a", "c", "", rule).
		Transition("a", "b", "", rule)

	assert.Equal(t, []string{"a", "b"}, r.States())
	assert.Equal(t, []Pair{{"a", "b"}, {"a", "c"}, {"b", "a"}}, r.Transitions())
	assert.True(t, r.HasState("a"))
	assert.False(t, r.HasState("c"))
	assert.True(t, r.HasTransition("a", "c"))
	assert.False(t, r.HasTransition("c", "a"))
	assert.Equal(t, "a -> c", Pair{"a", "c"}.String())
}

func TestRequireAndAll(t *testing.T) {
	assert.NoError(t, Require(true, "unused"))
	assert.EqualError(t, Require(false, "level %d", 3), "level 3")

	pass := func(Evidence[tank, fill, alarm]) error { return nil }
	boom := errors.New("boom")
	failing := func(Evidence[tank, fill, alarm]) error { return boom }
	never := func(Evidence[tank, fill, alarm]) error {
		t.Fatal("rules after the first failure must not run")
		return nil
	}

	assert.NoError(t, All(pass, pass)(Evidence[tank, fill, alarm]{}))
	assert.ErrorIs(t, All[tank, fill, alarm](pass, failing, never)(Evidence[tank, fill, alarm]{}), boom)
}

func TestViolationHelpers(t *testing.T) {
	wrapped := fmt.Errorf("step 3: %w", &Violation{Kind: KindInvariant, Index: 0})
	assert.True(t, IsViolation(wrapped))
	assert.Equal(t, KindInvariant, ViolationKind(wrapped))

	plain := errors.New("not a violation")
	assert.False(t, IsViolation(plain))
	assert.Equal(t, Kind(""), ViolationKind(plain))
	_, ok := AsViolation(plain)
	assert.False(t, ok)
}
