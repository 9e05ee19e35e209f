package bowl

import (
	"github.com/roach88/fsmcheck/internal/contract"
)

// Registry is a bowl contract registry.
type Registry = contract.Registry[Context, Msg, Req]

// Evidence is the evidence handed to bowl transition rules.
type Evidence = contract.Evidence[Context, Msg, Req]

// Contract labels.
const (
	LabelEmptyHasNoFood  = "empty bowl has no food"
	LabelFullHasFood     = "full bowl holds between 1 and 100 percent"
	LabelNeverOverflows  = "bowl never holds more than 100 percent"
	LabelFilledOnRequest = "bowl is filled only by a meow or a store delivery"
	LabelEmptiedByEating = "bowl is emptied only by eating"
	LabelStockLimit      = "bag holds at most 10 spare bowls"
)

// Contracts returns the registry describing a correct bowl.
func Contracts() *Registry {
	return contract.NewRegistry[Context, Msg, Req]().
		Precondition(StateEmpty, LabelEmptyHasNoFood, func(c Context) bool {
			return c.Contents == 0
		}).
		Precondition(StateFull, LabelFullHasFood, func(c Context) bool {
			return c.Contents > 0 && c.Contents <= Full
		}).
		Invariant(LabelNeverOverflows, func(c Context) bool {
			return c.Contents <= Full
		}).
		Transition(StateEmpty, StateFull, LabelFilledOnRequest, emptyToFull).
		Transition(StateFull, StateEmpty, LabelEmptiedByEating, fullToEmpty)
}

// StockedContracts extends Contracts with a limit on spare bowls.
// The bowl itself does not enforce the limit, so over-delivery by the
// store breaks it.
func StockedContracts() *Registry {
	return Contracts().Invariant(LabelStockLimit, func(c Context) bool {
		return c.Reserves <= MaxReserves
	})
}

func emptyToFull(ev Evidence) error {
	if err := contract.Require(ev.Before.Contents == 0, "bowl had %d%% before filling", ev.Before.Contents); err != nil {
		return err
	}
	if err := contract.Require(ev.After.Contents == Full, "bowl holds %d%% after filling", ev.After.Contents); err != nil {
		return err
	}
	switch ev.Message.(type) {
	case Meow, Bowls:
		return nil
	}
	return contract.Require(false, "filled by %v", ev.Message)
}

func fullToEmpty(ev Evidence) error {
	if err := contract.Require(ev.Before.Contents > 0, "bowl was already empty"); err != nil {
		return err
	}
	if err := contract.Require(ev.After.Contents == 0, "bowl holds %d%% after emptying", ev.After.Contents); err != nil {
		return err
	}
	if _, ok := ev.Message.(Eat); !ok {
		return contract.Require(false, "emptied by %v", ev.Message)
	}
	return nil
}
