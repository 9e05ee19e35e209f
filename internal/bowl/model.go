package bowl

import "github.com/roach88/fsmcheck/internal/model"

// Catalog names.
const (
	ModelName        = "bowl"
	StockedModelName = "bowl-stocked"
)

// Model returns the bowl as a data-driven model.
//
// In a scenario file:
//
//	model: bowl
//	messages:
//	  - kind: meow
//	  - kind: eat
//	    args: {pct: 30}
//	  - kind: bowls
//	    args: {num: 3}
func Model() model.Model {
	return model.Define(definition(ModelName,
		"cat food bowl refilled from a reserve of spare bowls",
		Contracts))
}

// StockedModel is the bowl checked against StockedContracts.
func StockedModel() model.Model {
	return model.Define(definition(StockedModelName,
		"cat food bowl whose bag must never hold more than 10 spare bowls",
		StockedContracts))
}

func definition(name, description string, contracts func() *Registry) model.Definition[Context, Msg, Req] {
	return model.Definition[Context, Msg, Req]{
		Name:        name,
		Description: description,
		NewContext:  NewContext,
		Initial:     Empty(),
		Contracts:   contracts,
		Messages: map[string]model.Decoder[Msg]{
			Meow{}.Kind():  model.As[Msg, Meow](),
			Eat{}.Kind():   model.As[Msg, Eat](),
			Bowls{}.Kind(): model.As[Msg, Bowls](),
		},
	}
}
