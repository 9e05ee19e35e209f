package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/fsmcheck/internal/checker"
	"github.com/roach88/fsmcheck/internal/contract"
	"github.com/roach88/fsmcheck/internal/fsm"
)

// Model is a named machine that can replay message specs.
type Model interface {
	Name() string
	Description() string

	// MessageKinds lists the accepted message kinds, sorted.
	MessageKinds() []string

	// Contracts summarizes the model's registered contracts.
	Contracts() Contracts

	// Run decodes msgs and checks them against a fresh machine.
	// Contract violations and machine errors are reported in the Outcome;
	// the returned error is for specs that cannot be decoded or a model
	// that cannot be started.
	Run(msgs []MessageSpec, opts ...checker.Option) (*Outcome, error)

	// Simulate delivers msgs to a fresh machine owned by an actor and
	// reports where it ended up. Contracts are not checked.
	Simulate(ctx context.Context, msgs []MessageSpec, opts SimulateOptions) (*Simulation, error)
}

// Contracts summarizes a registry.
type Contracts struct {
	States      []string `json:"states"`
	Transitions []string `json:"transitions"`
	Invariants  int      `json:"invariants"`
}

// Definition describes a model over concrete machine types.
type Definition[C, M, O any] struct {
	Name        string
	Description string

	// NewContext returns the context for a fresh run.
	NewContext func() C

	Initial fsm.State[C, M, O]

	// Contracts returns the registry for a fresh run. Nil means no contracts.
	Contracts func() *contract.Registry[C, M, O]

	// Messages maps each message kind to its decoder.
	Messages map[string]Decoder[M]
}

// Define wraps def as a Model.
func Define[C, M, O any](def Definition[C, M, O]) Model {
	return &typed[C, M, O]{def: def}
}

type typed[C, M, O any] struct {
	def Definition[C, M, O]
}

func (t *typed[C, M, O]) Name() string        { return t.def.Name }
func (t *typed[C, M, O]) Description() string { return t.def.Description }

func (t *typed[C, M, O]) MessageKinds() []string {
	kinds := make([]string, 0, len(t.def.Messages))
	for k := range t.def.Messages {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func (t *typed[C, M, O]) Contracts() Contracts {
	reg := t.registry()
	out := Contracts{
		States:     reg.States(),
		Invariants: reg.Invariants(),
	}
	if out.States == nil {
		out.States = []string{}
	}
	pairs := reg.Transitions()
	out.Transitions = make([]string, len(pairs))
	for i, p := range pairs {
		out.Transitions[i] = p.String()
	}
	return out
}

func (t *typed[C, M, O]) registry() *contract.Registry[C, M, O] {
	if t.def.Contracts == nil {
		return contract.NewRegistry[C, M, O]()
	}
	return t.def.Contracts()
}

// Decode turns specs into typed messages.
func (t *typed[C, M, O]) Decode(specs []MessageSpec) ([]M, error) {
	msgs := make([]M, len(specs))
	for i, spec := range specs {
		decode, ok := t.def.Messages[spec.Kind]
		if !ok {
			return nil, &DecodeError{Index: i, Kind: spec.Kind, Err: ErrUnknownMessage}
		}
		msg, err := decode(spec.Args)
		if err != nil {
			return nil, &DecodeError{Index: i, Kind: spec.Kind, Err: err}
		}
		msgs[i] = msg
	}
	return msgs, nil
}

func (t *typed[C, M, O]) Run(specs []MessageSpec, opts ...checker.Option) (*Outcome, error) {
	msgs, err := t.Decode(specs)
	if err != nil {
		return nil, err
	}

	c, err := checker.New(t.def.NewContext(), t.def.Initial, t.registry(), opts...)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", t.def.Name, err)
	}

	checkErr := c.Check(msgs)
	report := c.Report()
	state, ctx := c.State()

	out := &Outcome{
		Model:      t.def.Name,
		Applied:    report.Applied,
		Steps:      make([]Step, len(report.Steps)),
		FinalState: state,
		Context:    ctx,
		Uncovered:  newUncovered(report.Uncovered),
	}
	for i, s := range report.Steps {
		outputs := make([]string, len(s.Outputs))
		for j, o := range s.Outputs {
			outputs[j] = fmt.Sprint(o)
		}
		out.Steps[i] = Step{
			Seq:     s.Seq,
			From:    s.From,
			To:      s.To,
			Message: fmt.Sprint(s.Message),
			Outputs: outputs,
			Context: s.Context,
		}
	}
	out.setError(checkErr)
	return out, nil
}
