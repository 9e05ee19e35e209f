package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fsmcheck/internal/actor"
	"github.com/roach88/fsmcheck/internal/fsm"
)

// Simulation is the result of delivering messages through an actor,
// without contract checking.
type Simulation struct {
	Model string `json:"model"`

	// Delivered counts messages the machine accepted.
	Delivered int      `json:"delivered"`
	Outputs   []string `json:"outputs"`

	FinalState string `json:"final_state"`
	Context    any    `json:"context"`

	// Failure is the first machine error, prefixed with its message number.
	Failure string `json:"failure,omitempty"`
}

// SimulateOptions configures Simulate. The zero value is usable.
type SimulateOptions struct {
	Metrics *actor.Metrics
	Logger  *slog.Logger
}

func (t *typed[C, M, O]) Simulate(ctx context.Context, specs []MessageSpec, opts SimulateOptions) (*Simulation, error) {
	msgs, err := t.Decode(specs)
	if err != nil {
		return nil, err
	}

	m, err := fsm.New(t.def.NewContext(), t.def.Initial)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", t.def.Name, err)
	}

	sim := &Simulation{Model: t.def.Name, Outputs: []string{}}
	delivery := 0
	sink := func(from string, outputs []O, err error) {
		delivery++
		if err != nil {
			if sim.Failure == "" {
				sim.Failure = fmt.Sprintf("message %d: %v", delivery, err)
			}
			return
		}
		sim.Delivered++
		for _, o := range outputs {
			sim.Outputs = append(sim.Outputs, fmt.Sprint(o))
		}
	}

	actorOpts := []actor.Option[O]{actor.WithOutputSink(sink), actor.WithMetrics[O](opts.Metrics)}
	if opts.Logger != nil {
		actorOpts = append(actorOpts, actor.WithLogger[O](opts.Logger))
	}
	a := actor.New(m, actorOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-a.Done()
	}()
	go func() { _ = a.Run(runCtx) }()

	for _, msg := range msgs {
		if err := a.Tell(msg); err != nil {
			return nil, fmt.Errorf("model %s: %w", t.def.Name, err)
		}
	}

	// Snapshot is queued behind every Tell, so the sink has seen them all.
	state, c, err := a.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", t.def.Name, err)
	}
	sim.FinalState = state
	sim.Context = c
	return sim, nil
}
