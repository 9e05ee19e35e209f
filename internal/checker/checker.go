package checker

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fsmcheck/internal/contract"
	"github.com/roach88/fsmcheck/internal/fsm"
)

// Checker couples one machine with one registry and replays message
// sequences against it.
//
// A Checker owns its machine end-to-end. Use a fresh Checker for every
// independent run; a second Check continues from where the first one left
// the machine.
type Checker[C, M, O any] struct {
	machine  *fsm.Machine[C, M, O]
	registry *contract.Registry[C, M, O]
	opts     options

	report Report[C, M, O]
	cov    *coverage
}

type options struct {
	logger   *slog.Logger
	clock    Clock
	arrived  bool
	maxSteps int
}

// Option configures a Checker.
type Option func(*options)

// WithLogger sets the structured logger. Steps are logged at Debug,
// violations at Info. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used to stamp steps.
// Defaults to a fresh LogicalClock.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithArrivedPostconditions evaluates the postcondition of the arrived-at
// state instead of the departed one.
func WithArrivedPostconditions() Option {
	return func(o *options) {
		o.arrived = true
	}
}

// WithMaxSteps rejects sequences longer than n messages. Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		o.maxSteps = n
	}
}

// New creates a Checker over a fresh machine holding ctx in the initial state.
func New[C, M, O any](
	ctx C,
	initial fsm.State[C, M, O],
	registry *contract.Registry[C, M, O],
	opts ...Option,
) (*Checker[C, M, O], error) {
	machine, err := fsm.New(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return NewWithMachine(machine, registry, opts...), nil
}

// NewWithMachine creates a Checker that takes ownership of machine.
// The caller must not Send to machine afterwards.
func NewWithMachine[C, M, O any](
	machine *fsm.Machine[C, M, O],
	registry *contract.Registry[C, M, O],
	opts ...Option,
) *Checker[C, M, O] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.clock == nil {
		o.clock = NewClock()
	}
	if registry == nil {
		registry = contract.NewRegistry[C, M, O]()
	}

	return &Checker[C, M, O]{
		machine:  machine,
		registry: registry,
		opts:     o,
		cov:      newCoverage(),
	}
}

// Check applies msgs in order, enforcing every applicable contract at every
// step, and returns the first failure.
//
// Failures are returned as *StepError wrapping either a *contract.Violation
// or the machine's own error. Messages after the failing one are never
// applied.
func (c *Checker[C, M, O]) Check(msgs []M) error {
	c.report = Report[C, M, O]{Steps: make([]Step[C, M, O], 0, len(msgs))}
	c.cov = newCoverage()

	if c.opts.maxSteps > 0 && len(msgs) > c.opts.maxSteps {
		return fmt.Errorf("%w (%d > %d)", ErrTooManyMessages, len(msgs), c.opts.maxSteps)
	}

	for i, msg := range msgs {
		if err := c.step(i+1, msg); err != nil {
			c.opts.logger.Info("contract check failed",
				"step", i+1,
				"message", fmt.Sprint(msg),
				"err", err,
			)
			return err
		}
	}

	c.opts.logger.Debug("contract check passed", "steps", len(msgs))
	return nil
}

// step runs the five phases for one message.
func (c *Checker[C, M, O]) step(index int, msg M) error {
	// Stamp once per step; the seq is shared by the record and any error.
	seq := c.opts.clock.Next()
	fail := func(err error) error {
		return &StepError{Step: index, Seq: seq, Message: fmt.Sprint(msg), Err: err}
	}

	from, before := c.machine.State()
	if err := c.registry.CheckPreconditions(from, before); err != nil {
		return fail(err)
	}

	outputs, err := c.machine.Send(msg)
	c.report.Applied++
	if err != nil {
		return fail(err)
	}

	to, after := c.machine.State()
	c.cov.visit(from, to)
	c.report.Steps = append(c.report.Steps, Step[C, M, O]{
		Seq:     seq,
		From:    from,
		To:      to,
		Message: msg,
		Outputs: outputs,
		Context: after,
	})

	c.opts.logger.Debug("step applied",
		"step", index,
		"seq", seq,
		"from", from,
		"to", to,
		"outputs", len(outputs),
	)

	post := from
	if c.opts.arrived {
		post = to
	}
	if err := c.registry.CheckPostconditions(post, after); err != nil {
		return fail(err)
	}
	if err := c.registry.CheckInvariants(after); err != nil {
		return fail(err)
	}
	ev := contract.Evidence[C, M, O]{
		Before:  before,
		After:   after,
		Message: msg,
		Outputs: outputs,
	}
	if err := c.registry.CheckTransition(from, to, ev); err != nil {
		return fail(err)
	}

	return nil
}

// Report returns the report of the most recent Check.
func (c *Checker[C, M, O]) Report() Report[C, M, O] {
	r := c.report
	r.Uncovered = c.cov.uncovered(c.registry.HasState, c.registry.HasTransition)
	return r
}

// State returns the machine's current state name and a context snapshot.
func (c *Checker[C, M, O]) State() (string, C) {
	return c.machine.State()
}

// Applied returns the total number of messages the machine has received
// across all runs.
func (c *Checker[C, M, O]) Applied() int {
	return c.machine.Sent()
}
