// Package actor wraps one state machine for use from many goroutines.
//
// An Actor owns exactly one fsm.Machine. Every message delivery and every
// state read goes through a single FIFO queue drained by one Run loop, so
// the machine keeps its single-writer contract: one message is applied at a
// time, in arrival order, and a reader never observes a context
// mid-mutation.
//
// Producers either Tell (fire-and-forget; outputs go to the OutputSink) or
// Ask (request/response; outputs are returned to the caller). There are no
// timeouts or retries inside the actor; Ask honors the caller's context.
package actor

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/fsmcheck/internal/fsm"
)

// ErrStopped is returned for requests made after the actor stopped, and for
// requests still queued when it stopped.
var ErrStopped = errors.New("actor stopped")

// OutputSink receives the outputs of messages delivered with Tell.
// It is called from the Run goroutine and must not call back into the actor
// synchronously.
type OutputSink[O any] func(from string, outputs []O, err error)

type requestKind int

const (
	requestSend requestKind = iota + 1
	requestSnapshot
)

type request[C, M, O any] struct {
	kind  requestKind
	msg   M
	reply chan response[C, O] // nil for Tell
}

type response[C, O any] struct {
	state   string
	ctx     C
	outputs []O
	err     error
}

// Actor serializes access to one machine.
//
// Thread-safety model:
//   - Tell, Ask, Snapshot, Stop: safe from any goroutine
//   - Run: must be called from exactly one goroutine
type Actor[C, M, O any] struct {
	machine *fsm.Machine[C, M, O]
	queue   *queue[request[C, M, O]]
	done    chan struct{}

	sink    OutputSink[O]
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures an Actor.
type Option[O any] func(*config[O])

type config[O any] struct {
	sink    OutputSink[O]
	logger  *slog.Logger
	metrics *Metrics
}

// WithOutputSink sets the receiver for outputs of Tell deliveries.
func WithOutputSink[O any](sink OutputSink[O]) Option[O] {
	return func(c *config[O]) {
		c.sink = sink
	}
}

// WithLogger sets the structured logger.
func WithLogger[O any](logger *slog.Logger) Option[O] {
	return func(c *config[O]) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics[O any](metrics *Metrics) Option[O] {
	return func(c *config[O]) {
		c.metrics = metrics
	}
}

// New creates an Actor that takes ownership of machine.
// The caller must not use machine directly afterwards.
func New[C, M, O any](machine *fsm.Machine[C, M, O], opts ...Option[O]) *Actor[C, M, O] {
	cfg := config[O]{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Actor[C, M, O]{
		machine: machine,
		queue:   newQueue[request[C, M, O]](),
		done:    make(chan struct{}),
		sink:    cfg.sink,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Tell queues msg without waiting for it to be applied.
func (a *Actor[C, M, O]) Tell(msg M) error {
	if !a.queue.push(request[C, M, O]{kind: requestSend, msg: msg}) {
		return ErrStopped
	}
	a.metrics.SetQueueDepth(a.queue.size())
	return nil
}

// Ask queues msg and waits until it has been applied, returning its outputs.
func (a *Actor[C, M, O]) Ask(ctx context.Context, msg M) ([]O, error) {
	resp, err := a.call(ctx, request[C, M, O]{kind: requestSend, msg: msg})
	if err != nil {
		return nil, err
	}
	return resp.outputs, resp.err
}

// Snapshot returns the state name and a context snapshot, taken between two
// message deliveries.
func (a *Actor[C, M, O]) Snapshot(ctx context.Context) (string, C, error) {
	resp, err := a.call(ctx, request[C, M, O]{kind: requestSnapshot})
	if err == nil {
		err = resp.err
	}
	if err != nil {
		var zero C
		return "", zero, err
	}
	return resp.state, resp.ctx, nil
}

func (a *Actor[C, M, O]) call(ctx context.Context, req request[C, M, O]) (response[C, O], error) {
	req.reply = make(chan response[C, O], 1)
	if !a.queue.push(req) {
		return response[C, O]{}, ErrStopped
	}
	a.metrics.SetQueueDepth(a.queue.size())

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response[C, O]{}, ctx.Err()
	case <-a.done:
		// The loop may have answered just before exiting.
		select {
		case resp := <-req.reply:
			return resp, nil
		default:
			return response[C, O]{}, ErrStopped
		}
	}
}

// Run drains the queue until ctx is cancelled or Stop is called.
// Requests still queued at that point are answered with ErrStopped.
func (a *Actor[C, M, O]) Run(ctx context.Context) error {
	a.logger.Debug("actor starting")
	defer close(a.done)
	defer a.reject()

	for {
		if req, ok := a.queue.tryPop(); ok {
			a.metrics.SetQueueDepth(a.queue.size())
			a.process(req)
			continue
		}

		select {
		case <-ctx.Done():
			a.logger.Debug("actor stopping: context cancelled")
			a.queue.close()
			return ctx.Err()

		case <-a.queue.wait():
			// The signal channel is closed by Stop, which makes this case
			// fire immediately; finish what was queued before exiting.
			if a.queue.size() == 0 && a.stopped() {
				a.logger.Debug("actor stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the requests already queued have
// been applied.
func (a *Actor[C, M, O]) Stop() {
	a.queue.close()
}

// Pending returns the number of queued requests.
func (a *Actor[C, M, O]) Pending() int {
	return a.queue.size()
}

// Done is closed when Run has returned.
func (a *Actor[C, M, O]) Done() <-chan struct{} {
	return a.done
}

func (a *Actor[C, M, O]) stopped() bool {
	a.queue.mu.Lock()
	defer a.queue.mu.Unlock()
	return a.queue.closed
}

// process applies one request. Called only from the Run goroutine.
func (a *Actor[C, M, O]) process(req request[C, M, O]) {
	switch req.kind {
	case requestSnapshot:
		name, ctx := a.machine.State()
		req.reply <- response[C, O]{state: name, ctx: ctx}

	case requestSend:
		from, _ := a.machine.State()
		outputs, err := a.machine.Send(req.msg)
		a.metrics.IncrementMessages(from)
		if err != nil {
			a.metrics.IncrementSendErrors()
			a.logger.Error("message rejected by machine", "state", from, "err", err)
		}

		if req.reply != nil {
			req.reply <- response[C, O]{outputs: outputs, err: err}
			return
		}
		if a.sink != nil {
			a.sink(from, outputs, err)
		}
	}
}

// reject answers every request left in the queue with ErrStopped.
func (a *Actor[C, M, O]) reject() {
	for _, req := range a.queue.drain() {
		if req.reply != nil {
			req.reply <- response[C, O]{err: ErrStopped}
		}
	}
}
