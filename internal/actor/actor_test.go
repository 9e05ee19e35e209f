package actor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fsmcheck/internal/actor"
	"github.com/roach88/fsmcheck/internal/bowl"
	"github.com/roach88/fsmcheck/internal/fsm"
)

type bowlActor = actor.Actor[bowl.Context, bowl.Msg, bowl.Req]

func startActor(t *testing.T, opts ...actor.Option[bowl.Req]) (*bowlActor, context.CancelFunc) {
	t.Helper()
	a := actor.New(bowl.New(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-a.Done()
	})
	return a, cancel
}

func TestActor_AskAppliesInOrder(t *testing.T) {
	a, _ := startActor(t)
	ctx := context.Background()

	out, err := a.Ask(ctx, bowl.Meow{})
	require.NoError(t, err)
	assert.Equal(t, []bowl.Req{bowl.Buy{Num: bowl.BuyAmount}}, out)

	_, err = a.Ask(ctx, bowl.Eat{Pct: 30})
	require.NoError(t, err)

	name, bctx, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, bowl.StateFull, name)
	assert.Equal(t, bowl.Context{Contents: 70, Reserves: 9}, bctx)
}

func TestActor_TellDeliversOutputsToSink(t *testing.T) {
	type delivery struct {
		from    string
		outputs []bowl.Req
	}
	got := make(chan delivery, 4)
	sink := func(from string, outputs []bowl.Req, err error) {
		got <- delivery{from: from, outputs: outputs}
	}

	a, _ := startActor(t, actor.WithOutputSink(sink))

	require.NoError(t, a.Tell(bowl.Meow{}))
	require.NoError(t, a.Tell(bowl.Eat{Pct: 100}))

	first := <-got
	assert.Equal(t, bowl.StateEmpty, first.from)
	assert.Len(t, first.outputs, 1)

	second := <-got
	assert.Equal(t, bowl.StateFull, second.from)
	assert.Empty(t, second.outputs)
}

func TestActor_ConcurrentProducersAreSerialized(t *testing.T) {
	// The handler re-enters itself on every message; a torn
	// read-modify-write would lose increments.
	var self fsm.State[int, int, struct{}]
	self = fsm.NewState("counting", func(ctx *int, n int) (fsm.State[int, int, struct{}], []struct{}) {
		v := *ctx
		*ctx = v + n
		return fsm.Next(self)
	})

	m, err := fsm.New(0, self)
	require.NoError(t, err)
	a := actor.New(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_, err := a.Ask(ctx, 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	_, total, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, producers*perProducer, total)
}

func TestActor_StopFinishesQueuedThenRejects(t *testing.T) {
	a := actor.New(bowl.New())

	require.NoError(t, a.Tell(bowl.Meow{}))
	require.NoError(t, a.Tell(bowl.Eat{Pct: 10}))
	a.Stop()

	assert.ErrorIs(t, a.Tell(bowl.Meow{}), actor.ErrStopped)

	require.NoError(t, a.Run(context.Background()))

	_, _, err := a.Snapshot(context.Background())
	assert.ErrorIs(t, err, actor.ErrStopped)
}

func TestActor_ContextCancelRejectsPending(t *testing.T) {
	a := actor.New(bowl.New())
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := a.Ask(context.Background(), bowl.Meow{})
		errc <- err
	}()

	// Let the Ask enqueue, then cancel before the loop starts.
	require.Eventually(t, func() bool { return a.Pending() == 1 }, time.Second, time.Millisecond)
	cancel()

	err := a.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))

	select {
	case err := <-errc:
		// Run may pop the request before noticing cancellation.
		if err != nil {
			assert.ErrorIs(t, err, actor.ErrStopped)
		}
	case <-time.After(time.Second):
		t.Fatal("Ask did not return after Run exited")
	}
}

func TestActor_AskHonorsCallerContext(t *testing.T) {
	a := actor.New(bowl.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// No Run loop: the request is never applied.
	_, err := a.Ask(ctx, bowl.Meow{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestActor_MachineErrorIsReturnedAndCounted(t *testing.T) {
	broken := fsm.NewState("broken", func(ctx *int, n int) (fsm.State[int, int, string], []string) {
		return fsm.State[int, int, string]{}, nil
	})
	m, err := fsm.New(0, broken)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := actor.NewMetrics(reg)
	a := actor.New(m, actor.WithMetrics[string](metrics))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()

	_, err = a.Ask(ctx, 1)
	assert.ErrorIs(t, err, fsm.ErrInvalidState)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SendErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Messages.WithLabelValues("broken")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *actor.Metrics
	m.IncrementMessages("x")
	m.IncrementSendErrors()
	m.SetQueueDepth(3)
}
