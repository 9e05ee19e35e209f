package fsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a two-state test machine: "even" and "odd" by total.
type counter struct {
	Total int
	Log   []int
}

type add int

type note string

var (
	evenState State[counter, add, note]
	oddState  State[counter, add, note]
)

func init() {
	evenState = NewState("even", step)
	oddState = NewState("odd", step)
}

func step(ctx *counter, n add) (State[counter, add, note], []note) {
	ctx.Total += int(n)
	ctx.Log = append(ctx.Log, int(n))
	if ctx.Total%2 == 0 {
		return Next(evenState)
	}
	return Next(oddState, note("odd"))
}

func TestNew_RejectsInvalidInitialState(t *testing.T) {
	_, err := New(counter{}, State[counter, add, note]{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = New(counter{}, NewState[counter, add, note]("named", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `initial state "named"`)
}

func TestMachine_InitialState(t *testing.T) {
	m, err := New(counter{Total: 4}, evenState)
	require.NoError(t, err)

	name, ctx := m.State()
	assert.Equal(t, "even", name)
	assert.Equal(t, 4, ctx.Total)
	assert.Equal(t, 0, m.Sent())
}

func TestMachine_SendAdvancesStateAndCollectsOutputs(t *testing.T) {
	m, err := New(counter{}, evenState)
	require.NoError(t, err)

	out, err := m.Send(3)
	require.NoError(t, err)
	assert.Equal(t, []note{"odd"}, out)

	name, ctx := m.State()
	assert.Equal(t, "odd", name)
	assert.Equal(t, 3, ctx.Total)

	out, err = m.Send(1)
	require.NoError(t, err)
	assert.Empty(t, out)

	name, ctx = m.State()
	assert.Equal(t, "even", name)
	assert.Equal(t, 4, ctx.Total)
	assert.Equal(t, 2, m.Sent())
}

func TestMachine_StateIsReadOnly(t *testing.T) {
	m, err := New(counter{}, evenState)
	require.NoError(t, err)

	_, err = m.Send(2)
	require.NoError(t, err)

	_, ctx := m.State()
	ctx.Total = 99

	_, again := m.State()
	assert.Equal(t, 2, again.Total, "mutating a snapshot must not reach the machine")
}

func TestMachine_InvalidNextStateKeepsCurrentState(t *testing.T) {
	broken := NewState("broken", func(ctx *counter, n add) (State[counter, add, note], []note) {
		ctx.Total += int(n)
		return State[counter, add, note]{}, []note{"lost"}
	})

	m, err := New(counter{}, broken)
	require.NoError(t, err)

	out, err := m.Send(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "broken", te.From)

	assert.Equal(t, []note{"lost"}, out)
	name, ctx := m.State()
	assert.Equal(t, "broken", name)
	assert.Equal(t, 5, ctx.Total, "context mutation stands")
	assert.Equal(t, 1, m.Sent())
}

func TestMachine_Determinism(t *testing.T) {
	msgs := []add{1, 2, 3, 7, 10, 1}

	run := func() (string, counter) {
		m, err := New(counter{}, evenState)
		require.NoError(t, err)
		for _, msg := range msgs {
			_, err := m.Send(msg)
			require.NoError(t, err)
		}
		return m.State()
	}

	name1, ctx1 := run()
	name2, ctx2 := run()
	assert.Equal(t, name1, name2)
	assert.Equal(t, ctx1, ctx2)
}

func TestNext(t *testing.T) {
	next, out := Next(oddState)
	assert.Equal(t, "odd", next.Name())
	assert.Nil(t, out)

	next, out = Next(evenState, "a", "b")
	assert.Equal(t, "even", next.Name())
	assert.Equal(t, []note{"a", "b"}, out)
}

func TestState_Valid(t *testing.T) {
	assert.True(t, evenState.Valid())
	assert.False(t, State[counter, add, note]{}.Valid())
	assert.Equal(t, "<invalid>", State[counter, add, note]{}.String())
	assert.Equal(t, "even", evenState.String())
}

// deep is a context with a reference field that needs Clone.
type deep struct {
	Items map[string]int
}

func (d deep) Clone() deep {
	items := make(map[string]int, len(d.Items))
	for k, v := range d.Items {
		items[k] = v
	}
	return deep{Items: items}
}

func TestSnapshot_UsesCloner(t *testing.T) {
	put := NewState("put", func(ctx *deep, key string) (State[deep, string, struct{}], []struct{}) {
		ctx.Items[key]++
		return State[deep, string, struct{}]{}, nil
	})
	m, err := New(deep{Items: map[string]int{}}, put)
	require.NoError(t, err)

	_, before := m.State()
	_, _ = m.Send("a")
	_, after := m.State()

	assert.Equal(t, 0, before.Items["a"], "snapshot taken before Send is independent")
	assert.Equal(t, 1, after.Items["a"])
}

func TestSnapshot_PlainValue(t *testing.T) {
	c := counter{Total: 1}
	snap := Snapshot(&c)
	c.Total = 2
	assert.Equal(t, 1, snap.Total)
}
