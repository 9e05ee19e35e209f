package bowl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m *Machine, msg Msg) []Req {
	t.Helper()
	out, err := m.Send(msg)
	require.NoError(t, err)
	return out
}

func TestStateTransitions(t *testing.T) {
	m := New()

	name, ctx := m.State()
	assert.Equal(t, StateEmpty, name)
	assert.Equal(t, uint8(0), ctx.Contents)

	send(t, m, Meow{})
	name, ctx = m.State()
	assert.Equal(t, StateFull, name)
	assert.Equal(t, uint8(100), ctx.Contents)

	send(t, m, Eat{Pct: 30})
	name, ctx = m.State()
	assert.Equal(t, StateFull, name)
	assert.Equal(t, uint8(70), ctx.Contents)

	send(t, m, Meow{})
	name, ctx = m.State()
	assert.Equal(t, StateFull, name, "meowing at a full bowl does nothing")
	assert.Equal(t, uint8(70), ctx.Contents)

	send(t, m, Eat{Pct: 75})
	name, ctx = m.State()
	assert.Equal(t, StateEmpty, name)
	assert.Equal(t, uint8(0), ctx.Contents)
}

func TestMeow_RefillRequestsMoreFood(t *testing.T) {
	m := New()

	out := send(t, m, Meow{})
	require.Len(t, out, 1)
	assert.Equal(t, Buy{Num: BuyAmount}, out[0])

	_, ctx := m.State()
	assert.Equal(t, uint8(9), ctx.Reserves)
}

func TestMeow_NoReservesStaysEmpty(t *testing.T) {
	m := New()
	for i := 0; i < int(MaxReserves); i++ {
		send(t, m, Meow{})
		send(t, m, Eat{Pct: 100})
	}

	_, ctx := m.State()
	require.Equal(t, uint8(0), ctx.Reserves)

	out := send(t, m, Meow{})
	assert.Empty(t, out)
	name, ctx := m.State()
	assert.Equal(t, StateEmpty, name)
	assert.Equal(t, uint8(0), ctx.Contents)
}

func TestEat_Boundary(t *testing.T) {
	tests := []struct {
		name         string
		pct          uint8
		wantState    string
		wantContents uint8
	}{
		{"less than contents", 69, StateFull, 1},
		{"equal to contents", 70, StateEmpty, 0},
		{"more than contents", 71, StateEmpty, 0},
		{"far more than contents", 255, StateEmpty, 0},
		{"nothing", 0, StateFull, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			send(t, m, Meow{})
			send(t, m, Eat{Pct: 30})

			send(t, m, Eat{Pct: tt.pct})

			name, ctx := m.State()
			assert.Equal(t, tt.wantState, name)
			assert.Equal(t, tt.wantContents, ctx.Contents)
		})
	}
}

func TestBowls_StoreDelivery(t *testing.T) {
	t.Run("empty bowl is filled from the delivery", func(t *testing.T) {
		m := New()
		send(t, m, Bowls{Num: 5})

		name, ctx := m.State()
		assert.Equal(t, StateFull, name)
		assert.Equal(t, uint8(100), ctx.Contents)
		assert.Equal(t, uint8(14), ctx.Reserves)
	})

	t.Run("full bowl stores the delivery", func(t *testing.T) {
		m := New()
		send(t, m, Meow{})
		send(t, m, Bowls{Num: 10})

		name, ctx := m.State()
		assert.Equal(t, StateFull, name)
		assert.Equal(t, uint8(19), ctx.Reserves)
	})

	t.Run("oversized delivery saturates the bag", func(t *testing.T) {
		m := New()
		send(t, m, Meow{})
		send(t, m, Bowls{Num: 250})

		_, ctx := m.State()
		assert.Equal(t, uint8(math.MaxUint8), ctx.Reserves)
	})

	t.Run("oversized delivery to an empty bowl saturates the bag", func(t *testing.T) {
		m := New()
		send(t, m, Bowls{Num: 255})

		name, ctx := m.State()
		assert.Equal(t, StateFull, name)
		assert.Equal(t, uint8(math.MaxUint8), ctx.Reserves)
	})

	t.Run("empty delivery leaves the bowl empty", func(t *testing.T) {
		m := New()
		send(t, m, Bowls{Num: 0})

		name, ctx := m.State()
		assert.Equal(t, StateEmpty, name)
		assert.Equal(t, MaxReserves, ctx.Reserves)
	})
}

func TestEat_OnEmptyBowlIsIgnored(t *testing.T) {
	m := New()
	out := send(t, m, Eat{Pct: 10})
	assert.Empty(t, out)

	name, ctx := m.State()
	assert.Equal(t, StateEmpty, name)
	assert.Equal(t, NewContext(), ctx)
}

func TestMessageKinds(t *testing.T) {
	assert.Equal(t, "meow", Meow{}.Kind())
	assert.Equal(t, "eat", Eat{Pct: 1}.Kind())
	assert.Equal(t, "bowls", Bowls{Num: 1}.Kind())
	assert.Equal(t, "eat(30)", Eat{Pct: 30}.String())
}
