// Package bowl is a small reference model: the states of a cat food bowl.
//
// The cat is whiny and is always fed when her bowl is empty and she meows.
// If there is already food in the bowl she has to eat it before getting more.
// Every refill draws on a bag of reserves; once the reserves drop to the
// refill threshold the bowl asks the store for more.
package bowl

import (
	"fmt"
	"math"

	"github.com/roach88/fsmcheck/internal/fsm"
)

const (
	// MaxReserves is the number of bowls in a fresh bag of food.
	MaxReserves uint8 = 10

	// RefillThreshold is the reserve level at or below which a refill
	// requests more food from the store.
	RefillThreshold uint8 = 9

	// BuyAmount is how many bowls are ordered per store request.
	BuyAmount uint8 = 10

	// Full is the contents of a freshly filled bowl, in percent.
	Full uint8 = 100
)

// Context is the bowl's mutable record.
type Context struct {
	Contents uint8 `json:"contents"` // percent of the bowl that is full
	Reserves uint8 `json:"reserves"` // bowls of food left in the bag
}

// NewContext returns an empty bowl next to a full bag.
func NewContext() Context {
	return Context{Contents: 0, Reserves: MaxReserves}
}

// Msg is a message delivered to the bowl.
// Implemented by Meow, Eat and Bowls.
type Msg interface {
	bowlMsg()
	Kind() string
}

// Meow is the cat asking for food.
type Meow struct{}

// Eat is the cat eating Pct percent of a bowl.
type Eat struct {
	Pct uint8 `mapstructure:"pct"`
}

// Bowls is the store's reply delivering Num bowls of food.
type Bowls struct {
	Num uint8 `mapstructure:"num"`
}

func (Meow) bowlMsg()  {}
func (Eat) bowlMsg()   {}
func (Bowls) bowlMsg() {}

// Kind returns the message kind used in scenario files.
func (Meow) Kind() string  { return "meow" }
func (Eat) Kind() string   { return "eat" }
func (Bowls) Kind() string { return "bowls" }

func (m Eat) String() string   { return fmt.Sprintf("eat(%d)", m.Pct) }
func (m Bowls) String() string { return fmt.Sprintf("bowls(%d)", m.Num) }
func (Meow) String() string    { return "meow" }

// Req is a request for the outside world.
// The only request is Buy.
type Req interface {
	bowlReq()
}

// Buy asks the store for Num bowls of food.
type Buy struct {
	Num uint8 `json:"num"`
}

func (Buy) bowlReq() {}

func (b Buy) String() string { return fmt.Sprintf("buy(%d)", b.Num) }

// StateFn is a bowl state.
type StateFn = fsm.State[Context, Msg, Req]

// Machine is a bowl state machine.
type Machine = fsm.Machine[Context, Msg, Req]

// State names.
const (
	StateEmpty = "empty"
	StateFull  = "full"
)

var (
	emptyState StateFn
	fullState  StateFn
)

func init() {
	emptyState = fsm.NewState(StateEmpty, empty)
	fullState = fsm.NewState(StateFull, full)
}

// Empty returns the empty-bowl state.
func Empty() StateFn { return emptyState }

// FullState returns the full-bowl state.
func FullState() StateFn { return fullState }

// New returns a machine with an empty bowl and a full bag.
func New() *Machine {
	m, err := fsm.New(NewContext(), Empty())
	if err != nil {
		panic(fmt.Sprintf("bowl: %v", err))
	}
	return m
}

func empty(ctx *Context, msg Msg) (StateFn, []Req) {
	switch m := msg.(type) {
	case Meow:
		if ctx.Reserves == 0 {
			return fsm.Next(emptyState)
		}
		ctx.Contents = Full
		ctx.Reserves--
		if ctx.Reserves <= RefillThreshold {
			return fsm.Next[Context, Msg, Req](fullState, Buy{Num: BuyAmount})
		}
		return fsm.Next(fullState)

	case Bowls:
		// One of the delivered bowls goes straight into the dish.
		if m.Num == 0 {
			return fsm.Next(emptyState)
		}
		ctx.Reserves = stock(ctx.Reserves, m.Num-1)
		ctx.Contents = Full
		return fsm.Next(fullState)
	}
	return fsm.Next(emptyState)
}

func full(ctx *Context, msg Msg) (StateFn, []Req) {
	switch m := msg.(type) {
	case Eat:
		if m.Pct >= ctx.Contents {
			ctx.Contents = 0
			return fsm.Next(emptyState)
		}
		ctx.Contents -= m.Pct
		return fsm.Next(fullState)

	case Bowls:
		ctx.Reserves = stock(ctx.Reserves, m.Num)
	}
	return fsm.Next(fullState)
}

// stock adds n bowls to the bag, saturating at math.MaxUint8 so an
// oversized delivery stays visible to the stock limit.
func stock(reserves, n uint8) uint8 {
	if n > math.MaxUint8-reserves {
		return math.MaxUint8
	}
	return reserves + n
}
