package types

// OType is the side of a limit order. A Buy order gives up base to
// acquire quote; a Sell order gives up quote to acquire base — see
// GiveToken/HaveToken and §4.1's sell_amount convention.
type OType uint8

const (
	Buy OType = iota
	Sell
)

func (t OType) String() string {
	if t == Buy {
		return "Buy"
	}
	return "Sell"
}

// Opposite returns the other side.
func (t OType) Opposite() OType {
	if t == Buy {
		return Sell
	}
	return Buy
}

// Status is the lifecycle state of a LimitOrder. Once Filled or
// Canceled, an order is terminal and must never be mutated again.
type Status uint8

const (
	Created Status = iota
	PartialFilled
	Filled
	Canceled
)

func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case PartialFilled:
		return "PartialFilled"
	case Filled:
		return "Filled"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// LimitOrder is a resting or taker order against a trade pair.
type LimitOrder struct {
	Hash  H
	Base  H
	Quote H
	Owner A
	Price P

	SellAmount Q
	BuyAmount  Q

	RemainedSellAmount Q
	RemainedBuyAmount  Q

	OType  OType
	Status Status
}

// IsFinished reports whether the order may be pruned from the ladder:
// fully filled with no residual buy amount, or canceled.
func (o *LimitOrder) IsFinished() bool {
	if o.Status == Canceled {
		return true
	}
	return o.Status == Filled && o.RemainedBuyAmount.IsZero()
}

// IsActive reports whether the order can still participate in matching.
func (o *LimitOrder) IsActive() bool {
	return o.Status == Created || o.Status == PartialFilled
}

// GiveToken returns the token the order owner is selling. Per §4.1,
// sell_amount on a Buy order is denominated in base, so a Buy order
// gives up base; a Sell order gives up quote.
func (o *LimitOrder) GiveToken() H {
	if o.OType == Buy {
		return o.Base
	}
	return o.Quote
}

// HaveToken returns the token the order owner is acquiring.
func (o *LimitOrder) HaveToken() H {
	if o.OType == Buy {
		return o.Quote
	}
	return o.Base
}
