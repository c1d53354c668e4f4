package types

// Trade is an immutable record of one executed fill between a maker
// and a taker order.
type Trade struct {
	Hash H

	Base  H
	Quote H

	Buyer  A
	Seller A
	Maker  A
	Taker  A

	// OType is the taker's order type.
	OType OType
	// Price is always the maker's resting price (price improvement
	// for the taker).
	Price P

	BaseAmount  Q
	QuoteAmount Q
}
