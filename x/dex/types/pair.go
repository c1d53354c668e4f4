package types

// TradePair identifies a market between a base and a quote token.
type TradePair struct {
	Hash  H
	Base  H
	Quote H
}
