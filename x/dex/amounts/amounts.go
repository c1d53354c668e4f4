// Package amounts implements the fixed-point price/quantity
// arithmetic of the matching core: converting a resting order's sell
// amount into its counterparty amount, and sizing a single trade
// between a maker and a taker order.
package amounts

import (
	"cosmossdk.io/math"
	"github.com/latticefi/spotdex/x/dex/types"
)

var priceFactorUint = math.NewUint(uint64(types.PriceFactor))

// ValidateBounds checks §4.1's pre-matcher bonds: 0 < price <= PMax
// and 0 < sellAmount <= QMax. This mirrors the original's
// ensure_bonds step, kept distinct from CounterpartyAmount so the
// dispatch shell can run it before constructing the order.
func ValidateBounds(price types.P, sellAmount types.Q) error {
	if price < types.PMin || price > types.PMax {
		return types.ErrInvalidPrice
	}
	if sellAmount.IsZero() || sellAmount.GT(types.QMax) {
		return types.ErrInvalidAmount
	}
	return nil
}

// CounterpartyAmount computes what an order intends to buy given its
// sell amount, side, and price (§4.1). The conversion is rejected
// unless the inverse operation recovers sellAmount exactly, and
// unless the result is in (0, QMax].
//
//   otype = Buy:  counterparty = sellAmount * PriceFactor / price   (quote)
//   otype = Sell: counterparty = sellAmount * price / PriceFactor   (base)
func CounterpartyAmount(sellAmount types.Q, otype types.OType, price types.P) (types.Q, error) {
	priceUint := math.NewUint(uint64(price))
	amount := sellAmount.Uint()

	var counterparty, roundTrip math.Uint
	switch otype {
	case types.Buy:
		counterparty = amount.Mul(priceFactorUint).Quo(priceUint)
		roundTrip = counterparty.Mul(priceUint).Quo(priceFactorUint)
	default: // Sell
		counterparty = amount.Mul(priceUint).Quo(priceFactorUint)
		roundTrip = counterparty.Mul(priceFactorUint).Quo(priceUint)
	}

	if !roundTrip.Equal(amount) {
		return types.ZeroQ, types.ErrPrecisionLoss
	}
	if counterparty.IsZero() {
		return types.ZeroQ, types.ErrPrecisionLoss
	}
	result := types.NewQFromUint(counterparty)
	if result.GT(types.QMax) {
		return types.ZeroQ, types.ErrOverflow
	}
	return result, nil
}

// ceilDiv computes ceil(num / den) for math.Uint operands.
func ceilDiv(num, den math.Uint) math.Uint {
	q := num.Quo(den)
	r := num.Mod(den)
	if r.IsZero() {
		return q
	}
	return q.Add(math.NewUint(1))
}

// ExchangeAmount sizes a single trade between a resting maker order
// and the taker order currently walking the ladder (calculate_ex_amount,
// §4.1). It returns (baseQty, quoteQty) to exchange, always priced at
// the maker's price.
func ExchangeAmount(maker, taker *types.LimitOrder) (baseQty, quoteQty types.Q, err error) {
	var buyer, seller *types.LimitOrder
	if taker.OType == types.Buy {
		buyer, seller = taker, maker
	} else {
		buyer, seller = maker, taker
	}

	makerPrice := math.NewUint(uint64(maker.Price))

	switch {
	case seller.RemainedBuyAmount.LTE(buyer.RemainedSellAmount):
		// Seller's outstanding need is fully coverable by the buyer's
		// budget: base leg is exactly what the seller asked for,
		// quote leg (which the seller gives up) is ceiling-rounded so
		// the seller pays the rounding.
		base := seller.RemainedBuyAmount
		quote := ceilDiv(base.Uint().Mul(priceFactorUint), makerPrice)
		quoteQ := types.NewQFromUint(quote)
		if quoteQ.GT(buyer.RemainedSellAmount) {
			return types.ZeroQ, types.ZeroQ, types.ErrOverflow
		}
		return base, quoteQ, nil

	case buyer.RemainedBuyAmount.LTE(seller.RemainedSellAmount):
		// Buyer's outstanding need is fully coverable by the seller's
		// inventory: quote leg is exact, base leg is ceiling-rounded
		// so the buyer pays the rounding.
		quote := buyer.RemainedBuyAmount
		base := ceilDiv(quote.Uint().Mul(makerPrice), priceFactorUint)
		baseQ := types.NewQFromUint(base)
		if baseQ.GT(buyer.RemainedSellAmount) {
			return types.ZeroQ, types.ZeroQ, types.ErrOverflow
		}
		return baseQ, quote, nil

	default:
		// Guaranteed unreachable: at least one side must fit, since
		// the orders at the head of the queue were already
		// price-crossed before this function is called.
		return types.ZeroQ, types.ZeroQ, types.ErrOverflow
	}
}
