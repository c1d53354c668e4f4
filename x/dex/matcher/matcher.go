// Package matcher implements §4.3's matching algorithm: walking the
// opposite side of the price ladder from Head outward, draining each
// crossed level's FIFO queue against the taker order, and settling
// every fill through the token collaborator.
package matcher

import (
	"cosmossdk.io/log"

	"github.com/latticefi/spotdex/x/dex/amounts"
	"github.com/latticefi/spotdex/x/dex/ladder"
	"github.com/latticefi/spotdex/x/dex/orders"
	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/trades"
	"github.com/latticefi/spotdex/x/dex/types"
)

// Matcher wires the price ladder, order store, trade ledger, and
// token collaborator together into the matching core. It holds no
// consensus or transaction framing of its own — see x/dex/keeper for
// the dispatch shell that calls it.
type Matcher struct {
	ladder   *ladder.Ladder
	orders   *orders.Store
	trades   *trades.Ledger
	tokens   tokens.Collaborator
	events   types.EventSink
	logger   log.Logger
	tradeSeq uint64
}

// New returns a Matcher over the given collaborators. events may be
// types.NopEventSink{} when nothing needs to observe fills.
func New(l *ladder.Ladder, o *orders.Store, t *trades.Ledger, c tokens.Collaborator, events types.EventSink, logger log.Logger) *Matcher {
	return &Matcher{ladder: l, orders: o, trades: t, tokens: c, events: events, logger: logger}
}

// Match runs order against pair's opposite-side ladder until it is
// either Filled or the ladder runs out of crossable levels. Returns
// true iff order ended Filled; the caller is responsible for
// appending an unfilled residual back onto the ladder.
func (m *Matcher) Match(pair types.TradePair, order *types.LimitOrder) (bool, error) {
	// A Buy taker crosses resting Sell orders, which ascend away from
	// Head via Next; a Sell taker crosses resting Buy orders, which
	// descend away from Head via Prev. end is the far sentinel's own
	// price, not the opposite side's: the walk only ever reaches it by
	// wrapping all the way around an empty opposite side.
	end := types.PBottom
	if order.OType == types.Sell {
		end = types.PMax
	}

	cur, err := m.ladder.ReadHead(pair.Hash)
	if err != nil {
		return false, err
	}

	for order.Status != types.Filled {
		var next *types.P
		if order.OType == types.Buy {
			next = cur.Next
		} else {
			next = cur.Prev
		}
		if next == nil {
			return false, types.ErrLadderCorrupt
		}
		if *next == end {
			break
		}

		if order.OType == types.Buy && order.Price < *next {
			break
		}
		if order.OType == types.Sell && order.Price > *next {
			break
		}

		level, err := m.ladder.Read(pair.Hash, *next)
		if err != nil {
			return false, err
		}

		if err := m.drainLevel(pair, order, level); err != nil {
			return false, err
		}
		cur = level
	}

	filled := order.Status == types.Filled

	// Opportunistic cleanup only: RemoveItems fails fast the moment it
	// reaches a resting order that isn't finished, which is the normal
	// state of affairs whenever the opposite side still has untouched
	// orders after this match. That is not a failure of the match
	// itself, so only a corrupt ladder is worth surfacing here.
	if err := m.ladder.RemoveItems(pair.Hash, order.OType.Opposite(), m.orders); err != nil && err != types.ErrTryRemoveUnfinished {
		return filled, err
	}
	return filled, nil
}

// drainLevel walks level's FIFO queue in order, matching taker
// against each resting maker until either the taker fills or the
// level's queue is exhausted.
func (m *Matcher) drainLevel(pair types.TradePair, taker *types.LimitOrder, level *types.PriceLevel) error {
	for _, makerHash := range level.Orders {
		maker, err := m.orders.Get(makerHash)
		if err != nil {
			return err
		}
		if !maker.IsActive() {
			continue
		}

		if err := m.fill(pair, taker, maker); err != nil {
			return err
		}
		if taker.Status == types.Filled {
			return nil
		}
	}
	return nil
}

// fill executes a single trade between taker and maker: sizes the
// exchange, moves both legs through the token collaborator, updates
// both orders' lifecycle state, and records the trade.
func (m *Matcher) fill(pair types.TradePair, taker, maker *types.LimitOrder) error {
	baseQty, quoteQty, err := amounts.ExchangeAmount(maker, taker)
	if err != nil {
		return err
	}

	takerGive, takerHave := taker.GiveToken(), taker.HaveToken()
	var giveQty, haveQty types.Q
	if taker.OType == types.Buy {
		giveQty, haveQty = baseQty, quoteQty
	} else {
		giveQty, haveQty = quoteQty, baseQty
	}

	if err := m.tokens.Unfreeze(taker.Owner, takerGive, giveQty); err != nil {
		return types.ErrTokenOp
	}
	if err := m.tokens.Unfreeze(maker.Owner, takerHave, haveQty); err != nil {
		return types.ErrTokenOp
	}
	if err := m.tokens.Transfer(taker.Owner, maker.Owner, takerGive, giveQty); err != nil {
		return types.ErrTokenOp
	}
	if err := m.tokens.Transfer(maker.Owner, taker.Owner, takerHave, haveQty); err != nil {
		return types.ErrTokenOp
	}

	touch(taker)
	touch(maker)

	if err := deduct(taker, giveQty, haveQty); err != nil {
		return err
	}
	if err := deduct(maker, haveQty, giveQty); err != nil {
		return err
	}

	if err := m.settle(taker); err != nil {
		return err
	}
	if err := m.settle(maker); err != nil {
		return err
	}

	if err := m.orders.Update(taker); err != nil {
		return err
	}
	if err := m.orders.Update(maker); err != nil {
		return err
	}

	return m.recordTrade(pair, taker, maker, baseQty, quoteQty)
}

// touch transitions an order's first fill from Created to
// PartialFilled; later fills against the same order are no-ops here,
// since settle() advances it to Filled when appropriate.
func touch(o *types.LimitOrder) {
	if o.Status == types.Created {
		o.Status = types.PartialFilled
	}
}

// deduct subtracts giveQty/haveQty from o's remaining sell/buy
// amounts. giveQty is denominated in o's give token, haveQty in o's
// have token, matching §4.3 step d regardless of which side of the
// trade o played.
func deduct(o *types.LimitOrder, giveQty, haveQty types.Q) error {
	sell, ok := o.RemainedSellAmount.SafeSub(giveQty)
	if !ok {
		return types.ErrOverflow
	}
	buy, ok := o.RemainedBuyAmount.SafeSub(haveQty)
	if !ok {
		return types.ErrOverflow
	}
	o.RemainedSellAmount = sell
	o.RemainedBuyAmount = buy
	return nil
}

// settle marks o Filled once its remaining buy amount hits zero, and
// unfreezes any leftover sell-side dust left by rounding back to its
// owner, per §4.3 step e.
func (m *Matcher) settle(o *types.LimitOrder) error {
	if !o.RemainedBuyAmount.IsZero() {
		return nil
	}
	o.Status = types.Filled
	if o.RemainedSellAmount.IsZero() {
		return nil
	}
	dust := o.RemainedSellAmount
	if err := m.tokens.Unfreeze(o.Owner, o.GiveToken(), dust); err != nil {
		return types.ErrTokenOp
	}
	o.RemainedSellAmount = types.ZeroQ
	return nil
}

func (m *Matcher) recordTrade(pair types.TradePair, taker, maker *types.LimitOrder, baseQty, quoteQty types.Q) error {
	m.tradeSeq++
	hash := types.DeriveTradeHash(pair.Base, pair.Quote, baseQty, quoteQty, m.tradeSeq)

	var buyOrder, sellOrder *types.LimitOrder
	if taker.OType == types.Buy {
		buyOrder, sellOrder = taker, maker
	} else {
		buyOrder, sellOrder = maker, taker
	}

	trade := &types.Trade{
		Hash:        hash,
		Base:        pair.Base,
		Quote:       pair.Quote,
		Buyer:       buyOrder.Owner,
		Seller:      sellOrder.Owner,
		Maker:       maker.Owner,
		Taker:       taker.Owner,
		OType:       taker.OType,
		Price:       maker.Price,
		BaseAmount:  baseQty,
		QuoteAmount: quoteQty,
	}

	if err := m.trades.Record(trade, buyOrder.Hash, sellOrder.Hash); err != nil {
		return err
	}

	m.logger.Debug("trade executed", "hash", hash.String(), "base", baseQty.String(), "quote", quoteQty.String())
	m.events.EmitTradeExecuted(types.TradeExecutedEvent{Trade: *trade})
	return nil
}
