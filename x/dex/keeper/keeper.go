// Package keeper is the dispatch shell of §6: the two entrypoints a
// host calls to create a trade pair or place a limit order. Beyond a
// monotone nonce, every read and write goes through the ladder, order
// store, and trade ledger that New creates, and the token collaborator
// it is given.
//
// Unlike the teacher's keeper, this one carries no sdk.Context or
// consensus framing: spec.md places "how this plugs into a specific
// blockchain's transaction/consensus framework" out of scope, so
// Context here is a plain struct a host fills in with whatever
// logger and block time it has on hand.
package keeper

import (
	"cosmossdk.io/log"

	"github.com/latticefi/spotdex/x/dex/amounts"
	"github.com/latticefi/spotdex/x/dex/ladder"
	"github.com/latticefi/spotdex/x/dex/matcher"
	"github.com/latticefi/spotdex/x/dex/orders"
	"github.com/latticefi/spotdex/x/dex/pairs"
	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/trades"
	"github.com/latticefi/spotdex/x/dex/types"
)

// Context carries the per-call ambient state a host provides: a
// logger and the block time to stamp onto whatever needs one. The
// event sink is fixed when the Keeper is built (see New), not passed
// per call. It deliberately has no rollback or
// gas metering of its own; a host that needs those wraps its own
// store around Keeper's calls (§9's "single-writer store with
// snapshot + rollback" design note).
type Context struct {
	Logger    log.Logger
	BlockTime int64
}

// Keeper wires the ladder, order store, trade ledger, pair registry,
// and matcher together behind the two dispatch operations a host
// needs. It owns the nonce fed into order hash derivation; the pair
// registry and the matcher keep their own counters for pair and trade
// hashes.
type Keeper struct {
	ladder  *ladder.Ladder
	orders  *orders.Store
	trades  *trades.Ledger
	pairs   *pairs.Registry
	tokens  tokens.Collaborator
	matcher *matcher.Matcher
	events  types.EventSink

	nonce uint64
}

// New wires a Keeper over collaborator and events, constructing the
// ladder, orders, trades, and matcher it owns internally. events may
// be types.NopEventSink{} when nothing subscribes.
func New(collaborator tokens.Collaborator, events types.EventSink, logger log.Logger) *Keeper {
	l := ladder.New()
	o := orders.New()
	t := trades.New()
	return &Keeper{
		ladder:  l,
		orders:  o,
		trades:  t,
		pairs:   pairs.New(collaborator),
		tokens:  collaborator,
		matcher: matcher.New(l, o, t, collaborator, events, logger),
		events:  events,
	}
}

// CreateTradePair registers a new market for (base, quote), per
// §4.5's eligibility rules, and initializes its price ladder. Emits
// TradePairCreated on success.
func (k *Keeper) CreateTradePair(ctx Context, creator types.A, base, quote types.H) (types.H, error) {
	pair, err := k.pairs.Create(creator, base, quote)
	if err != nil {
		return types.H{}, err
	}
	if err := k.ladder.InitPair(pair.Hash); err != nil {
		return types.H{}, err
	}

	k.events.EmitTradePairCreated(types.TradePairCreatedEvent{Creator: creator, Pair: pair})
	ctx.Logger.Info("trade pair created", "hash", pair.Hash.String(), "base", base.String(), "quote", quote.String())
	return pair.Hash, nil
}

// CreateLimitOrder runs §4.1's pre-matcher validation, freezes the
// owner's give-side balance, constructs the order, runs it through
// the matcher, and — if it isn't fully filled — appends the residual
// onto the ladder. Returns the new order's hash and whether it ended
// Filled.
func (k *Keeper) CreateLimitOrder(ctx Context, owner types.A, base, quote types.H, otype types.OType, price types.P, sellAmount types.Q) (types.H, bool, error) {
	pair, err := k.pairs.LookupByTokens(base, quote)
	if err != nil {
		return types.H{}, false, err
	}

	if err := amounts.ValidateBounds(price, sellAmount); err != nil {
		return types.H{}, false, err
	}
	buyAmount, err := amounts.CounterpartyAmount(sellAmount, otype, price)
	if err != nil {
		return types.H{}, false, err
	}

	k.nonce++
	hash := types.DeriveOrderHash(pair.Base, pair.Quote, price, sellAmount, buyAmount, owner, k.nonce)

	order := &types.LimitOrder{
		Hash:               hash,
		Base:               pair.Base,
		Quote:              pair.Quote,
		Owner:              owner,
		Price:              price,
		OType:              otype,
		SellAmount:         sellAmount,
		BuyAmount:          buyAmount,
		RemainedSellAmount: sellAmount,
		RemainedBuyAmount:  buyAmount,
		Status:             types.Created,
	}

	if err := k.tokens.EnsureFreeBalance(owner, order.GiveToken(), sellAmount); err != nil {
		return types.H{}, false, err
	}
	if err := k.tokens.Freeze(owner, order.GiveToken(), sellAmount); err != nil {
		return types.H{}, false, err
	}

	if err := k.orders.Insert(order); err != nil {
		return types.H{}, false, err
	}

	k.events.EmitOrderCreated(types.OrderCreatedEvent{
		Owner: owner, Base: base, Quote: quote,
		OrderHash: hash, Price: price, SellAmount: sellAmount,
	})

	filled, err := k.matcher.Match(pair, order)
	if err != nil {
		return hash, false, err
	}

	if !order.IsFinished() {
		if err := k.ladder.Append(pair.Hash, order.Price, order.OType, order.Hash); err != nil {
			return hash, filled, err
		}
	}

	ctx.Logger.Debug("limit order created", "hash", hash.String(), "filled", filled, "status", order.Status.String())
	return hash, filled, nil
}
