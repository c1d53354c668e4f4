package keeper

import (
	"testing"

	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/types"
)

// These tests exercise the end-to-end scenarios against a live Keeper:
// a maker rests, a taker sweeps one or several levels, a partial
// residual rests back onto the ladder, and a precision-losing order is
// rejected outright. Prices and amounts are scaled up from the
// original literal inputs (which were chosen for hand arithmetic, not
// for PriceFactor=10^8 fixed point) so CounterpartyAmount's rounding
// never fires where the scenario expects an exact fill.

func setupPair(t *testing.T) (*Keeper, *tokens.Memory, types.H, types.H, types.H) {
	t.Helper()
	k, tok := newKeeper()
	base, quote := hashByte(1), hashByte(2)
	tok.RegisterToken(base, "bob")
	tok.RegisterToken(quote, "bob")
	pairHash, err := k.CreateTradePair(ctx(), "bob", base, quote)
	if err != nil {
		t.Fatalf("CreateTradePair: %v", err)
	}
	return k, tok, pairHash, base, quote
}

// Scenario A — lone rest: a Sell with nothing to cross just sits on
// the ladder at its price, with its quote frozen.
func TestScenarioALoneRest(t *testing.T) {
	k, tok, pairHash, base, quote := setupPair(t)
	tok.Mint("bob", quote, types.NewQFromUint64(200))

	price := 18 * types.PriceFactor
	orderHash, filled, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, price, types.NewQFromUint64(200))
	if err != nil {
		t.Fatalf("CreateLimitOrder: %v", err)
	}
	if filled {
		t.Fatalf("filled = true, want false")
	}

	level, err := k.ladder.Read(pairHash, price)
	if err != nil {
		t.Fatalf("ladder.Read: %v", err)
	}
	if len(level.Orders) != 1 || level.Orders[0] != orderHash {
		t.Fatalf("level.Orders = %v, want [%v]", level.Orders, orderHash)
	}

	head, err := k.ladder.ReadHead(pairHash)
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	if head.Next == nil || *head.Next != price {
		t.Fatalf("head.Next = %v, want %v (best ask)", head.Next, price)
	}

	if got := tok.FreeBalance("bob", quote); !got.IsZero() {
		t.Fatalf("bob free quote = %s, want 0 (200 frozen)", got)
	}
}

// Scenario B — exact fill: a matching Buy fully fills a resting Sell,
// one trade is recorded, both orders end Filled, and the ladder
// returns to its sentinel-only state (invariant 2: sentinels survive,
// but no price levels remain).
func TestScenarioBExactFill(t *testing.T) {
	k, tok, pairHash, base, quote := setupPair(t)
	tok.RegisterToken(base, "alice")
	tok.Mint("bob", quote, types.NewQFromUint64(200))

	// price = 1.0, so 200 quote and 200 base are each other's exact
	// counterparty amounts.
	price := 1 * types.PriceFactor
	sellHash, _, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, price, types.NewQFromUint64(200))
	if err != nil {
		t.Fatalf("CreateLimitOrder(bob): %v", err)
	}

	tok.Mint("alice", base, types.NewQFromUint64(200))
	buyHash, filled, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, price, types.NewQFromUint64(200))
	if err != nil {
		t.Fatalf("CreateLimitOrder(alice): %v", err)
	}
	if !filled {
		t.Fatalf("filled = false, want true")
	}

	trades := k.trades.ForPair(base, quote, 0)
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Price != price || tr.Buyer != "alice" || tr.Seller != "bob" || tr.Maker != "bob" || tr.Taker != "alice" || tr.OType != types.Buy {
		t.Fatalf("trade = %+v, unexpected fields", tr)
	}
	if !tr.BaseAmount.Equal(types.NewQFromUint64(200)) || !tr.QuoteAmount.Equal(types.NewQFromUint64(200)) {
		t.Fatalf("trade amounts = base=%s quote=%s, want 200/200", tr.BaseAmount, tr.QuoteAmount)
	}

	sellOrder, err := k.orders.Get(sellHash)
	if err != nil {
		t.Fatalf("orders.Get(sell): %v", err)
	}
	buyOrder, err := k.orders.Get(buyHash)
	if err != nil {
		t.Fatalf("orders.Get(buy): %v", err)
	}
	if !sellOrder.IsFinished() || !buyOrder.IsFinished() {
		t.Fatalf("sell.Status=%v buy.Status=%v, want both finished", sellOrder.Status, buyOrder.Status)
	}

	head, err := k.ladder.ReadHead(pairHash)
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	bottom, err := k.ladder.ReadBottom(pairHash)
	if err != nil {
		t.Fatalf("ReadBottom: %v", err)
	}
	top, err := k.ladder.ReadTop(pairHash)
	if err != nil {
		t.Fatalf("ReadTop: %v", err)
	}
	if head.Next == nil || *head.Next != types.PMax || head.Prev == nil || *head.Prev != types.PBottom {
		t.Fatalf("head not sentinel-only: %+v", head)
	}
	if bottom.Prev == nil || *bottom.Prev != types.PMax {
		t.Fatalf("bottom.Prev = %v, want PMax (cyclic sentinel)", bottom.Prev)
	}
	if top.Next == nil || *top.Next != types.PBottom {
		t.Fatalf("top.Next = %v, want PBottom (cyclic sentinel)", top.Next)
	}
}

// Scenario C — sweep multiple levels: a taker crosses one level fully,
// then fills the first FIFO order at the next level and partially fills
// the second, producing three trades in order and leaving the taker
// fully filled.
func TestScenarioCSweepMultipleLevels(t *testing.T) {
	k, tok, _, base, quote := setupPair(t)
	tok.RegisterToken(base, "alice")

	mint := func(owner types.A, token types.H, amt uint64) {
		tok.Mint(owner, token, types.NewQFromUint64(amt))
	}

	mint("bob", quote, 11+10+10000)
	p10, p11 := 10*types.PriceFactor, 11*types.PriceFactor
	if _, _, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, p10, types.NewQFromUint64(11)); err != nil {
		t.Fatalf("seed p10: %v", err)
	}
	firstAtEleven, _, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, p11, types.NewQFromUint64(10))
	if err != nil {
		t.Fatalf("seed p11 first: %v", err)
	}
	secondAtEleven, _, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, p11, types.NewQFromUint64(10000))
	if err != nil {
		t.Fatalf("seed p11 second: %v", err)
	}

	// 561 base at p11 buys exactly 51 quote.
	mint("alice", base, 561)
	takerHash, filled, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, p11, types.NewQFromUint64(561))
	if err != nil {
		t.Fatalf("CreateLimitOrder(taker): %v", err)
	}
	if !filled {
		t.Fatalf("filled = false, want true")
	}

	fills := k.trades.ForOrder(takerHash)
	if len(fills) != 3 {
		t.Fatalf("len(fills) = %d, want 3", len(fills))
	}
	// The quote legs are 11, 10 and 30; each base leg is the quote leg
	// times the maker's price.
	want := []struct {
		price types.P
		base  uint64
	}{
		{p10, 110},
		{p11, 110},
		{p11, 330},
	}
	for i, w := range want {
		if fills[i].Price != w.price || !fills[i].BaseAmount.Equal(types.NewQFromUint64(w.base)) {
			t.Fatalf("fills[%d] = price=%v base=%s, want price=%v base=%d", i, fills[i].Price, fills[i].BaseAmount, w.price, w.base)
		}
	}

	first, err := k.orders.Get(firstAtEleven)
	if err != nil {
		t.Fatalf("orders.Get(first): %v", err)
	}
	if !first.IsFinished() {
		t.Fatalf("first p11 order not finished: %+v", first)
	}
	second, err := k.orders.Get(secondAtEleven)
	if err != nil {
		t.Fatalf("orders.Get(second): %v", err)
	}
	if second.Status != types.PartialFilled || !second.RemainedSellAmount.Equal(types.NewQFromUint64(9970)) {
		t.Fatalf("second p11 order = status=%v remained=%s, want PartialFilled/9970", second.Status, second.RemainedSellAmount)
	}

	taker, err := k.orders.Get(takerHash)
	if err != nil {
		t.Fatalf("orders.Get(taker): %v", err)
	}
	if !taker.IsFinished() {
		t.Fatalf("taker not finished: %+v", taker)
	}
}

// Scenario E — ceiling rounding: an amount whose counterparty
// conversion rounds to zero is rejected with PrecisionLoss rather
// than silently resting or executing at a lossy rate.
func TestScenarioECeilingRoundingRejected(t *testing.T) {
	k, tok, _, base, quote := setupPair(t)
	tok.Mint("bob", quote, types.NewQFromUint64(1))

	_, _, err := k.CreateLimitOrder(ctx(), "bob", base, quote, types.Sell, types.P(3), types.NewQFromUint64(1))
	if err != types.ErrPrecisionLoss {
		t.Fatalf("err = %v, want ErrPrecisionLoss", err)
	}
}

// Invariant 8 — monotone nonce: successive orders from the same
// keeper derive distinct hashes even with identical owner/price/amount
// inputs, because the nonce strictly increases between them.
func TestMonotoneNonceProducesDistinctHashes(t *testing.T) {
	k, tok, _, base, quote := setupPair(t)
	tok.RegisterToken(base, "alice")
	tok.Mint("alice", base, types.NewQFromUint64(100))

	price := 2 * types.PriceFactor
	first, _, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, price, types.NewQFromUint64(10))
	if err != nil {
		t.Fatalf("first CreateLimitOrder: %v", err)
	}
	second, _, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, price, types.NewQFromUint64(10))
	if err != nil {
		t.Fatalf("second CreateLimitOrder: %v", err)
	}
	if first == second {
		t.Fatalf("first and second order hashes collided: %v", first)
	}
}

// Invariant 10 — frozen-funds balance: an owner's frozen balance on
// the give-side token equals the sum of RemainedSellAmount across its
// still-resting orders.
func TestFrozenFundsMatchRemainedSellAmount(t *testing.T) {
	k, tok, pairHash, base, quote := setupPair(t)
	tok.RegisterToken(base, "alice")
	tok.Mint("alice", base, types.NewQFromUint64(100))

	price := 2 * types.PriceFactor
	orderHash, _, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, price, types.NewQFromUint64(30))
	if err != nil {
		t.Fatalf("CreateLimitOrder: %v", err)
	}

	order, err := k.orders.Get(orderHash)
	if err != nil {
		t.Fatalf("orders.Get: %v", err)
	}

	level, err := k.ladder.Read(pairHash, price)
	if err != nil {
		t.Fatalf("ladder.Read: %v", err)
	}
	if len(level.Orders) != 1 {
		t.Fatalf("level.Orders = %v, want exactly the resting order", level.Orders)
	}

	frozen := tok.FrozenBalance("alice", base)
	if !frozen.Equal(order.RemainedSellAmount) {
		t.Fatalf("frozen = %s, want %s (RemainedSellAmount)", frozen, order.RemainedSellAmount)
	}
}
