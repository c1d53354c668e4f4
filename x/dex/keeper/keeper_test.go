package keeper

import (
	"testing"

	"cosmossdk.io/log"

	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/types"
)

func hashByte(n byte) types.H {
	var h types.H
	h[31] = n
	return h
}

func newKeeper() (*Keeper, *tokens.Memory) {
	tok := tokens.NewMemory()
	k := New(tok, types.NopEventSink{}, log.NewNopLogger())
	return k, tok
}

func ctx() Context {
	return Context{Logger: log.NewNopLogger()}
}

func TestCreateTradePairRejectsIdenticalTokens(t *testing.T) {
	k, _ := newKeeper()
	base := hashByte(1)
	if _, err := k.CreateTradePair(ctx(), "alice", base, base); err != types.ErrIdenticalTokens {
		t.Fatalf("err = %v, want ErrIdenticalTokens", err)
	}
}

func TestCreateTradePairAndLimitOrderRoundTrip(t *testing.T) {
	k, tok := newKeeper()
	base, quote := hashByte(1), hashByte(2)
	tok.RegisterToken(base, "alice")
	tok.RegisterToken(quote, "bob")

	pairHash, err := k.CreateTradePair(ctx(), "alice", base, quote)
	if err != nil {
		t.Fatalf("CreateTradePair: %v", err)
	}
	if pairHash.IsZero() {
		t.Fatalf("pairHash is zero")
	}

	tok.Mint("alice", base, types.NewQFromUint64(100))

	price := 2 * types.PriceFactor
	orderHash, filled, err := k.CreateLimitOrder(ctx(), "alice", base, quote, types.Buy, price, types.NewQFromUint64(50))
	if err != nil {
		t.Fatalf("CreateLimitOrder: %v", err)
	}
	if filled {
		t.Fatalf("filled = true, want false (nothing resting to cross)")
	}
	if orderHash.IsZero() {
		t.Fatalf("orderHash is zero")
	}

	stored, err := k.orders.Get(orderHash)
	if err != nil {
		t.Fatalf("orders.Get: %v", err)
	}
	if stored.Status != types.Created {
		t.Fatalf("stored.Status = %v, want Created", stored.Status)
	}

	level, err := k.ladder.Read(pairHash, price)
	if err != nil {
		t.Fatalf("ladder.Read: %v", err)
	}
	if len(level.Orders) != 1 || level.Orders[0] != orderHash {
		t.Fatalf("level.Orders = %v, want [%v]", level.Orders, orderHash)
	}

	if got := tok.FreeBalance("alice", base); !got.Equal(types.NewQFromUint64(50)) {
		t.Fatalf("alice free base = %s, want 50 (50 frozen)", got)
	}
}

func TestCreateLimitOrderMatchesAgainstRestingOrder(t *testing.T) {
	k, tok := newKeeper()
	base, quote := hashByte(1), hashByte(2)
	tok.RegisterToken(base, "maker")
	tok.RegisterToken(quote, "taker")

	if _, err := k.CreateTradePair(ctx(), "maker", base, quote); err != nil {
		t.Fatalf("CreateTradePair: %v", err)
	}

	price := 1 * types.PriceFactor
	tok.Mint("maker", quote, types.NewQFromUint64(10))
	if _, _, err := k.CreateLimitOrder(ctx(), "maker", base, quote, types.Sell, price, types.NewQFromUint64(10)); err != nil {
		t.Fatalf("CreateLimitOrder(maker): %v", err)
	}

	tok.Mint("taker", base, types.NewQFromUint64(10))
	orderHash, filled, err := k.CreateLimitOrder(ctx(), "taker", base, quote, types.Buy, price, types.NewQFromUint64(10))
	if err != nil {
		t.Fatalf("CreateLimitOrder(taker): %v", err)
	}
	if !filled {
		t.Fatalf("filled = false, want true")
	}

	fills := k.trades.ForOrder(orderHash)
	if len(fills) != 1 {
		t.Fatalf("len(fills) = %d, want 1", len(fills))
	}
	// taker is a Buy order: it gives up base and acquires quote.
	if got := tok.FreeBalance("taker", quote); !got.Equal(types.NewQFromUint64(10)) {
		t.Fatalf("taker free quote = %s, want 10 (received from maker)", got)
	}
}
