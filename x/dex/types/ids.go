// Package types holds the data model shared by every spotdex package:
// identifiers, the trade pair, the limit order, the price level, and
// the trade record, plus the registered error taxonomy and events.
package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"cosmossdk.io/math"
	"github.com/google/uuid"
)

// H is a content hash identifying a trade pair, order, or trade.
type H [32]byte

// String renders the hash as lowercase hex.
func (h H) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h H) IsZero() bool {
	return h == H{}
}

// A is an account identifier. Opaque from the core's point of view;
// ownership and balance accounting live in the token collaborator.
type A string

// P is a price, scaled by PriceFactor (quote-per-base, fixed point).
type P uint64

// PriceFactor separates integer price representation from
// quote-per-base semantics.
const PriceFactor P = 100_000_000

// PMin and PMax bound the legal price domain: ValidateBounds rejects
// any price outside [PMin, PMax]. PBottom names the ladder's Bottom
// sentinel and deliberately sits outside that domain (price 0 is never
// a legal order price), so a real order can never collide with the
// sentinel's own map entry. PMax doubles as the Top sentinel's price,
// matching the original this was distilled from.
const (
	PBottom P = 0
	PMin    P = 1
	PMax    P = ^P(0)
)

// hashSeed draws fresh randomness from uuid.New(), standing in for the
// block-authoring host's random_seed() in the system this core was
// distilled from.
func hashSeed() [16]byte {
	id := uuid.New()
	var b [16]byte
	copy(b[:], id[:])
	return b
}

// deriveHash combines a set of fields, a monotone nonce, and fresh
// seed material into a content hash. The monotone nonce keeps two
// otherwise identical inputs from sharing a hash; because the seed is
// drawn fresh each call, the same inputs never hash the same way
// twice, so hashes are not reproducible across runs.
func deriveHash(nonce uint64, parts ...[]byte) H {
	hasher := sha256.New()
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	hasher.Write(nonceBuf[:])
	seed := hashSeed()
	hasher.Write(seed[:])
	for _, p := range parts {
		hasher.Write(p)
	}
	var out H
	copy(out[:], hasher.Sum(nil))
	return out
}

// DerivePairHash derives a TradePair hash from (base, quote, nonce,
// creator, seed).
func DerivePairHash(base, quote H, nonce uint64, creator A) H {
	return deriveHash(nonce, base[:], quote[:], []byte(creator))
}

// DeriveOrderHash derives a LimitOrder hash from (base, quote, price,
// sell_amount, buy_amount, owner, nonce, seed).
func DeriveOrderHash(base, quote H, price P, sellAmount, buyAmount Q, owner A, nonce uint64) H {
	var priceBuf [8]byte
	binary.BigEndian.PutUint64(priceBuf[:], uint64(price))
	return deriveHash(nonce, base[:], quote[:], priceBuf[:], sellAmount.Bytes(), buyAmount.Bytes(), []byte(owner))
}

// DeriveTradeHash derives a Trade hash from (base, quote, base_amount,
// quote_amount, nonce, seed).
func DeriveTradeHash(base, quote H, baseAmount, quoteAmount Q, nonce uint64) H {
	return deriveHash(nonce, base[:], quote[:], baseAmount.Bytes(), quoteAmount.Bytes())
}

// Q is a balance: an unsigned, arbitrary-precision integer used for
// both base and quote amounts. Backed by math.Uint (itself backed by
// math/big) so that amount*price and amount*PriceFactor never
// overflow during arithmetic — only the final bound against QMax can
// reject a value.
type Q struct {
	i math.Uint
}

// QMax is the largest representable balance (2^128 - 1, matching the
// data model's u128 balance).
var QMax = NewQFromUint(math.NewUintFromBigInt(new(big.Int).Sub(
	new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1),
)))

// ZeroQ is the additive identity.
var ZeroQ = Q{i: math.ZeroUint()}

// NewQFromUint64 builds a Q from a uint64.
func NewQFromUint64(v uint64) Q {
	return Q{i: math.NewUint(v)}
}

// NewQFromUint builds a Q from an already-computed math.Uint, used by
// the amounts package after a widened multiply/divide.
func NewQFromUint(v math.Uint) Q {
	return Q{i: v}
}

// Uint exposes the underlying math.Uint for widened arithmetic.
func (q Q) Uint() math.Uint { return q.i }

func (q Q) IsZero() bool       { return q.i.IsZero() }
func (q Q) GT(o Q) bool        { return q.i.GT(o.i) }
func (q Q) GTE(o Q) bool       { return q.i.GTE(o.i) }
func (q Q) LT(o Q) bool        { return q.i.LT(o.i) }
func (q Q) LTE(o Q) bool       { return q.i.LTE(o.i) }
func (q Q) Equal(o Q) bool     { return q.i.Equal(o.i) }
func (q Q) Add(o Q) Q          { return Q{i: q.i.Add(o.i)} }
func (q Q) String() string     { return q.i.String() }
func (q Q) Bytes() []byte      { return q.i.BigInt().Bytes() }

// SafeSub subtracts o from q, failing instead of panicking/underflowing
// when o exceeds q (§4.3 step d: "safe subtraction; failure is fatal").
func (q Q) SafeSub(o Q) (Q, bool) {
	if q.i.LT(o.i) {
		return ZeroQ, false
	}
	return Q{i: q.i.Sub(o.i)}, true
}
