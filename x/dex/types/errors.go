package types

import (
	"cosmossdk.io/errors"
)

// Registered error codes, one per §7 taxonomy entry of the spec this
// core implements. Codespace "dex" groups them the way
// x/orderbook/types/errors.go groups its codespace "orderbook".
var (
	// InvalidArgument
	ErrIdenticalTokens = errors.Register("dex", 1, "base and quote token must differ")
	ErrUnknownToken    = errors.Register("dex", 2, "unknown token")
	ErrUnknownPair     = errors.Register("dex", 3, "unknown trade pair")
	ErrInvalidPrice    = errors.Register("dex", 4, "price out of bounds")
	ErrInvalidAmount   = errors.Register("dex", 5, "sell amount out of bounds")

	// Unauthorized
	ErrUnauthorized = errors.Register("dex", 10, "sender is not a token owner")

	// Duplicate pair
	ErrDuplicatePair = errors.Register("dex", 11, "trade pair already exists")

	// PrecisionLoss
	ErrPrecisionLoss = errors.Register("dex", 20, "counterparty amount has a rounding remainder")

	// Overflow
	ErrOverflow = errors.Register("dex", 21, "amount exceeds maximum representable balance")

	// InsufficientFunds
	ErrInsufficientFunds = errors.Register("dex", 30, "free balance below required freeze")

	// LadderInvariant. ErrMissingLevel and ErrLadderCorrupt signal a
	// bug; Matcher.Match treats ErrTryRemoveUnfinished from its cleanup
	// pass as the normal outcome when live orders remain.
	ErrTryRemoveUnfinished = errors.Register("dex", 40, "attempt to remove a non-finished order from the ladder")
	ErrMissingLevel        = errors.Register("dex", 41, "expected price level is missing")
	ErrLadderCorrupt       = errors.Register("dex", 42, "ladder linkage points at a level that does not exist")

	// TokenOp — wraps whatever the token collaborator returns.
	ErrTokenOp = errors.Register("dex", 50, "token operation failed")

	// Order/trade/pair lookup failures that don't fit the categories above.
	ErrOrderNotFound = errors.Register("dex", 60, "order not found")
	ErrTradeNotFound = errors.Register("dex", 61, "trade not found")
	ErrOrderNotActive = errors.Register("dex", 62, "order is not active")
	ErrOrderExists    = errors.Register("dex", 63, "order hash already exists")
	ErrTradeExists    = errors.Register("dex", 64, "trade hash already exists")
)
