// Package pairs implements the trade pair registry of §4.5:
// create_pair's eligibility rules and hash-and-orientation lookup.
package pairs

import (
	"sync"

	"github.com/latticefi/spotdex/x/dex/tokens"
	"github.com/latticefi/spotdex/x/dex/types"
)

// orientationKey folds (base, quote) so that (base, quote) and
// (quote, base) collide, matching §4.5's "at most one registered pair
// per unordered pair of tokens" rule.
type orientationKey struct {
	lo, hi types.H
}

func orient(a, b types.H) orientationKey {
	if string(a[:]) <= string(b[:]) {
		return orientationKey{a, b}
	}
	return orientationKey{b, a}
}

// Registry holds every created trade pair, indexed by hash and by
// unordered (base, quote).
type Registry struct {
	mu          sync.RWMutex
	byHash      map[types.H]types.TradePair
	byOrient    map[orientationKey]types.TradePair
	nonce       uint64
	collaborator tokens.Collaborator
}

// New returns an empty registry backed by collaborator for the token
// ownership check in Create.
func New(collaborator tokens.Collaborator) *Registry {
	return &Registry{
		byHash:       make(map[types.H]types.TradePair),
		byOrient:     make(map[orientationKey]types.TradePair),
		collaborator: collaborator,
	}
}

// Create registers a new trade pair for (base, quote), enforcing
// §4.5's rules: base != quote, both tokens must have a registered
// owner, sender must own at least one of them, and no pair may
// already exist in either orientation.
func (r *Registry) Create(sender types.A, base, quote types.H) (types.TradePair, error) {
	if base == quote {
		return types.TradePair{}, types.ErrIdenticalTokens
	}

	baseOwner, ok := r.collaborator.Owner(base)
	if !ok {
		return types.TradePair{}, types.ErrUnknownToken
	}
	quoteOwner, ok := r.collaborator.Owner(quote)
	if !ok {
		return types.TradePair{}, types.ErrUnknownToken
	}
	if sender != baseOwner && sender != quoteOwner {
		return types.TradePair{}, types.ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := orient(base, quote)
	if _, exists := r.byOrient[key]; exists {
		return types.TradePair{}, types.ErrDuplicatePair
	}

	r.nonce++
	hash := types.DerivePairHash(base, quote, r.nonce, sender)
	pair := types.TradePair{Hash: hash, Base: base, Quote: quote}

	r.byHash[hash] = pair
	r.byOrient[key] = pair
	return pair, nil
}

// Lookup returns the registered pair by its hash.
func (r *Registry) Lookup(hash types.H) (types.TradePair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pair, ok := r.byHash[hash]
	if !ok {
		return types.TradePair{}, types.ErrUnknownPair
	}
	return pair, nil
}

// LookupByTokens returns the registered pair for (base, quote) in
// either orientation.
func (r *Registry) LookupByTokens(base, quote types.H) (types.TradePair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pair, ok := r.byOrient[orient(base, quote)]
	if !ok {
		return types.TradePair{}, types.ErrUnknownPair
	}
	return pair, nil
}
