// Package orders is the content-addressed order store: the
// authoritative map from order hash to LimitOrder, plus three
// insertion-ordered indices (by owner, by pair, and by pair+owner)
// that list every order an account or a market has ever created
// without scanning the whole store.
package orders

import (
	"sync"

	"github.com/huandu/skiplist"

	"github.com/latticefi/spotdex/x/dex/types"
)

// seqKey orders index entries by monotone insertion sequence, the
// same Comparable idiom the teacher uses to order price levels —
// here the sort key is "when", not "how much".
type seqKey struct {
	seq  uint64
	hash types.H
}

type seqComparable struct{}

func (seqComparable) Compare(lhs, rhs interface{}) int {
	l, r := lhs.(seqKey), rhs.(seqKey)
	switch {
	case l.seq < r.seq:
		return -1
	case l.seq > r.seq:
		return 1
	default:
		return 0
	}
}

func (seqComparable) CalcScore(key interface{}) float64 {
	return float64(key.(seqKey).seq)
}

// Store holds every order ever created, plus its owner, pair, and
// pair-owner indices.
type Store struct {
	mu sync.RWMutex

	orders map[types.H]*types.LimitOrder
	seq    uint64

	byOwner     map[types.A]*skiplist.SkipList
	byPair      map[types.H]*skiplist.SkipList
	byPairOwner map[types.H]map[types.A]*skiplist.SkipList
}

// New returns an empty order store.
func New() *Store {
	return &Store{
		orders:      make(map[types.H]*types.LimitOrder),
		byOwner:     make(map[types.A]*skiplist.SkipList),
		byPair:      make(map[types.H]*skiplist.SkipList),
		byPairOwner: make(map[types.H]map[types.A]*skiplist.SkipList),
	}
}

// Insert records a brand new order and indexes it by owner, by pair,
// and by (pair, owner). Fails if the hash already exists, which would
// indicate a hash collision or a caller bug.
func (s *Store) Insert(o *types.LimitOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.Hash]; exists {
		return types.ErrOrderExists
	}

	s.orders[o.Hash] = o
	s.seq++
	k := seqKey{seq: s.seq, hash: o.Hash}

	ownerList, ok := s.byOwner[o.Owner]
	if !ok {
		ownerList = skiplist.New(seqComparable{})
		s.byOwner[o.Owner] = ownerList
	}
	ownerList.Set(k, o.Hash)

	pairHash := pairKey(o.Base, o.Quote)

	pairList, ok := s.byPair[pairHash]
	if !ok {
		pairList = skiplist.New(seqComparable{})
		s.byPair[pairHash] = pairList
	}
	pairList.Set(k, o.Hash)

	owners, ok := s.byPairOwner[pairHash]
	if !ok {
		owners = make(map[types.A]*skiplist.SkipList)
		s.byPairOwner[pairHash] = owners
	}
	pairOwnerList, ok := owners[o.Owner]
	if !ok {
		pairOwnerList = skiplist.New(seqComparable{})
		owners[o.Owner] = pairOwnerList
	}
	pairOwnerList.Set(k, o.Hash)

	return nil
}

// pairKey folds (base, quote) into a single lookup key for the pair
// and pair-owner indices; the matcher always knows both legs of a pair, so
// this never needs to be the registry-assigned pair hash.
func pairKey(base, quote types.H) types.H {
	var out types.H
	for i := range out {
		out[i] = base[i] ^ quote[i]
	}
	return out
}

// Get returns the order for hash.
func (s *Store) Get(hash types.H) (*types.LimitOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[hash]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return o, nil
}

// Update overwrites the stored order for o.Hash in place. The caller
// must have already mutated a pointer obtained from Get/Insert, or
// pass a replacement with the same hash.
func (s *Store) Update(o *types.LimitOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.Hash]; !ok {
		return types.ErrOrderNotFound
	}
	s.orders[o.Hash] = o
	return nil
}

// ByOwner returns every order hash ever created by owner, oldest
// first.
func (s *Store) ByOwner(owner types.A) []types.H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.byOwner[owner]
	if !ok {
		return nil
	}
	return collect(list)
}

// PairOwnedOrders returns every order hash ever created against the
// pair (base, quote), across all owners, oldest first. Distinct from
// ByPairAndOwner: this lists every order for a market, not one
// account's orders within it.
func (s *Store) PairOwnedOrders(base, quote types.H) []types.H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.byPair[pairKey(base, quote)]
	if !ok {
		return nil
	}
	return collect(list)
}

// ByPairAndOwner returns every order hash owner ever created against
// the pair (base, quote), oldest first.
func (s *Store) ByPairAndOwner(base, quote types.H, owner types.A) []types.H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners, ok := s.byPairOwner[pairKey(base, quote)]
	if !ok {
		return nil
	}
	list, ok := owners[owner]
	if !ok {
		return nil
	}
	return collect(list)
}

func collect(list *skiplist.SkipList) []types.H {
	out := make([]types.H, 0, list.Len())
	for e := list.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(types.H))
	}
	return out
}
