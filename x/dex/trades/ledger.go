// Package trades is the immutable trade ledger: every executed fill,
// keyed by hash, plus four btree-backed indices (by pair, by account,
// by account+pair, by order) ordered by execution sequence so the
// most recent trades for a pair or account can be listed in O(log n
// + k) instead of a full scan.
package trades

import (
	"github.com/google/btree"

	"github.com/latticefi/spotdex/x/dex/types"
)

const btreeDegree = 32

// seqItem is one btree entry: a monotone sequence number plus the
// trade hash it names, ordered ascending (oldest first) the way the
// teacher's priceLevelItem orders by price.
type seqItem struct {
	seq  uint64
	hash types.H
}

func (a *seqItem) Less(b btree.Item) bool {
	return a.seq < b.(*seqItem).seq
}

// Ledger holds every trade ever executed.
type Ledger struct {
	trades map[types.H]*types.Trade
	seq    uint64

	byPair        map[types.H]*btree.BTree
	byAccount     map[types.A]*btree.BTree
	byAccountPair map[accountPairKey]*btree.BTree
	byOrder       map[types.H]*btree.BTree
}

type accountPairKey struct {
	account types.A
	pair    types.H
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		trades:        make(map[types.H]*types.Trade),
		byPair:        make(map[types.H]*btree.BTree),
		byAccount:     make(map[types.A]*btree.BTree),
		byAccountPair: make(map[accountPairKey]*btree.BTree),
		byOrder:       make(map[types.H]*btree.BTree),
	}
}

// Record appends a new trade to the ledger and every index it
// participates in. Trades are immutable once recorded: there is no
// Update.
func (l *Ledger) Record(t *types.Trade, buyOrder, sellOrder types.H) error {
	if _, exists := l.trades[t.Hash]; exists {
		return types.ErrTradeExists
	}
	l.trades[t.Hash] = t
	l.seq++
	item := &seqItem{seq: l.seq, hash: t.Hash}

	pairHash := pairKey(t.Base, t.Quote)
	indexTree(l.byPair, pairHash).ReplaceOrInsert(item)
	indexTree(l.byAccount, t.Buyer).ReplaceOrInsert(item)
	indexTree(l.byAccount, t.Seller).ReplaceOrInsert(item)
	indexTree(l.byAccountPair, accountPairKey{t.Buyer, pairHash}).ReplaceOrInsert(item)
	indexTree(l.byAccountPair, accountPairKey{t.Seller, pairHash}).ReplaceOrInsert(item)
	indexTree(l.byOrder, buyOrder).ReplaceOrInsert(item)
	indexTree(l.byOrder, sellOrder).ReplaceOrInsert(item)

	return nil
}

func indexTree[K comparable](m map[K]*btree.BTree, k K) *btree.BTree {
	tree, ok := m[k]
	if !ok {
		tree = btree.New(btreeDegree)
		m[k] = tree
	}
	return tree
}

func pairKey(base, quote types.H) types.H {
	var out types.H
	for i := range out {
		out[i] = base[i] ^ quote[i]
	}
	return out
}

// Get returns the trade for hash.
func (l *Ledger) Get(hash types.H) (*types.Trade, error) {
	t, ok := l.trades[hash]
	if !ok {
		return nil, types.ErrTradeNotFound
	}
	return t, nil
}

// ForPair returns every trade for (base, quote), most recent first,
// capped at limit (0 means unlimited).
func (l *Ledger) ForPair(base, quote types.H, limit int) []*types.Trade {
	return l.collect(l.byPair[pairKey(base, quote)], limit)
}

// ForAccount returns every trade account took part in, most recent
// first, capped at limit (0 means unlimited).
func (l *Ledger) ForAccount(account types.A, limit int) []*types.Trade {
	return l.collect(l.byAccount[account], limit)
}

// ForAccountAndPair returns every trade account took part in against
// (base, quote), most recent first, capped at limit.
func (l *Ledger) ForAccountAndPair(account types.A, base, quote types.H, limit int) []*types.Trade {
	return l.collect(l.byAccountPair[accountPairKey{account, pairKey(base, quote)}], limit)
}

// ForOrder returns every fill that involved orderHash, oldest first.
func (l *Ledger) ForOrder(orderHash types.H) []*types.Trade {
	tree, ok := l.byOrder[orderHash]
	if !ok {
		return nil
	}
	out := make([]*types.Trade, 0, tree.Len())
	tree.Ascend(func(it btree.Item) bool {
		out = append(out, l.trades[it.(*seqItem).hash])
		return true
	})
	return out
}

// collect walks tree newest-first (descending sequence), stopping
// after limit items when limit > 0.
func (l *Ledger) collect(tree *btree.BTree, limit int) []*types.Trade {
	if tree == nil {
		return nil
	}
	out := make([]*types.Trade, 0, tree.Len())
	tree.Descend(func(it btree.Item) bool {
		out = append(out, l.trades[it.(*seqItem).hash])
		return limit <= 0 || len(out) < limit
	})
	return out
}
