// Package ladder implements the doubly-linked, sentinel-bounded price
// ladder described in §4.2: price levels are nodes in a map keyed by
// (pair, price), linked to their neighbors by price key rather than by
// pointer, with three sentinels per pair (Bottom at PBottom, Head at a
// nil price, Top at PMax) so the matcher never special-cases an empty
// side of the book. PBottom sits outside the legal price domain
// ([PMin, PMax], enforced by amounts.ValidateBounds) so a real order
// can never be placed at the Bottom sentinel's own price.
package ladder

import (
	"sync"

	"github.com/latticefi/spotdex/x/dex/types"
)

type key struct {
	pair  types.H
	price types.P
}

func headKey(pair types.H) key { return key{pair: pair} }

// Ladder holds every price level of every pair, keyed by (pair,price).
// It is safe for concurrent use, matching the dispatch shell's
// single-writer-per-call, read-from-anywhere model (§5).
type Ladder struct {
	mu     sync.RWMutex
	levels map[key]*types.PriceLevel
}

// New returns an empty ladder.
func New() *Ladder {
	return &Ladder{levels: make(map[key]*types.PriceLevel)}
}

// InitPair seeds the three sentinels (Bottom, Head, Top) for a newly
// created trade pair, linking Bottom <-> Head <-> Top. Returns
// ErrDuplicatePair if the pair already has sentinels.
func (l *Ladder) InitPair(pair types.H) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.levels[headKey(pair)]; ok {
		return types.ErrDuplicatePair
	}

	// The whole ladder is one ascending-by-price list with Head sitting
	// at the crossing point: Bottom < ... buy levels ... < Head < ...
	// sell levels ... < Top. Bottom.Prev and Top.Next point at each
	// other (PMax and PBottom respectively) rather than at nothing: the
	// matcher's walk, when it reaches a sentinel with no crossable
	// orders beyond it, dereferences that field to detect it has
	// wrapped around and must stop.
	bottomPrice, topPrice := types.PBottom, types.PMax
	bottom := &types.PriceLevel{Price: types.PtrP(bottomPrice), Prev: types.PtrP(topPrice), Next: nil}
	head := &types.PriceLevel{Price: nil, Prev: types.PtrP(bottomPrice), Next: types.PtrP(topPrice)}
	top := &types.PriceLevel{Price: types.PtrP(topPrice), Prev: nil, Next: types.PtrP(bottomPrice)}

	l.levels[key{pair, bottomPrice}] = bottom
	l.levels[headKey(pair)] = head
	l.levels[key{pair, topPrice}] = top
	return nil
}

// lookup fetches the level at price, or the Head sentinel when price
// is nil. Callers must hold l.mu.
func (l *Ladder) lookup(pair types.H, price *types.P) (*types.PriceLevel, bool) {
	if price == nil {
		lvl, ok := l.levels[headKey(pair)]
		return lvl, ok
	}
	lvl, ok := l.levels[key{pair, *price}]
	return lvl, ok
}

// ReadHead returns the Head sentinel for pair.
func (l *Ladder) ReadHead(pair types.H) (*types.PriceLevel, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lvl, ok := l.lookup(pair, nil)
	if !ok {
		return nil, types.ErrUnknownPair
	}
	return lvl, nil
}

// ReadBottom returns the Bottom sentinel for pair.
func (l *Ladder) ReadBottom(pair types.H) (*types.PriceLevel, error) {
	return l.Read(pair, types.PBottom)
}

// ReadTop returns the Top sentinel for pair.
func (l *Ladder) ReadTop(pair types.H) (*types.PriceLevel, error) {
	return l.Read(pair, types.PMax)
}

// Read returns the level at price for pair, or ErrMissingLevel if no
// level exists at that price (never opened, or already removed).
func (l *Ladder) Read(pair types.H, price types.P) (*types.PriceLevel, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lvl, ok := l.lookup(pair, &price)
	if !ok {
		return nil, types.ErrMissingLevel
	}
	return lvl, nil
}

// Append adds orderHash to the FIFO queue of the level at price,
// creating and splicing in the level if this is the first order ever
// to open that price.
func (l *Ladder) Append(pair types.H, price types.P, side types.OType, orderHash types.H) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lvl, ok := l.levels[key{pair, price}]
	if !ok {
		var err error
		lvl, err = l.insertLevel(pair, price, side)
		if err != nil {
			return err
		}
	}
	lvl.Orders = append(lvl.Orders, orderHash)
	return nil
}

// insertLevel splices a brand new level for price into the ladder's
// single ascending-by-price chain. A Buy price is placed somewhere in
// the Bottom..Head segment, a Sell price somewhere in the Head..Top
// segment; insertLevel finds the immediate predecessor and successor
// in that segment and links the new level between them.
func (l *Ladder) insertLevel(pair types.H, price types.P, side types.OType) (*types.PriceLevel, error) {
	head, ok := l.levels[headKey(pair)]
	if !ok {
		return nil, types.ErrUnknownPair
	}

	var pred, succ *types.PriceLevel
	if side == types.Buy {
		succ = head
		curKey := head.Prev
		for {
			cur, ok := l.lookup(pair, curKey)
			if !ok {
				return nil, types.ErrLadderCorrupt
			}
			if *cur.Price < price {
				pred = cur
				break
			}
			succ = cur
			if *cur.Price == types.PBottom {
				pred = cur
				break
			}
			curKey = cur.Prev
		}
	} else {
		pred = head
		curKey := head.Next
		for {
			cur, ok := l.lookup(pair, curKey)
			if !ok {
				return nil, types.ErrLadderCorrupt
			}
			if *cur.Price > price {
				succ = cur
				break
			}
			pred = cur
			if *cur.Price == types.PMax {
				succ = cur
				break
			}
			curKey = cur.Next
		}
	}

	return l.spliceBetween(pair, price, pred, succ)
}

// spliceBetween links a brand new level for price directly between
// the given predecessor and successor, which must already be
// neighbors.
func (l *Ladder) spliceBetween(pair types.H, price types.P, pred, succ *types.PriceLevel) (*types.PriceLevel, error) {
	lvl := &types.PriceLevel{Price: types.PtrP(price), Prev: pred.Price, Next: succ.Price}
	pred.Next = lvl.Price
	succ.Prev = lvl.Price
	l.levels[key{pair, price}] = lvl
	return lvl, nil
}

// OrderLookup resolves an order hash to its current record, so
// RemoveItem can check IsFinished without the ladder importing the
// order store directly.
type OrderLookup interface {
	Get(hash types.H) (*types.LimitOrder, error)
}

// RemoveItem pops finished orders from the front of the level at
// price's FIFO queue, then — once the queue is empty — unlinks the
// level by rewiring its neighbors and deleting its record. Hitting a
// non-finished order before the queue empties stops the removal with
// ErrTryRemoveUnfinished, leaving that order and everything behind it
// in place.
func (l *Ladder) RemoveItem(pair types.H, price types.P, lookup OrderLookup) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lvl, ok := l.levels[key{pair, price}]
	if !ok {
		return types.ErrMissingLevel
	}

	for len(lvl.Orders) > 0 {
		o, err := lookup.Get(lvl.Orders[0])
		if err != nil {
			return err
		}
		if !o.IsFinished() {
			return types.ErrTryRemoveUnfinished
		}
		lvl.Orders = lvl.Orders[1:]
	}

	if !lvl.IsSentinel() {
		return l.unlinkLevel(pair, lvl)
	}
	return nil
}

// RemoveItems walks from Head toward side's terminator sentinel,
// invoking RemoveItem on each adjacent level until the terminator is
// reached. Called after each matching pass to garbage-collect levels
// the matcher fully drained.
func (l *Ladder) RemoveItems(pair types.H, side types.OType, lookup OrderLookup) error {
	end := types.PMax
	if side == types.Buy {
		end = types.PBottom
	}

	for {
		l.mu.RLock()
		head, ok := l.levels[headKey(pair)]
		if !ok {
			l.mu.RUnlock()
			return types.ErrUnknownPair
		}
		var next *types.P
		if side == types.Buy {
			next = head.Prev
		} else {
			next = head.Next
		}
		l.mu.RUnlock()

		if next == nil || *next == end {
			return nil
		}
		if err := l.RemoveItem(pair, *next, lookup); err != nil {
			return err
		}
	}
}

func (l *Ladder) unlinkLevel(pair types.H, lvl *types.PriceLevel) error {
	prev, ok := l.lookup(pair, lvl.Prev)
	if !ok {
		return types.ErrLadderCorrupt
	}
	next, ok := l.lookup(pair, lvl.Next)
	if !ok {
		return types.ErrLadderCorrupt
	}
	prev.Next = next.Price
	next.Prev = prev.Price
	delete(l.levels, key{pair, *lvl.Price})
	return nil
}
