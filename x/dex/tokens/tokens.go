// Package tokens defines the external token collaborator (§6): the
// balance, freeze, and transfer surface the matcher and dispatch
// shell depend on but never implement themselves. It also provides an
// in-memory reference implementation for tests, the CLI demo, and any
// host that does not already have its own ledger.
package tokens

import (
	"sync"

	"github.com/latticefi/spotdex/x/dex/types"
)

// Collaborator is the token ledger the matching core is built
// against. Every method observes and mutates a single consistent
// snapshot; the core assumes no method suspends or interleaves with
// another call (§5).
type Collaborator interface {
	FreeBalance(account types.A, token types.H) types.Q
	EnsureFreeBalance(account types.A, token types.H, amount types.Q) error
	Freeze(account types.A, token types.H, amount types.Q) error
	Unfreeze(account types.A, token types.H, amount types.Q) error
	Transfer(from, to types.A, token types.H, amount types.Q) error
	Owner(token types.H) (types.A, bool)
}

type balanceKey struct {
	account types.A
	token   types.H
}

// Memory is a process-local Collaborator, the reference implementation
// used by the CLI demo and by every package's tests in place of a
// real chain. It mirrors the token module shape spec.md §1 places out
// of scope for this core (balances, ownership, transfers) without
// pulling in a full token module.
type Memory struct {
	mu     sync.Mutex
	free   map[balanceKey]types.Q
	frozen map[balanceKey]types.Q
	owners map[types.H]types.A
}

// NewMemory returns an empty in-memory collaborator.
func NewMemory() *Memory {
	return &Memory{
		free:   make(map[balanceKey]types.Q),
		frozen: make(map[balanceKey]types.Q),
		owners: make(map[types.H]types.A),
	}
}

// RegisterToken assigns token's owner, as if it had been issued
// before the dex ever saw it.
func (m *Memory) RegisterToken(token types.H, owner types.A) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[token] = owner
}

// Mint credits account's free balance of token, as if it had been
// issued directly to them. Test and demo setup only; not part of the
// Collaborator interface.
func (m *Memory) Mint(account types.A, token types.H, amount types.Q) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{account, token}
	m.free[k] = m.free[k].Add(amount)
}

func (m *Memory) FreeBalance(account types.A, token types.H) types.Q {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.free[balanceKey{account, token}]
}

// FrozenBalance reports account's frozen balance of token. Test and
// demo inspection only; not part of the Collaborator interface.
func (m *Memory) FrozenBalance(account types.A, token types.H) types.Q {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen[balanceKey{account, token}]
}

func (m *Memory) EnsureFreeBalance(account types.A, token types.H, amount types.Q) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.free[balanceKey{account, token}].LT(amount) {
		return types.ErrInsufficientFunds
	}
	return nil
}

func (m *Memory) Freeze(account types.A, token types.H, amount types.Q) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{account, token}
	bal, ok := m.free[k].SafeSub(amount)
	if !ok {
		return types.ErrInsufficientFunds
	}
	m.free[k] = bal
	m.frozen[k] = m.frozen[k].Add(amount)
	return nil
}

func (m *Memory) Unfreeze(account types.A, token types.H, amount types.Q) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{account, token}
	bal, ok := m.frozen[k].SafeSub(amount)
	if !ok {
		return types.ErrTokenOp
	}
	m.frozen[k] = bal
	m.free[k] = m.free[k].Add(amount)
	return nil
}

// Transfer moves amount of token out of from's free balance into to's
// free balance. The matcher always calls Unfreeze on a leg immediately
// before transferring it, so by the time Transfer runs the amount has
// already moved from frozen to free.
func (m *Memory) Transfer(from, to types.A, token types.H, amount types.Q) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fromKey := balanceKey{from, token}
	bal, ok := m.free[fromKey].SafeSub(amount)
	if !ok {
		return types.ErrTokenOp
	}
	m.free[fromKey] = bal
	toKey := balanceKey{to, token}
	m.free[toKey] = m.free[toKey].Add(amount)
	return nil
}

func (m *Memory) Owner(token types.H) (types.A, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[token]
	return owner, ok
}
