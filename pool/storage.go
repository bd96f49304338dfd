// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/stakepool/stakepool/kv"
	"github.com/stakepool/stakepool/stake"
)

const (
	stateBucket    = kv.Bucket("pool-")
	accountsBucket = kv.Bucket("accounts-")
)

var stateKey = []byte("state")

// repository persists the pool and account ledger records.
type repository struct {
	store    kv.Store
	state    kv.Store
	accounts kv.Store
}

func newRepository(store kv.Store) *repository {
	return &repository{
		store:    store,
		state:    stateBucket.NewStore(store),
		accounts: accountsBucket.NewStore(store),
	}
}

// LoadState loads the pool ledger record, or ErrNotInitialized if the store
// was never seeded.
func (r *repository) LoadState() (*State, error) {
	data, err := r.state.Get(stateKey)
	if err != nil {
		if r.state.IsNotFound(err) {
			return nil, ErrNotInitialized
		}
		return nil, errors.WithMessage(err, "load pool state")
	}
	var s State
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return nil, errors.WithMessage(err, "decode pool state")
	}
	return &s, nil
}

// SaveState writes the pool ledger record directly, outside any batch.
// Used at genesis only.
func (r *repository) SaveState(s *State) error {
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return errors.WithMessage(err, "encode pool state")
	}
	return r.state.Put(stateKey, data)
}

// GetAccount loads a delegator record. A missing record is an empty account.
func (r *repository) GetAccount(addr stake.Address) (*Account, error) {
	data, err := r.accounts.Get(addr.Bytes())
	if err != nil {
		if r.accounts.IsNotFound(err) {
			return newAccount(), nil
		}
		return nil, errors.WithMessage(err, "load account")
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, errors.WithMessage(err, "decode account")
	}
	return &a, nil
}

// AccountEntry pairs an address with its ledger record for iteration.
type AccountEntry struct {
	Address stake.Address
	Account *Account
}

// IterateAccounts walks delegator records in address order, starting after
// the given cursor. A nil cursor starts from the beginning. It stops after
// limit entries; limit <= 0 means no limit.
func (r *repository) IterateAccounts(after *stake.Address, limit int) ([]AccountEntry, error) {
	var rng kv.Range
	if after != nil {
		// the cursor is exclusive, so bump it to the next possible key
		from := append([]byte(nil), after.Bytes()...)
		i := len(from) - 1
		for ; i >= 0; i-- {
			from[i]++
			if from[i] != 0 {
				break
			}
		}
		if i < 0 {
			// the cursor was the maximum address
			return nil, nil
		}
		rng.From = from
	}
	it := r.accounts.NewIterator(rng)
	defer it.Release()

	var entries []AccountEntry
	for it.Next() {
		if limit > 0 && len(entries) >= limit {
			break
		}
		var a Account
		if err := rlp.DecodeBytes(it.Value(), &a); err != nil {
			return nil, errors.WithMessage(err, "decode account")
		}
		entries = append(entries, AccountEntry{
			Address: stake.BytesToAddress(it.Key()),
			Account: &a,
		})
	}
	if err := it.Error(); err != nil {
		return nil, errors.WithMessage(err, "iterate accounts")
	}
	return entries, nil
}

// ledger is one invocation's mutable view over the repository. All loads are
// cached so that an operation touching the same account twice, e.g. when the
// caller is also the fee-earning owner, sees its own writes. commit flushes
// everything in a single atomic batch.
type ledger struct {
	repo     *repository
	state    *State
	accounts map[stake.Address]*Account
}

func (r *repository) newLedger() (*ledger, error) {
	state, err := r.LoadState()
	if err != nil {
		return nil, err
	}
	return &ledger{
		repo:     r,
		state:    state,
		accounts: make(map[stake.Address]*Account),
	}, nil
}

func (l *ledger) account(addr stake.Address) (*Account, error) {
	if a, ok := l.accounts[addr]; ok {
		return a, nil
	}
	a, err := l.repo.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	l.accounts[addr] = a
	return a, nil
}

func (l *ledger) commit() error {
	batch := l.repo.store.NewBatch()

	data, err := rlp.EncodeToBytes(l.state)
	if err != nil {
		return errors.WithMessage(err, "encode pool state")
	}
	if err := stateBucket.NewPutter(batch).Put(stateKey, data); err != nil {
		return err
	}

	accounts := accountsBucket.NewPutter(batch)
	for addr, a := range l.accounts {
		if a.IsEmpty() {
			if err := accounts.Delete(addr.Bytes()); err != nil {
				return err
			}
			continue
		}
		data, err := rlp.EncodeToBytes(a)
		if err != nil {
			return errors.WithMessage(err, "encode account")
		}
		if err := accounts.Put(addr.Bytes(), data); err != nil {
			return err
		}
	}
	return batch.Write()
}
