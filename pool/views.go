// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/stakepool/stakepool/stake"
)

// AccountInfo is the externally visible view of a delegator record.
type AccountInfo struct {
	Address         stake.Address
	UnstakedBalance *big.Int
	StakedBalance   *big.Int
	CanWithdraw     bool
}

// Info is the externally visible view of the pool ledger.
type Info struct {
	Owner              stake.Address
	StakePublicKey     stake.PublicKey
	RewardFee          Fraction
	Paused             bool
	LastEpochHeight    uint64
	LastTotalBalance   *big.Int
	TotalStakedBalance *big.Int
	TotalStakeShares   *big.Int
}

// Info returns the pool-wide view.
func (p *Pool) Info() (*Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.repo.LoadState()
	if err != nil {
		return nil, err
	}
	return &Info{
		Owner:              s.Owner,
		StakePublicKey:     s.StakePublicKey,
		RewardFee:          s.RewardFee,
		Paused:             s.Paused,
		LastEpochHeight:    s.LastEpochHeight,
		LastTotalBalance:   s.LastTotalBalance,
		TotalStakedBalance: s.TotalStakedBalance,
		TotalStakeShares:   s.TotalStakeShares,
	}, nil
}

// Account returns the view of a single delegator. A delegator without a
// record has zero balances.
func (p *Pool) Account(addr stake.Address) (*AccountInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.repo.LoadState()
	if err != nil {
		return nil, err
	}
	acc, err := p.repo.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return p.accountInfo(s, addr, acc), nil
}

// UnstakedBalance returns the delegator's unstaked balance.
func (p *Pool) UnstakedBalance(addr stake.Address) (*big.Int, error) {
	info, err := p.Account(addr)
	if err != nil {
		return nil, err
	}
	return info.UnstakedBalance, nil
}

// StakedBalance returns the delegator's share-derived staked balance.
func (p *Pool) StakedBalance(addr stake.Address) (*big.Int, error) {
	info, err := p.Account(addr)
	if err != nil {
		return nil, err
	}
	return info.StakedBalance, nil
}

// TotalBalance returns the delegator's unstaked plus staked balance.
func (p *Pool) TotalBalance(addr stake.Address) (*big.Int, error) {
	info, err := p.Account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(info.UnstakedBalance, info.StakedBalance), nil
}

// CanWithdraw reports whether the delegator's unstaked balance has passed
// the unstake delay.
func (p *Pool) CanWithdraw(addr stake.Address) (bool, error) {
	info, err := p.Account(addr)
	if err != nil {
		return false, err
	}
	return info.CanWithdraw, nil
}

// Accounts lists delegator views in address order, starting after the given
// cursor. A nil cursor starts from the beginning; limit <= 0 means no limit.
func (p *Pool) Accounts(after *stake.Address, limit int) ([]*AccountInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.repo.LoadState()
	if err != nil {
		return nil, err
	}
	entries, err := p.repo.IterateAccounts(after, limit)
	if err != nil {
		return nil, err
	}
	infos := make([]*AccountInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, p.accountInfo(s, e.Address, e.Account))
	}
	return infos, nil
}

func (p *Pool) accountInfo(s *State, addr stake.Address, acc *Account) *AccountInfo {
	return &AccountInfo{
		Address:         addr,
		UnstakedBalance: acc.Unstaked,
		StakedBalance:   s.StakedBalance(acc),
		CanWithdraw:     acc.UnstakedAvailableEpoch <= p.host.Env.EpochHeight(),
	}
}
