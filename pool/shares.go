// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/holiman/uint256"
)

// mulDiv returns a * b / d with 256-bit intermediates. Inputs are 128-bit
// balances so the product cannot overflow.
func mulDiv(a, b, d *big.Int, roundUp bool) (*big.Int, error) {
	ua, overflow := uint256.FromBig(a)
	if overflow || ua.BitLen() > 128 {
		return nil, errValueOutOfRange
	}
	ub, overflow := uint256.FromBig(b)
	if overflow || ub.BitLen() > 128 {
		return nil, errValueOutOfRange
	}
	ud, overflow := uint256.FromBig(d)
	if overflow {
		return nil, errValueOutOfRange
	}
	prod := new(uint256.Int).Mul(ua, ub)
	if roundUp {
		prod.Add(prod, new(uint256.Int).SubUint64(ud, 1))
	}
	return prod.Div(prod, ud).ToBig(), nil
}

// sharesFromStakedAmountRoundDown returns the number of shares the given
// staked amount buys at the current share price, rounded down.
func (s *State) sharesFromStakedAmountRoundDown(amount *big.Int) (*big.Int, error) {
	if s.TotalStakedBalance.Sign() == 0 {
		return nil, ErrNoStakedBalance
	}
	return mulDiv(s.TotalStakeShares, amount, s.TotalStakedBalance, false)
}

// sharesFromStakedAmountRoundUp returns the number of shares needed to
// receive at least the given staked amount, rounded up.
func (s *State) sharesFromStakedAmountRoundUp(amount *big.Int) (*big.Int, error) {
	if s.TotalStakedBalance.Sign() == 0 {
		return nil, ErrNoStakedBalance
	}
	return mulDiv(s.TotalStakeShares, amount, s.TotalStakedBalance, true)
}

// stakedAmountFromSharesRoundDown returns the staked amount backing the given
// number of shares, rounded down.
func (s *State) stakedAmountFromSharesRoundDown(shares *big.Int) (*big.Int, error) {
	if s.TotalStakeShares.Sign() == 0 {
		return nil, ErrNoStakeShares
	}
	return mulDiv(s.TotalStakedBalance, shares, s.TotalStakeShares, false)
}

// stakedAmountFromSharesRoundUp returns the staked amount the given number of
// shares is worth, rounded up.
func (s *State) stakedAmountFromSharesRoundUp(shares *big.Int) (*big.Int, error) {
	if s.TotalStakeShares.Sign() == 0 {
		return nil, ErrNoStakeShares
	}
	return mulDiv(s.TotalStakedBalance, shares, s.TotalStakeShares, true)
}

// StakedBalance returns the staked balance backing the account's shares,
// rounded down. An account with no shares has a zero staked balance.
func (s *State) StakedBalance(a *Account) *big.Int {
	if a.StakeShares.Sign() == 0 || s.TotalStakeShares.Sign() == 0 {
		return new(big.Int)
	}
	amount, err := s.stakedAmountFromSharesRoundDown(a.StakeShares)
	if err != nil {
		return new(big.Int)
	}
	return amount
}
