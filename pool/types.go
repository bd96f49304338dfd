// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/stakepool/stakepool/stake"
)

// Fraction is a reward fee expressed as Numerator/Denominator.
type Fraction struct {
	Numerator   uint64
	Denominator uint64
}

// Validate checks that the fraction is well formed and does not exceed 1.
func (f Fraction) Validate() error {
	if f.Denominator == 0 {
		return errors.WithMessage(errInvalidFraction, "denominator must not be zero")
	}
	if f.Numerator > f.Denominator {
		return errors.WithMessage(errInvalidFraction, "numerator must not exceed denominator")
	}
	return nil
}

// Mul returns amount * Numerator / Denominator, rounded down.
func (f Fraction) Mul(amount *big.Int) *big.Int {
	r := new(big.Int).Mul(amount, new(big.Int).SetUint64(f.Numerator))
	return r.Div(r, new(big.Int).SetUint64(f.Denominator))
}

// Account is a delegator's ledger record.
type Account struct {
	// Unstaked is the balance the delegator may stake or, once the delay
	// has passed, withdraw.
	Unstaked *big.Int
	// StakeShares is the number of pool shares backing the delegator's
	// staked balance.
	StakeShares *big.Int
	// UnstakedAvailableEpoch is the epoch height at which Unstaked becomes
	// withdrawable.
	UnstakedAvailableEpoch uint64
}

func newAccount() *Account {
	return &Account{
		Unstaked:    new(big.Int),
		StakeShares: new(big.Int),
	}
}

// IsEmpty reports whether the record carries no balance and can be deleted.
func (a *Account) IsEmpty() bool {
	return a.Unstaked.Sign() == 0 && a.StakeShares.Sign() == 0
}

// State is the pool-wide ledger record.
type State struct {
	// Owner may rotate the staking key, change the fee, pause staking and vote.
	Owner stake.Address
	// StakePublicKey is the validator key stake actions are issued with.
	StakePublicKey stake.PublicKey
	// LastEpochHeight is the epoch height of the last reward accrual.
	LastEpochHeight uint64
	// LastTotalBalance is the total account balance the pool knew of at the
	// last accrual. The difference to the current balance is the reward.
	LastTotalBalance *big.Int
	// TotalStakeShares is the total number of shares across all accounts,
	// including the shares backing the guarantee fund.
	TotalStakeShares *big.Int
	// TotalStakedBalance is the staked balance backing TotalStakeShares.
	TotalStakedBalance *big.Int
	// RewardFee is the owner's cut of every reward.
	RewardFee Fraction
	// Paused stops the pool from staking at the validator.
	Paused bool
}
