// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/stakepool/stakepool/kv"
	"github.com/stakepool/stakepool/stake"
)

// ErrAlreadyInitialized is returned when seeding a store that already holds
// pool state.
var ErrAlreadyInitialized = errors.New("pool is already initialized")

// InitParams seeds a fresh pool ledger.
type InitParams struct {
	Owner          stake.Address
	StakePublicKey stake.PublicKey
	RewardFee      Fraction
	// GuaranteeFund is the non-refundable balance backing the initial
	// shares. It must be positive so the share price is always defined.
	GuaranteeFund *big.Int
	// EpochHeight is the epoch the reward checkpoint starts at.
	EpochHeight uint64
}

// Initialize seeds the store with the initial pool state. It fails if the
// store is already seeded.
func Initialize(store kv.Store, params InitParams) error {
	if err := params.RewardFee.Validate(); err != nil {
		return err
	}
	if params.GuaranteeFund == nil || params.GuaranteeFund.Sign() <= 0 {
		return errors.New("guarantee fund must be positive")
	}
	if params.Owner.IsZero() {
		return errors.New("owner must be set")
	}

	repo := newRepository(store)
	if _, err := repo.LoadState(); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, ErrNotInitialized) {
		return err
	}

	// the guarantee fund mints the first shares at price 1 and stays out
	// of every account, so it can never be withdrawn
	state := &State{
		Owner:              params.Owner,
		StakePublicKey:     params.StakePublicKey,
		LastEpochHeight:    params.EpochHeight,
		LastTotalBalance:   new(big.Int).Set(params.GuaranteeFund),
		TotalStakeShares:   new(big.Int).Set(params.GuaranteeFund),
		TotalStakedBalance: new(big.Int).Set(params.GuaranteeFund),
		RewardFee:          params.RewardFee,
	}
	if err := repo.SaveState(state); err != nil {
		return err
	}
	logger.Info("pool initialized",
		"owner", params.Owner,
		"guaranteeFund", params.GuaranteeFund,
		"feeNumerator", params.RewardFee.Numerator,
		"feeDenominator", params.RewardFee.Denominator)
	return nil
}
