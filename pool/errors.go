// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import "github.com/pkg/errors"

var (
	// ErrNotInitialized is returned when the store holds no pool state.
	ErrNotInitialized = errors.New("pool is not initialized")
	// ErrUnauthorized is returned when an owner operation is attempted by
	// somebody else.
	ErrUnauthorized = errors.New("caller is not the pool owner")
	// ErrAmountNotPositive is returned when an operation amount is zero.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrNotEnoughUnstaked is returned when the unstaked balance cannot
	// cover the operation.
	ErrNotEnoughUnstaked = errors.New("not enough unstaked balance")
	// ErrNotEnoughStaked is returned when the staked balance cannot cover
	// the unstake.
	ErrNotEnoughStaked = errors.New("not enough staked balance")
	// ErrStakeTooSmall is returned when an amount is too small to mint a
	// single share at the current share price.
	ErrStakeTooSmall = errors.New("stake amount is too small to mint a share")
	// ErrWithdrawLocked is returned when the unstaked balance is still
	// within the unstake delay.
	ErrWithdrawLocked = errors.New("unstaked balance is not yet withdrawable")
	// ErrNoStakedBalance is returned when an operation needs a nonzero
	// total staked balance.
	ErrNoStakedBalance = errors.New("pool has no staked balance")
	// ErrNoStakeShares is returned when an operation needs a nonzero total
	// share count.
	ErrNoStakeShares = errors.New("pool has no stake shares")
	// ErrStakingPaused is returned when a vote is attempted while staking
	// is paused. Votes require an active validator.
	ErrStakingPaused = errors.New("staking is paused")
	// ErrAlreadyPaused is returned when pausing an already paused pool.
	ErrAlreadyPaused = errors.New("staking is already paused")
	// ErrNotPaused is returned when resuming a pool that is not paused.
	ErrNotPaused = errors.New("staking is not paused")
	// ErrNoVoter is returned when no voting contract is configured.
	ErrNoVoter = errors.New("no voting contract configured")

	errInvalidFraction = errors.New("invalid fraction")
	errValueOutOfRange = errors.New("balance exceeds 128 bits")
)
