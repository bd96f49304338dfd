// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/stakepool/stakepool/stake"
)

// Env is the host oracle for epoch height and the pool account's balances.
type Env interface {
	// EpochHeight returns the current epoch height.
	EpochHeight() uint64
	// AccountBalance returns the liquid balance of the pool's host account.
	AccountBalance() *big.Int
	// LockedBalance returns the balance locked for staking at the validator.
	LockedBalance() *big.Int
}

// StakeRequest asks the host to redeclare the validator stake.
// It carries enough context to resume when the result arrives.
type StakeRequest struct {
	ID     uint64
	Amount *big.Int
	Key    stake.PublicKey
}

// StakeResult is the asynchronous outcome of a stake request.
type StakeResult struct {
	ID  uint64
	Err error
}

// StakeActor is the host primitive performing the external stake action.
type StakeActor interface {
	// SetStake asynchronously sets the validator stake to req.Amount.
	// When done, the result is delivered to sink. A nil sink means the caller
	// does not want the result.
	SetStake(req StakeRequest, sink chan<- StakeResult)
}

// Transferor is the host's native-transfer primitive. Transfers are
// fire-and-forget: once the ledger has been updated the transfer is issued
// unconditionally.
type Transferor interface {
	Transfer(to stake.Address, amount *big.Int)
}

// Voter forwards a governance vote to an external voting contract.
type Voter interface {
	Vote(isVote bool) error
}

// Host bundles the external collaborators the pool depends on.
// Env, Stake and Transfer are required; Vote may be nil.
type Host struct {
	Env      Env
	Stake    StakeActor
	Transfer Transferor
	Vote     Voter
}
