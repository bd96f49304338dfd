// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakepool/stakepool/pool"
)

// Balances travel as decimal strings since they may exceed 64 bits.

// JSONPoolInfo is the pool-wide view.
type JSONPoolInfo struct {
	Owner              string `json:"owner"`
	StakePublicKey     string `json:"stakePublicKey"`
	FeeNumerator       uint64 `json:"feeNumerator"`
	FeeDenominator     uint64 `json:"feeDenominator"`
	Paused             bool   `json:"paused"`
	LastEpochHeight    uint64 `json:"lastEpochHeight"`
	LastTotalBalance   string `json:"lastTotalBalance"`
	TotalStakedBalance string `json:"totalStakedBalance"`
	TotalStakeShares   string `json:"totalStakeShares"`
}

func buildJSONPoolInfo(info *pool.Info) *JSONPoolInfo {
	return &JSONPoolInfo{
		Owner:              info.Owner.String(),
		StakePublicKey:     info.StakePublicKey.String(),
		FeeNumerator:       info.RewardFee.Numerator,
		FeeDenominator:     info.RewardFee.Denominator,
		Paused:             info.Paused,
		LastEpochHeight:    info.LastEpochHeight,
		LastTotalBalance:   info.LastTotalBalance.String(),
		TotalStakedBalance: info.TotalStakedBalance.String(),
		TotalStakeShares:   info.TotalStakeShares.String(),
	}
}

// JSONAccount is the per-delegator view.
type JSONAccount struct {
	Address         string `json:"address"`
	UnstakedBalance string `json:"unstakedBalance"`
	StakedBalance   string `json:"stakedBalance"`
	CanWithdraw     bool   `json:"canWithdraw"`
}

func buildJSONAccount(info *pool.AccountInfo) *JSONAccount {
	return &JSONAccount{
		Address:         info.Address.String(),
		UnstakedBalance: info.UnstakedBalance.String(),
		StakedBalance:   info.StakedBalance.String(),
		CanWithdraw:     info.CanWithdraw,
	}
}

// JSONAccountList is one page of delegator views plus the cursor for the
// next page, empty when the listing is exhausted.
type JSONAccountList struct {
	Accounts []*JSONAccount `json:"accounts"`
	Next     string         `json:"next,omitempty"`
}

// Operation is the body of every balance-mutating request. A nil amount on
// stake, unstake or withdraw means "all".
type Operation struct {
	Caller string  `json:"caller"`
	Amount *string `json:"amount"`
}

func (op *Operation) amount() (*big.Int, error) {
	if op.Amount == nil {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(*op.Amount, 10)
	if !ok {
		return nil, errors.Errorf("invalid decimal %q", *op.Amount)
	}
	return v, nil
}

// KeyUpdate rotates the validator staking key.
type KeyUpdate struct {
	Caller         string `json:"caller"`
	StakePublicKey string `json:"stakePublicKey"`
}

// FeeUpdate changes the owner's reward cut.
type FeeUpdate struct {
	Caller         string `json:"caller"`
	FeeNumerator   uint64 `json:"feeNumerator"`
	FeeDenominator uint64 `json:"feeDenominator"`
}

// OwnerCall carries just the caller, for pause/resume.
type OwnerCall struct {
	Caller string `json:"caller"`
}

// VoteCall forwards a governance vote.
type VoteCall struct {
	Caller string `json:"caller"`
	IsVote bool   `json:"isVote"`
}
