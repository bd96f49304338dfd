// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
)

// ping advances the reward checkpoint to the current epoch. The balance
// growth since the last checkpoint is the reward: the owner's fee share is
// minted at the post-reward price and the remainder raises the share price
// for everyone. A balance decrease, e.g. after slashing, only moves the
// checkpoint. attached is the deposit accompanying the current operation,
// which must not count as reward. Returns whether a new epoch was processed.
func (p *Pool) ping(l *ledger, attached *big.Int) (bool, error) {
	epoch := p.host.Env.EpochHeight()
	if l.state.LastEpochHeight == epoch {
		return false, nil
	}
	l.state.LastEpochHeight = epoch

	totalBalance := new(big.Int).Add(p.host.Env.LockedBalance(), p.host.Env.AccountBalance())
	if attached != nil {
		totalBalance.Sub(totalBalance, attached)
	}

	if totalBalance.Cmp(l.state.LastTotalBalance) > 0 {
		totalReward := new(big.Int).Sub(totalBalance, l.state.LastTotalBalance)
		ownersFee := l.state.RewardFee.Mul(totalReward)
		remaining := new(big.Int).Sub(totalReward, ownersFee)

		// the remainder raises the share price before fee shares are priced
		l.state.TotalStakedBalance = new(big.Int).Add(l.state.TotalStakedBalance, remaining)

		feeShares, err := l.state.sharesFromStakedAmountRoundDown(ownersFee)
		if err != nil {
			return false, err
		}
		if feeShares.Sign() > 0 {
			owner, err := l.account(l.state.Owner)
			if err != nil {
				return false, err
			}
			owner.StakeShares = new(big.Int).Add(owner.StakeShares, feeShares)
			l.state.TotalStakeShares = new(big.Int).Add(l.state.TotalStakeShares, feeShares)
		}
		l.state.TotalStakedBalance = new(big.Int).Add(l.state.TotalStakedBalance, ownersFee)

		logger.Info("rewards distributed",
			"epoch", epoch,
			"reward", totalReward,
			"ownersFee", ownersFee,
			"totalStaked", l.state.TotalStakedBalance)
		metricRewardCount().Add(1)
	}

	l.state.LastTotalBalance = totalBalance
	return true, nil
}
