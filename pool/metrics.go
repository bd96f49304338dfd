// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/stakepool/stakepool/log"
	"github.com/stakepool/stakepool/metrics"
)

var logger = log.WithContext("pkg", "pool")

var (
	metricOpCount          = metrics.LazyLoadCounterVec("pool_operations_total", []string{"op"})
	metricRewardCount      = metrics.LazyLoadCounter("pool_reward_passes_total")
	metricStakeActionCount = metrics.LazyLoadCounterVec("pool_stake_actions_total", []string{"result"})
	metricTotalStakedGauge = metrics.LazyLoadGauge("pool_total_staked_balance")
	metricTotalSharesGauge = metrics.LazyLoadGauge("pool_total_stake_shares")
)

func countOp(op string) {
	metricOpCount().AddWithLabel(1, map[string]string{"op": op})
}

// updateGauges publishes the pool totals. Values beyond int64 are skipped
// since the gauge cannot represent them.
func updateGauges(s *State) {
	if s.TotalStakedBalance.IsInt64() {
		metricTotalStakedGauge().Set(s.TotalStakedBalance.Int64())
	}
	if s.TotalStakeShares.IsInt64() {
		metricTotalSharesGauge().Set(s.TotalStakeShares.Int64())
	}
}
