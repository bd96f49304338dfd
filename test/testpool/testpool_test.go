// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testpool

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/solo"
	"github.com/stakepool/stakepool/stake"
)

// waitForLocked polls the host until its locked balance reaches want,
// riding out the asynchronous stake settlement.
func waitForLocked(t *testing.T, host *solo.Solo, want *big.Int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if host.LockedBalance().Cmp(want) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("locked balance stuck at %s, want %s", host.LockedBalance(), want)
}

func TestFullStackStakeAndReward(t *testing.T) {
	tp, err := New(pool.Fraction{Denominator: 1}, solo.Options{
		RewardNumerator:   1,
		RewardDenominator: 100,
	})
	require.NoError(t, err)
	defer tp.Close()

	alice := stake.BytesToAddress([]byte("alice"))
	require.NoError(t, tp.DepositAndStake(alice, big.NewInt(1_000_000)))

	staked, err := tp.Engine.StakedBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), staked)

	// the epoch clock credits 1% on whatever the host has locked
	tp.Host.AdvanceEpoch()
	require.NoError(t, tp.Engine.Ping())

	info, err := tp.Engine.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.LastEpochHeight)

	staked, err = tp.Engine.StakedBalance(alice)
	require.NoError(t, err)
	assert.True(t, staked.Cmp(big.NewInt(1_000_000)) >= 0)
}

func TestRejectedDepositIsRefunded(t *testing.T) {
	tp, err := New(pool.Fraction{Denominator: 1}, solo.Options{
		RewardNumerator:   1,
		RewardDenominator: 1,
	})
	require.NoError(t, err)
	defer tp.Close()

	alice := stake.BytesToAddress([]byte("alice"))
	bob := stake.BytesToAddress([]byte("bob"))

	require.NoError(t, tp.DepositAndStake(alice, big.NewInt(1_000_000)))
	waitForLocked(t, tp.Host, big.NewInt(2_000_000))

	// 100% reward per epoch drives the share price to 2
	tp.Host.AdvanceEpoch()
	require.NoError(t, tp.Engine.Ping())
	waitForLocked(t, tp.Host, big.NewInt(4_000_000))

	liquidBefore := tp.Host.AccountBalance()

	// one unit buys no whole share at price 2
	err = tp.DepositAndStake(bob, big.NewInt(1))
	assert.ErrorIs(t, err, pool.ErrStakeTooSmall)

	// the rejected deposit must not linger on the host account, the next
	// reward pass would hand it out as reward
	assert.Equal(t, liquidBefore, tp.Host.AccountBalance())

	// the next epoch doubles the stake exactly, nothing extra folds in
	tp.Host.AdvanceEpoch()
	require.NoError(t, tp.Engine.Ping())
	info, err := tp.Engine.Info()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(8_000_000), info.TotalStakedBalance)
}
