// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool/stakepool/pool"
)

func TestAttachAndBalances(t *testing.T) {
	s := New(Options{})

	s.Attach(big.NewInt(1_000))
	assert.Equal(t, big.NewInt(1_000), s.AccountBalance())
	assert.Equal(t, big.NewInt(0), s.LockedBalance())
	assert.Equal(t, uint64(0), s.EpochHeight())
}

func waitResult(t *testing.T, ch chan pool.StakeResult) pool.StakeResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stake result")
		return pool.StakeResult{}
	}
}

func TestSetStakeMovesBalances(t *testing.T) {
	s := New(Options{})
	s.Attach(big.NewInt(1_000))

	results := make(chan pool.StakeResult, 1)
	s.SetStake(pool.StakeRequest{ID: 1, Amount: big.NewInt(600)}, results)
	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, uint64(1), r.ID)
	assert.Equal(t, big.NewInt(600), s.LockedBalance())
	assert.Equal(t, big.NewInt(400), s.AccountBalance())

	// back to zero releases everything
	s.SetStake(pool.StakeRequest{ID: 2, Amount: new(big.Int)}, results)
	r = waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, big.NewInt(0), s.LockedBalance())
	assert.Equal(t, big.NewInt(1_000), s.AccountBalance())
}

func TestSetStakeFailureModes(t *testing.T) {
	s := New(Options{MinStake: big.NewInt(500)})
	s.Attach(big.NewInt(1_000))

	results := make(chan pool.StakeResult, 1)
	s.SetStake(pool.StakeRequest{ID: 1, Amount: big.NewInt(100)}, results)
	r := waitResult(t, results)
	assert.Error(t, r.Err, "below minimum stake")
	assert.Equal(t, big.NewInt(0), s.LockedBalance(), "failed action moves nothing")

	s.SetStake(pool.StakeRequest{ID: 2, Amount: big.NewInt(2_000)}, results)
	r = waitResult(t, results)
	assert.Error(t, r.Err, "beyond account balance")

	// zero stake is always accepted
	s.SetStake(pool.StakeRequest{ID: 3, Amount: new(big.Int)}, results)
	r = waitResult(t, results)
	assert.NoError(t, r.Err)
}

func TestTransferDebitsLiquid(t *testing.T) {
	s := New(Options{})
	s.Attach(big.NewInt(1_000))

	s.Transfer([20]byte{0x01}, big.NewInt(300))
	assert.Equal(t, big.NewInt(700), s.AccountBalance())
}

func TestRunReleasesUnconsumedResults(t *testing.T) {
	s := New(Options{EpochInterval: time.Hour})
	s.Attach(big.NewInt(1_000))

	// nobody ever reads this sink
	sink := make(chan pool.StakeResult)
	s.SetStake(pool.StakeRequest{ID: 1, Amount: big.NewInt(100)}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	returned := make(chan struct{})
	go func() {
		s.Run(ctx, nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(3 * time.Second):
		t.Fatal("Run never returned, a stake goroutine is stuck on its sink")
	}

	// the stake itself settled before the result was dropped
	assert.Equal(t, big.NewInt(100), s.LockedBalance())
	assert.Equal(t, big.NewInt(900), s.AccountBalance())
}

func TestDetachRefundsAttachedDeposit(t *testing.T) {
	s := New(Options{})

	s.Attach(big.NewInt(1_000))
	s.Detach(big.NewInt(1_000))
	assert.Equal(t, big.NewInt(0), s.AccountBalance())
}

func TestEpochRewards(t *testing.T) {
	// 1% of locked per epoch
	s := New(Options{RewardNumerator: 1, RewardDenominator: 100})
	s.Attach(big.NewInt(10_000))

	results := make(chan pool.StakeResult, 1)
	s.SetStake(pool.StakeRequest{ID: 1, Amount: big.NewInt(10_000)}, results)
	require.NoError(t, waitResult(t, results).Err)

	s.AdvanceEpoch()
	assert.Equal(t, uint64(1), s.EpochHeight())
	assert.Equal(t, big.NewInt(10_100), s.LockedBalance())

	s.AdvanceEpoch()
	assert.Equal(t, big.NewInt(10_201), s.LockedBalance())
}
