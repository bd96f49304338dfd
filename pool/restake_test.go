// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitRequest waits for the actor to receive one stake request.
func (a *fakeActor) waitRequest(t *testing.T) sentRequest {
	t.Helper()
	select {
	case sent := <-a.ch:
		return sent
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stake request")
		return sentRequest{}
	}
}

func (a *fakeActor) assertNoRequest(t *testing.T) {
	t.Helper()
	select {
	case sent := <-a.ch:
		t.Fatalf("unexpected stake request: %+v", sent.req)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRestakeSuccessIsTerminal(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)
	rig.depositAndStake(t, alice, 1_000_000)

	sent := rig.actor.waitRequest(t)
	require.NotNil(t, sent.sink)
	sent.sink <- StakeResult{ID: sent.req.ID}

	rig.actor.assertNoRequest(t)
}

func TestFailedRestakeCompensation(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)
	rig.depositAndStake(t, alice, 1_000_000)

	sent := rig.actor.waitRequest(t)
	assert.Equal(t, big.NewInt(2_000_000), sent.req.Amount)

	// the validator rejected the declared stake while funds are still
	// locked: the remediation is a full unstake request
	sent.sink <- StakeResult{ID: sent.req.ID, Err: errors.New("stake below network minimum")}

	corrective := rig.actor.waitRequest(t)
	assert.Equal(t, int64(0), corrective.req.Amount.Int64())
	assert.Nil(t, corrective.sink, "remediation is best effort, not retried")

	// the ledger keeps its committed view regardless
	assert.Equal(t, big.NewInt(1_000_000), rig.stakedBalance(t, alice))
}

func TestFailedRestakeNothingLocked(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)
	rig.depositAndStake(t, alice, 1_000_000)

	sent := rig.actor.waitRequest(t)

	rig.env.setLocked(0)
	sent.sink <- StakeResult{ID: sent.req.ID, Err: errors.New("stake action failed")}

	rig.actor.assertNoRequest(t)
}

func TestUnknownResultIgnored(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)
	rig.depositAndStake(t, alice, 1_000_000)

	sent := rig.actor.waitRequest(t)
	sent.sink <- StakeResult{ID: sent.req.ID + 1000, Err: errors.New("bogus")}

	rig.actor.assertNoRequest(t)
}

func TestDepositAndWithdrawDeclareFoldedRewards(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)
	rig.depositAndStake(t, alice, 1_000_000)

	sent := rig.actor.waitRequest(t)
	sent.sink <- StakeResult{ID: sent.req.ID}

	// same epoch: the reward pass is a no-op and a deposit declares nothing
	rig.deposit(t, bob, 100)
	rig.actor.assertNoRequest(t)

	// first call of a new reward epoch: the grown total must reach the
	// validator even though the call is a plain deposit
	rig.env.advanceEpoch(1)
	rig.env.addLocked(20)
	rig.deposit(t, bob, 100)

	sent = rig.actor.waitRequest(t)
	assert.Equal(t, big.NewInt(2_000_020), sent.req.Amount)
	require.NotNil(t, sent.sink)
	sent.sink <- StakeResult{ID: sent.req.ID}

	// same for a withdrawal
	rig.env.advanceEpoch(1)
	rig.env.addLocked(20)
	require.NoError(t, rig.pool.Withdraw(bob, big.NewInt(100)))

	sent = rig.actor.waitRequest(t)
	assert.Equal(t, big.NewInt(2_000_040), sent.req.Amount)
}

func TestRequestIDsAreUnique(t *testing.T) {
	rig := newTestRig(t, Fraction{Denominator: 1}, 1_000_000)

	rig.depositAndStake(t, alice, 500_000)
	first := rig.actor.waitRequest(t)
	rig.depositAndStake(t, bob, 500_000)
	second := rig.actor.waitRequest(t)

	assert.NotEqual(t, first.req.ID, second.req.ID)
}
