// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements share-based delegation accounting with epoch
// reward distribution, an owner fee and a delayed-withdrawal unstake path.
package pool

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"github.com/stakepool/stakepool/co"
	"github.com/stakepool/stakepool/kv"
	"github.com/stakepool/stakepool/stake"
)

// Pool is the delegation ledger plus the orchestration around the external
// stake action. All entry points serialize on one mutex: every mutation runs
// a reward pass first, applies its changes, commits them in a single batch
// and only then, if needed, issues the restake action.
type Pool struct {
	repo *repository
	host Host

	mu sync.Mutex

	pendingMu sync.Mutex
	pending   map[uint64]StakeRequest
	nextReqID uint64

	results chan StakeResult
	stop    chan struct{}
	goes    co.Goes
}

// New opens the pool over the given store. The store must have been seeded
// by genesis, otherwise ErrNotInitialized is returned.
func New(store kv.Store, host Host) (*Pool, error) {
	repo := newRepository(store)
	state, err := repo.LoadState()
	if err != nil {
		return nil, err
	}

	p := &Pool{
		repo:    repo,
		host:    host,
		pending: make(map[uint64]StakeRequest),
		results: make(chan StakeResult, 16),
		stop:    make(chan struct{}),
	}
	p.goes.Go(p.dispatchLoop)

	logger.Info("pool opened",
		"owner", state.Owner,
		"totalStaked", state.TotalStakedBalance,
		"totalShares", state.TotalStakeShares,
		"paused", state.Paused)
	return p, nil
}

// Close stops the stake-result dispatcher. Results delivered afterwards are
// dropped.
func (p *Pool) Close() {
	close(p.stop)
	p.goes.Wait()
}

// Deposit moves the attached amount into the caller's unstaked balance. A
// restake follows only when the preceding reward pass folded a new epoch.
func (p *Pool) Deposit(caller stake.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, pinged, err := p.beginLedger(amount)
	if err != nil {
		return err
	}
	if err := p.deposit(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "deposit"); err != nil {
		return err
	}
	if pinged {
		p.restake(l.state)
	}
	return nil
}

// DepositAndStake deposits the attached amount and immediately stakes it.
func (p *Pool) DepositAndStake(caller stake.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginLedger(amount)
	if err != nil {
		return err
	}
	if err := p.deposit(l, caller, amount); err != nil {
		return err
	}
	if err := p.stake(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "depositAndStake"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// Withdraw moves amount from the caller's unstaked balance out of the pool.
// The unstake delay must have passed. The transfer is issued after the
// ledger is committed and is not subject to failure compensation.
func (p *Pool) Withdraw(caller stake.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, pinged, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	if err := p.withdraw(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "withdraw"); err != nil {
		return err
	}
	if pinged {
		p.restake(l.state)
	}
	p.host.Transfer.Transfer(caller, amount)
	return nil
}

// WithdrawAll withdraws the caller's entire unstaked balance.
func (p *Pool) WithdrawAll(caller stake.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, pinged, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}
	amount := new(big.Int).Set(acc.Unstaked)
	if err := p.withdraw(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "withdraw"); err != nil {
		return err
	}
	if pinged {
		p.restake(l.state)
	}
	p.host.Transfer.Transfer(caller, amount)
	return nil
}

// Stake converts amount from the caller's unstaked balance into stake
// shares.
func (p *Pool) Stake(caller stake.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	if err := p.stake(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "stake"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// StakeAll stakes the caller's entire unstaked balance.
func (p *Pool) StakeAll(caller stake.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}
	amount := new(big.Int).Set(acc.Unstaked)
	if err := p.stake(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "stake"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// Unstake converts stake shares worth amount back into unstaked balance,
// locked for the unstake delay.
func (p *Pool) Unstake(caller stake.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	if err := p.unstake(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "unstake"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// UnstakeAll unstakes the caller's entire staked balance.
func (p *Pool) UnstakeAll(caller stake.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginLedger(nil)
	if err != nil {
		return err
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}
	amount := l.state.StakedBalance(acc)
	if err := p.unstake(l, caller, amount); err != nil {
		return err
	}
	if err := p.finish(l, "unstake"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// Ping forces a reward-accrual pass. A restake follows whenever a new epoch
// was processed.
func (p *Pool) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, err := p.repo.newLedger()
	if err != nil {
		return err
	}
	did, err := p.ping(l, nil)
	if err != nil {
		return err
	}
	if !did {
		return nil
	}
	if err := p.finish(l, "ping"); err != nil {
		return err
	}
	p.restake(l.state)
	return nil
}

// UpdateStakingKey rotates the validator key. Owner only.
func (p *Pool) UpdateStakingKey(caller stake.Address, key stake.PublicKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginOwnerLedger(caller)
	if err != nil {
		return err
	}
	l.state.StakePublicKey = key
	if err := p.finish(l, "updateStakingKey"); err != nil {
		return err
	}
	logger.Info("staking key updated", "key", key)
	p.restake(l.state)
	return nil
}

// UpdateRewardFeeFraction changes the owner's reward cut. Owner only. The
// new fee applies to rewards accrued after this call; the preceding reward
// pass still uses the old fee.
func (p *Pool) UpdateRewardFeeFraction(caller stake.Address, fee Fraction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := fee.Validate(); err != nil {
		return err
	}
	l, pinged, err := p.beginOwnerLedger(caller)
	if err != nil {
		return err
	}
	l.state.RewardFee = fee
	if err := p.finish(l, "updateRewardFee"); err != nil {
		return err
	}
	logger.Info("reward fee updated", "numerator", fee.Numerator, "denominator", fee.Denominator)
	if pinged {
		p.restake(l.state)
	}
	return nil
}

// PauseStaking withdraws the validator stake without touching the ledger.
// Owner only.
func (p *Pool) PauseStaking(caller stake.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginOwnerLedger(caller)
	if err != nil {
		return err
	}
	if l.state.Paused {
		return ErrAlreadyPaused
	}
	l.state.Paused = true
	if err := p.finish(l, "pause"); err != nil {
		return err
	}
	logger.Warn("staking paused")
	p.restake(l.state)
	return nil
}

// ResumeStaking re-declares the validator stake after a pause. Owner only.
func (p *Pool) ResumeStaking(caller stake.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, _, err := p.beginOwnerLedger(caller)
	if err != nil {
		return err
	}
	if !l.state.Paused {
		return ErrNotPaused
	}
	l.state.Paused = false
	if err := p.finish(l, "resume"); err != nil {
		return err
	}
	logger.Info("staking resumed")
	p.restake(l.state)
	return nil
}

// Vote forwards a governance vote to the configured voting contract.
// Owner only, and the pool must be actively staking.
func (p *Pool) Vote(caller stake.Address, isVote bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, err := p.repo.LoadState()
	if err != nil {
		return err
	}
	if caller != state.Owner {
		return ErrUnauthorized
	}
	if state.Paused {
		return ErrStakingPaused
	}
	if p.host.Vote == nil {
		return ErrNoVoter
	}
	countOp("vote")
	return p.host.Vote.Vote(isVote)
}

// beginLedger opens a ledger view and runs the reward pass. attached is the
// deposit accompanying the operation, nil if none. The bool reports whether
// the reward pass did work, so entry points that do not otherwise restake
// still declare a freshly folded reward.
func (p *Pool) beginLedger(attached *big.Int) (*ledger, bool, error) {
	l, err := p.repo.newLedger()
	if err != nil {
		return nil, false, err
	}
	pinged, err := p.ping(l, attached)
	if err != nil {
		return nil, false, err
	}
	return l, pinged, nil
}

// beginOwnerLedger is beginLedger plus an owner check.
func (p *Pool) beginOwnerLedger(caller stake.Address) (*ledger, bool, error) {
	l, pinged, err := p.beginLedger(nil)
	if err != nil {
		return nil, false, err
	}
	if caller != l.state.Owner {
		return nil, false, ErrUnauthorized
	}
	return l, pinged, nil
}

// finish commits the ledger and records the operation.
func (p *Pool) finish(l *ledger, op string) error {
	if err := l.commit(); err != nil {
		return errors.WithMessage(err, op)
	}
	countOp(op)
	updateGauges(l.state)
	return nil
}

func (p *Pool) deposit(l *ledger, caller stake.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}
	acc.Unstaked = new(big.Int).Add(acc.Unstaked, amount)
	// deposits grow the pool account balance without being reward
	l.state.LastTotalBalance = new(big.Int).Add(l.state.LastTotalBalance, amount)

	logger.Debug("deposited", "account", caller, "amount", amount, "unstaked", acc.Unstaked)
	return nil
}

func (p *Pool) withdraw(l *ledger, caller stake.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}
	if acc.Unstaked.Cmp(amount) < 0 {
		return ErrNotEnoughUnstaked
	}
	if acc.UnstakedAvailableEpoch > p.host.Env.EpochHeight() {
		return ErrWithdrawLocked
	}
	acc.Unstaked = new(big.Int).Sub(acc.Unstaked, amount)
	l.state.LastTotalBalance = new(big.Int).Sub(l.state.LastTotalBalance, amount)

	logger.Debug("withdrawing", "account", caller, "amount", amount, "unstaked", acc.Unstaked)
	return nil
}

func (p *Pool) stake(l *ledger, caller stake.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}

	shares, err := l.state.sharesFromStakedAmountRoundDown(amount)
	if err != nil {
		return err
	}
	if shares.Sign() == 0 {
		return ErrStakeTooSmall
	}
	// the charge is what the minted shares are actually worth, never more
	// than the requested amount
	charge, err := l.state.stakedAmountFromSharesRoundDown(shares)
	if err != nil {
		return err
	}
	if acc.Unstaked.Cmp(charge) < 0 {
		return ErrNotEnoughUnstaked
	}

	acc.Unstaked = new(big.Int).Sub(acc.Unstaked, charge)
	acc.StakeShares = new(big.Int).Add(acc.StakeShares, shares)

	// the pool total grows by the rounded-up value so the share price
	// cannot decrease
	stakeAmount, err := l.state.stakedAmountFromSharesRoundUp(shares)
	if err != nil {
		return err
	}
	l.state.TotalStakedBalance = new(big.Int).Add(l.state.TotalStakedBalance, stakeAmount)
	l.state.TotalStakeShares = new(big.Int).Add(l.state.TotalStakeShares, shares)

	logger.Debug("staked", "account", caller, "charge", charge, "shares", shares)
	return nil
}

func (p *Pool) unstake(l *ledger, caller stake.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	if l.state.TotalStakedBalance.Sign() == 0 {
		return ErrNoStakedBalance
	}
	acc, err := l.account(caller)
	if err != nil {
		return err
	}

	shares, err := l.state.sharesFromStakedAmountRoundUp(amount)
	if err != nil {
		return err
	}
	if acc.StakeShares.Cmp(shares) < 0 {
		return ErrNotEnoughStaked
	}

	// the account receives the rounded-up value of the spent shares while
	// the pool total drops by the rounded-down value, keeping the share
	// price from decreasing
	receive, err := l.state.stakedAmountFromSharesRoundUp(shares)
	if err != nil {
		return err
	}
	remove, err := l.state.stakedAmountFromSharesRoundDown(shares)
	if err != nil {
		return err
	}

	acc.StakeShares = new(big.Int).Sub(acc.StakeShares, shares)
	acc.Unstaked = new(big.Int).Add(acc.Unstaked, receive)
	acc.UnstakedAvailableEpoch = p.host.Env.EpochHeight() + stake.UnstakeDelayEpochs

	l.state.TotalStakedBalance = new(big.Int).Sub(l.state.TotalStakedBalance, remove)
	l.state.TotalStakeShares = new(big.Int).Sub(l.state.TotalStakeShares, shares)

	logger.Debug("unstaked", "account", caller, "amount", receive, "shares", shares,
		"availableEpoch", acc.UnstakedAvailableEpoch)
	return nil
}
