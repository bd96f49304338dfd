// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solo provides a self-contained simulated validator host for
// development and testing. It drives an epoch clock, credits rewards on the
// locked balance, resolves stake actions asynchronously and settles native
// transfers, implementing every host interface the engine consumes.
package solo

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/stakepool/stakepool/co"
	"github.com/stakepool/stakepool/log"
	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/stake"
)

var logger = log.WithContext("pkg", "solo")

// Options tune the simulated host.
type Options struct {
	// EpochInterval is the wall-clock length of one epoch.
	EpochInterval time.Duration
	// RewardNumerator/RewardDenominator set the per-epoch reward as a
	// fraction of the locked balance. A zero numerator credits nothing.
	RewardNumerator   uint64
	RewardDenominator uint64
	// MinStake makes positive stake requests below it fail, exercising
	// the engine's compensation path. Nil disables the failure mode.
	MinStake *big.Int
	// StakeLatency delays stake-action resolution.
	StakeLatency time.Duration
}

// Solo is the simulated host. The zero balances start empty; genesis funds
// arrive via Attach or an initial SetStake.
type Solo struct {
	opts Options

	mu     sync.Mutex
	epoch  uint64
	locked *big.Int
	liquid *big.Int

	goes co.Goes
	// closed when Run winds down, releasing stake goroutines whose result
	// nobody consumes anymore
	done chan struct{}
}

func New(opts Options) *Solo {
	if opts.EpochInterval <= 0 {
		opts.EpochInterval = 10 * time.Second
	}
	if opts.RewardDenominator == 0 {
		opts.RewardDenominator = 1
	}
	return &Solo{
		opts:   opts,
		locked: new(big.Int),
		liquid: new(big.Int),
		done:   make(chan struct{}),
	}
}

// Host bundles the solo host for the engine.
func (s *Solo) Host() pool.Host {
	return pool.Host{
		Env:      s,
		Stake:    s,
		Transfer: s,
		Vote:     s,
	}
}

func (s *Solo) EpochHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Solo) AccountBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.liquid)
}

func (s *Solo) LockedBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.locked)
}

// Attach credits a deposit to the pool's liquid balance, standing in for the
// value attached to a call.
func (s *Solo) Attach(amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liquid.Add(s.liquid, amount)
}

// Detach refunds an attached deposit whose call was rejected, restoring the
// liquid balance to its pre-call value.
func (s *Solo) Detach(amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liquid.Sub(s.liquid, amount)
}

// Transfer settles a withdrawal by debiting the liquid balance.
func (s *Solo) Transfer(to stake.Address, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liquid.Sub(s.liquid, amount)
	logger.Info("transferred", "to", to, "amount", amount)
}

// Vote records a governance vote.
func (s *Solo) Vote(isVote bool) error {
	logger.Info("vote forwarded", "isVote", isVote)
	return nil
}

// SetStake resolves the request asynchronously: the locked balance is moved
// to the requested amount, the difference settling against the liquid
// balance. Requests below MinStake or beyond the available balance fail.
func (s *Solo) SetStake(req pool.StakeRequest, sink chan<- pool.StakeResult) {
	s.goes.Go(func() {
		if s.opts.StakeLatency > 0 {
			time.Sleep(s.opts.StakeLatency)
		}
		err := s.applyStake(req.Amount)
		if err != nil {
			logger.Warn("stake action rejected", "id", req.ID, "amount", req.Amount, "err", err)
		} else {
			logger.Debug("stake action applied", "id", req.ID, "amount", req.Amount)
		}
		if sink != nil {
			select {
			case sink <- pool.StakeResult{ID: req.ID, Err: err}:
			case <-s.done:
			}
		}
	})
}

func (s *Solo) applyStake(amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.MinStake != nil && amount.Sign() > 0 && amount.Cmp(s.opts.MinStake) < 0 {
		return errors.Errorf("stake %s below network minimum %s", amount, s.opts.MinStake)
	}
	total := new(big.Int).Add(s.locked, s.liquid)
	if amount.Cmp(total) > 0 {
		return errors.Errorf("stake %s exceeds account balance %s", amount, total)
	}
	s.liquid = total.Sub(total, amount)
	s.locked = new(big.Int).Set(amount)
	return nil
}

// Run drives the epoch clock until the context is cancelled. Each epoch the
// locked balance earns the configured reward and the engine is pinged so
// rewards fold in without waiting for user traffic.
func (s *Solo) Run(ctx context.Context, engine *pool.Pool) {
	logger.Info("solo host started",
		"epochInterval", s.opts.EpochInterval,
		"rewardNumerator", s.opts.RewardNumerator,
		"rewardDenominator", s.opts.RewardDenominator)

	ticker := time.NewTicker(s.opts.EpochInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(s.done)
			s.goes.Wait()
			return
		case <-ticker.C:
			s.advanceEpoch()
			if err := engine.Ping(); err != nil {
				logger.Error("ping failed", "err", err)
			}
		}
	}
}

func (s *Solo) advanceEpoch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	if s.opts.RewardNumerator > 0 && s.locked.Sign() > 0 {
		reward := new(big.Int).Mul(s.locked, new(big.Int).SetUint64(s.opts.RewardNumerator))
		reward.Div(reward, new(big.Int).SetUint64(s.opts.RewardDenominator))
		s.locked.Add(s.locked, reward)
		logger.Debug("epoch advanced", "epoch", s.epoch, "reward", reward)
	} else {
		logger.Debug("epoch advanced", "epoch", s.epoch)
	}
}

// AdvanceEpoch advances the clock by hand, for tests and on-demand use.
func (s *Solo) AdvanceEpoch() {
	s.advanceEpoch()
}
