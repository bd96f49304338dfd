// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
)

// restake issues the external stake action declaring the current total
// staked balance. It runs after the ledger commit, so a failing action never
// leaves the ledger half-updated. While paused the declared stake is forced
// to zero and no result is requested.
func (p *Pool) restake(s *State) {
	if s.Paused {
		p.host.Stake.SetStake(StakeRequest{
			ID:     p.newRequestID(),
			Amount: new(big.Int),
			Key:    s.StakePublicKey,
		}, nil)
		return
	}

	req := StakeRequest{
		ID:     p.newRequestID(),
		Amount: new(big.Int).Set(s.TotalStakedBalance),
		Key:    s.StakePublicKey,
	}

	p.pendingMu.Lock()
	p.pending[req.ID] = req
	p.pendingMu.Unlock()

	logger.Debug("restaking", "id", req.ID, "amount", req.Amount)
	p.host.Stake.SetStake(req, p.results)
}

func (p *Pool) newRequestID() uint64 {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	p.nextReqID++
	return p.nextReqID
}

// dispatchLoop consumes stake-action results. It is the only consumer of the
// result channel, so compensation decisions are never made by an external
// caller.
func (p *Pool) dispatchLoop() {
	for {
		select {
		case r := <-p.results:
			p.onStakeResult(r)
		case <-p.stop:
			return
		}
	}
}

// onStakeResult resolves one pending stake request. On failure with stake
// still locked at the validator the compensation is a full unstake request,
// which keeps the ledger authoritative until a later operation restakes.
func (p *Pool) onStakeResult(r StakeResult) {
	p.pendingMu.Lock()
	req, ok := p.pending[r.ID]
	delete(p.pending, r.ID)
	p.pendingMu.Unlock()

	if !ok {
		logger.Warn("result for unknown stake request", "id", r.ID)
		return
	}

	if r.Err == nil {
		metricStakeActionCount().AddWithLabel(1, map[string]string{"result": "ok"})
		logger.Debug("stake action succeeded", "id", r.ID, "amount", req.Amount)
		return
	}

	metricStakeActionCount().AddWithLabel(1, map[string]string{"result": "failed"})
	logger.Warn("stake action failed", "id", r.ID, "amount", req.Amount, "err", r.Err)

	if p.host.Env.LockedBalance().Sign() > 0 {
		logger.Warn("unstaking everything due to failed stake action")
		p.host.Stake.SetStake(StakeRequest{
			ID:     p.newRequestID(),
			Amount: new(big.Int),
			Key:    req.Key,
		}, nil)
	}
}
