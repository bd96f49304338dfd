// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testpool builds a fully wired in-memory pool over a solo host, for
// tests that want the whole stack rather than hand-rolled fakes.
package testpool

import (
	"math/big"

	"github.com/stakepool/stakepool/lvldb"
	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/solo"
	"github.com/stakepool/stakepool/stake"
)

// DefaultOwner is the owner of every test pool.
var DefaultOwner = stake.BytesToAddress([]byte("test-owner"))

// DefaultKey is the staking key of every test pool.
var DefaultKey = stake.PublicKey{0x42}

// DefaultGuaranteeFund backs the initial shares.
var DefaultGuaranteeFund = big.NewInt(1_000_000)

// Pool bundles the engine with its simulated host and backing store.
type Pool struct {
	Engine *pool.Pool
	Host   *solo.Solo
	DB     *lvldb.LevelDB
}

// New builds a pool over an in-memory store seeded with the default owner,
// key and guarantee fund. The guarantee fund starts in the host's liquid
// balance so the host total matches the ledger checkpoint.
func New(fee pool.Fraction, soloOpts solo.Options) (*Pool, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}

	if err := pool.Initialize(db, pool.InitParams{
		Owner:          DefaultOwner,
		StakePublicKey: DefaultKey,
		RewardFee:      fee,
		GuaranteeFund:  DefaultGuaranteeFund,
	}); err != nil {
		db.Close()
		return nil, err
	}

	host := solo.New(soloOpts)
	host.Attach(DefaultGuaranteeFund)

	engine, err := pool.New(db, host.Host())
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Pool{
		Engine: engine,
		Host:   host,
		DB:     db,
	}, nil
}

// Close releases the engine and the store.
func (p *Pool) Close() {
	p.Engine.Close()
	p.DB.Close()
}

// Deposit attaches the amount to the host account and deposits it for the
// caller. A rejected deposit is detached again, like a host refunding the
// value of a failed call.
func (p *Pool) Deposit(caller stake.Address, amount *big.Int) error {
	p.Host.Attach(amount)
	if err := p.Engine.Deposit(caller, amount); err != nil {
		p.Host.Detach(amount)
		return err
	}
	return nil
}

// DepositAndStake attaches the amount and immediately stakes it, detaching
// again on rejection.
func (p *Pool) DepositAndStake(caller stake.Address, amount *big.Int) error {
	p.Host.Attach(amount)
	if err := p.Engine.DepositAndStake(caller, amount); err != nil {
		p.Host.Detach(amount)
		return err
	}
	return nil
}
