// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads the pool's genesis configuration and seeds a fresh
// store with it.
package genesis

import (
	"io"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakepool/stakepool/kv"
	"github.com/stakepool/stakepool/pool"
	"github.com/stakepool/stakepool/stake"
)

// Config is the genesis file. Balances are decimal strings since they may
// exceed 64 bits.
type Config struct {
	Owner          string `yaml:"owner"`
	StakePublicKey string `yaml:"stakePublicKey"`
	RewardFee      struct {
		Numerator   uint64 `yaml:"numerator"`
		Denominator uint64 `yaml:"denominator"`
	} `yaml:"rewardFee"`
	GuaranteeFund string `yaml:"guaranteeFund"`
	EpochHeight   uint64 `yaml:"epochHeight"`
}

// Load decodes a genesis config. Unknown fields are rejected to catch typos.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, errors.WithMessage(err, "decode genesis config")
	}
	return &c, nil
}

// LoadFile decodes a genesis config from a file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessage(err, "open genesis config")
	}
	defer f.Close()
	return Load(f)
}

// Params parses and validates the config into seed parameters.
func (c *Config) Params() (pool.InitParams, error) {
	var params pool.InitParams

	owner, err := stake.ParseAddress(c.Owner)
	if err != nil {
		return params, errors.WithMessage(err, "owner")
	}
	key, err := stake.ParsePublicKey(c.StakePublicKey)
	if err != nil {
		return params, errors.WithMessage(err, "stakePublicKey")
	}
	fund, ok := new(big.Int).SetString(c.GuaranteeFund, 10)
	if !ok {
		return params, errors.Errorf("guaranteeFund: invalid decimal %q", c.GuaranteeFund)
	}
	if fund.Sign() <= 0 {
		return params, errors.New("guaranteeFund: must be positive")
	}
	fee := pool.Fraction{
		Numerator:   c.RewardFee.Numerator,
		Denominator: c.RewardFee.Denominator,
	}
	if err := fee.Validate(); err != nil {
		return params, errors.WithMessage(err, "rewardFee")
	}

	params.Owner = owner
	params.StakePublicKey = key
	params.RewardFee = fee
	params.GuaranteeFund = fund
	params.EpochHeight = c.EpochHeight
	return params, nil
}

// Build seeds the store. Building over an already seeded store fails with
// pool.ErrAlreadyInitialized.
func Build(store kv.Store, c *Config) error {
	params, err := c.Params()
	if err != nil {
		return err
	}
	return pool.Initialize(store, params)
}
