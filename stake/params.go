// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake defines the base types and constants shared across the pool engine.
package stake

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	// UnstakeDelayEpochs is the number of epochs an unstaked balance stays locked
	// before it becomes withdrawable. It exceeds the network unbonding period by
	// one epoch to tolerate the stake action arriving an epoch later than the
	// ledger update.
	UnstakeDelayEpochs uint64 = 4

	// PublicKeyLength length of an ed25519 staking public key in bytes.
	PublicKeyLength = 32
)

// PublicKey is the validator staking key the pool stakes with.
type PublicKey [PublicKeyLength]byte

// String implements the stringer interface.
func (p PublicKey) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

// Bytes returns byte slice form of the key.
func (p PublicKey) Bytes() []byte {
	return p[:]
}

// IsZero returns true if the key is all zero bytes.
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePublicKey converts a string presented key into PublicKey type.
func ParsePublicKey(s string) (PublicKey, error) {
	if len(s) == PublicKeyLength*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return PublicKey{}, errors.New("invalid prefix")
		}
		s = s[2:]
	} else if len(s) != PublicKeyLength*2 {
		return PublicKey{}, errors.New("invalid length")
	}

	var key PublicKey
	if _, err := hex.Decode(key[:], []byte(s)); err != nil {
		return PublicKey{}, err
	}
	return key, nil
}
