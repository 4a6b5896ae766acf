// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/thor"
)

// Uint256 is a wrapper for storage and retrieval of an uint256.
// Negative values and values wider than 256 bits are rejected on Set.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, pos thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("uint256: negative value")
	}
	if value.BitLen() > 256 {
		return errors.New("uint256: overflow")
	}
	u.context.state.SetStorage(u.context.address, u.pos, thor.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Add(storage, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Sub(storage, value))
}

// Uint64 stores a counter in a single slot.
type Uint64 struct {
	inner Uint256
}

func NewUint64(context *Context, pos thor.Bytes32) *Uint64 {
	return &Uint64{inner: Uint256{context: context, pos: pos}}
}

func (u *Uint64) Get() (uint64, error) {
	v, err := u.inner.Get()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.New("uint64: stored value overflows")
	}
	return v.Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	// a uint64 always fits
	_ = u.inner.Set(new(big.Int).SetUint64(value))
}
