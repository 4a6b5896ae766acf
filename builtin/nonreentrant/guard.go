// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nonreentrant provides a contract wide mutex kept in contract storage.
// Because the flag is state, a reverted call also releases it.
package nonreentrant

import (
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/thor"
)

var slotEntered = thor.BytesToBytes32([]byte("nonreentrant.entered"))

type Guard struct {
	entered *solidity.Uint64
}

func New(ctx *solidity.Context) *Guard {
	return &Guard{entered: solidity.NewUint64(ctx, slotEntered)}
}

// Entered reports whether a guarded call is in progress.
func (g *Guard) Entered() (bool, error) {
	v, err := g.entered.Get()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Run executes fn holding the guard. A nested Run fails with ErrReentrantCall.
func (g *Guard) Run(fn func() error) error {
	entered, err := g.Entered()
	if err != nil {
		return err
	}
	if entered {
		return reverts.ErrReentrantCall
	}
	g.entered.Set(1)
	defer g.entered.Set(0)

	return fn()
}
