// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"

	"github.com/vechain/stakedcall/abi"
	"github.com/vechain/stakedcall/builtin/gen"
	"github.com/vechain/stakedcall/thor"
)

type contract struct {
	name    string
	Address thor.Address
	ABI     *abi.ABI
}

func mustLoadContract(name string, addr thor.Address) *contract {
	abi, err := abi.New(gen.MustABI(name))
	if err != nil {
		panic(fmt.Errorf("load ABI for '%s': %w", name, err))
	}

	return &contract{
		name,
		addr,
		abi,
	}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}

func (c *contract) event(name string) *abi.Event {
	ev, found := c.ABI.EventByName(name)
	if !found {
		panic(fmt.Errorf("event %s not found in %s", name, c.name))
	}
	return ev
}
