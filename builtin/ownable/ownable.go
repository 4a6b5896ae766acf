// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/thor"
)

var slotOwner = thor.BytesToBytes32([]byte("ownable.owner"))

// Ownable keeps the single privileged account of a contract.
type Ownable struct {
	owner *solidity.Address
}

func New(ctx *solidity.Context) *Ownable {
	return &Ownable{owner: solidity.NewAddress(ctx, slotOwner)}
}

// Init sets the first owner. The owner must be non-zero.
func (o *Ownable) Init(owner thor.Address) error {
	if owner.IsZero() {
		return reverts.ErrInvalidConfiguration
	}
	o.owner.Set(&owner)
	return nil
}

func (o *Ownable) Owner() (thor.Address, error) {
	return o.owner.Get()
}

// RequireOwner returns ErrUnauthorized unless caller is the owner.
func (o *Ownable) RequireOwner(caller thor.Address) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != caller {
		return reverts.ErrUnauthorized
	}
	return nil
}

// TransferOwnership hands the contract over to next and returns the previous owner.
func (o *Ownable) TransferOwnership(caller, next thor.Address) (thor.Address, error) {
	if err := o.RequireOwner(caller); err != nil {
		return thor.Address{}, err
	}
	if next.IsZero() {
		return thor.Address{}, reverts.ErrInvalidConfiguration
	}
	o.owner.Set(&next)
	return caller, nil
}
