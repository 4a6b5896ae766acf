// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package option

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

// Settlement pays out of the contract. Callers must have written every
// state change of the operation before calling into it.
type Settlement struct {
	self     thor.Address
	state    *state.State
	staking  StakingAdapter
	notifier Notifier
}

func NewSettlement(self thor.Address, state *state.State, staking StakingAdapter, notifier Notifier) *Settlement {
	return &Settlement{
		self:     self,
		state:    state,
		staking:  staking,
		notifier: notifier,
	}
}

// StakedBalance returns the live staked-asset balance held by the contract.
func (s *Settlement) StakedBalance() (*big.Int, error) {
	return s.staking.BalanceOf(s.self)
}

// Allocation returns the share of the staked balance owed to one of open
// unsettled options. The last open option takes whatever is left.
func (s *Settlement) Allocation(open uint64) (*big.Int, error) {
	balance, err := s.StakedBalance()
	if err != nil {
		return nil, err
	}
	if open <= 1 {
		return balance, nil
	}
	return balance.Div(balance, new(big.Int).SetUint64(open)), nil
}

// TransferOut sends amount of staked asset to recipient.
func (s *Settlement) TransferOut(recipient thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	ok, err := s.staking.Transfer(s.self, recipient, amount)
	if err != nil {
		return errors.Wrap(reverts.ErrTransferFailed, err.Error())
	}
	if !ok {
		return reverts.ErrTransferFailed
	}
	return s.notify(recipient, s.staking.Address(), amount)
}

// Pay sends amount of native asset to recipient.
func (s *Settlement) Pay(recipient thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	ok, err := s.state.Transfer(s.self, recipient, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrInsufficientFunds
	}
	return s.notify(recipient, thor.Address{}, amount)
}

func (s *Settlement) notify(recipient, token thor.Address, amount *big.Int) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.NotifyReceived(recipient, token, amount); err != nil {
		return errors.Wrap(reverts.ErrTransferFailed, err.Error())
	}
	return nil
}
