// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements a share based liquid staking pool.
//
// Deposits mint shares against the pooled amount. The operator reports
// rewards with Accrue, which raises the pooled amount without minting
// shares, so every holder's redeemable balance grows in proportion.
package staking

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

var (
	slotOperator    = thor.BytesToBytes32([]byte("staking.operator"))
	slotTotalShares = thor.BytesToBytes32([]byte("staking.totalShares"))
	slotTotalPooled = thor.BytesToBytes32([]byte("staking.totalPooled"))
	slotShares      = thor.BytesToBytes32([]byte("staking.shares"))

	errOverflow = errors.New("staking: arithmetic overflow")

	logger = log.WithContext("pkg", "staking")
)

// Staking binder of the staking pool contract.
type Staking struct {
	addr        thor.Address
	state       *state.State
	operator    *solidity.Address
	totalShares *solidity.Uint256
	totalPooled *solidity.Uint256
	shares      *solidity.Mapping[thor.Address, *big.Int]
}

func New(addr thor.Address, state *state.State) *Staking {
	ctx := solidity.NewContext(addr, state)
	return &Staking{
		addr:        addr,
		state:       state,
		operator:    solidity.NewAddress(ctx, slotOperator),
		totalShares: solidity.NewUint256(ctx, slotTotalShares),
		totalPooled: solidity.NewUint256(ctx, slotTotalPooled),
		shares:      solidity.NewMapping[thor.Address, *big.Int](ctx, slotShares),
	}
}

// Address returns the pool address, which is also the staked-asset token address.
func (s *Staking) Address() thor.Address {
	return s.addr
}

// Init sets the operator allowed to report rewards.
func (s *Staking) Init(operator thor.Address) error {
	if operator.IsZero() {
		return reverts.ErrInvalidConfiguration
	}
	s.operator.Set(&operator)
	return nil
}

func (s *Staking) Operator() (thor.Address, error) {
	return s.operator.Get()
}

func (s *Staking) TotalShares() (*big.Int, error) {
	return s.totalShares.Get()
}

func (s *Staking) TotalPooled() (*big.Int, error) {
	return s.totalPooled.Get()
}

func (s *Staking) SharesOf(addr thor.Address) (*big.Int, error) {
	return s.shares.Get(addr)
}

// Submit mints shares to holder for amount that has already been credited
// to the pool balance. It returns the number of shares minted.
func (s *Staking) Submit(holder thor.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	totalShares, totalPooled, err := s.totals()
	if err != nil {
		return nil, err
	}

	var minted *uint256.Int
	amt, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, errOverflow
	}
	if totalShares.IsZero() || totalPooled.IsZero() {
		minted = amt
	} else {
		if minted, overflow = new(uint256.Int).MulDivOverflow(amt, totalShares, totalPooled); overflow {
			return nil, errOverflow
		}
	}
	if minted.IsZero() {
		return nil, reverts.ErrZeroAmount
	}

	held, err := s.shares.Get(holder)
	if err != nil {
		return nil, err
	}
	if err := s.shares.Set(holder, held.Add(held, minted.ToBig())); err != nil {
		return nil, err
	}
	if err := s.totalShares.Add(minted.ToBig()); err != nil {
		return nil, err
	}
	if err := s.totalPooled.Add(amount); err != nil {
		return nil, err
	}
	logger.Debug("submitted", "holder", holder, "amount", amount, "shares", minted)
	return minted.ToBig(), nil
}

// Deposit moves amount of native asset from depositor into the pool and
// mints the matching shares to depositor.
func (s *Staking) Deposit(depositor thor.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.ErrZeroAmount
	}
	ok, err := s.state.Transfer(depositor, s.addr, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reverts.ErrInsufficientFunds
	}
	return s.Submit(depositor, amount)
}

// Accrue adds rewards to the pool. Only the operator may call it.
func (s *Staking) Accrue(caller thor.Address, amount *big.Int) error {
	operator, err := s.operator.Get()
	if err != nil {
		return err
	}
	if operator.IsZero() || caller != operator {
		return reverts.ErrUnauthorized
	}
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	totalShares, err := s.totalShares.Get()
	if err != nil {
		return err
	}
	if totalShares.Sign() == 0 {
		// nothing to distribute to
		return reverts.ErrInsufficientFunds
	}
	logger.Debug("accrued", "amount", amount)
	return s.totalPooled.Add(amount)
}

// BalanceOf returns the amount redeemable by addr.
func (s *Staking) BalanceOf(addr thor.Address) (*big.Int, error) {
	held, err := s.shares.Get(addr)
	if err != nil {
		return nil, err
	}
	return s.amountForShares(held)
}

// Transfer moves the shares worth amount from sender to recipient.
// It returns false if the sender's balance is insufficient.
func (s *Staking) Transfer(from, to thor.Address, amount *big.Int) (bool, error) {
	if amount.Sign() < 0 {
		return false, nil
	}
	held, err := s.shares.Get(from)
	if err != nil {
		return false, err
	}
	balance, err := s.amountForShares(held)
	if err != nil {
		return false, err
	}
	switch balance.Cmp(amount) {
	case -1:
		return false, nil
	case 0:
		// whole balance, no rounding dust left behind
		return true, s.moveShares(from, to, held)
	}

	moved, err := s.sharesForAmount(amount)
	if err != nil {
		return false, err
	}
	return true, s.moveShares(from, to, moved)
}

func (s *Staking) moveShares(from, to thor.Address, shares *big.Int) error {
	if shares.Sign() == 0 || from == to {
		return nil
	}
	fromShares, err := s.shares.Get(from)
	if err != nil {
		return err
	}
	toShares, err := s.shares.Get(to)
	if err != nil {
		return err
	}
	if err := s.shares.Set(from, fromShares.Sub(fromShares, shares)); err != nil {
		return err
	}
	return s.shares.Set(to, toShares.Add(toShares, shares))
}

func (s *Staking) totals() (*uint256.Int, *uint256.Int, error) {
	shares, err := s.totalShares.Get()
	if err != nil {
		return nil, nil, err
	}
	pooled, err := s.totalPooled.Get()
	if err != nil {
		return nil, nil, err
	}
	// both are stored in a single slot and always fit
	return uint256.MustFromBig(shares), uint256.MustFromBig(pooled), nil
}

func (s *Staking) amountForShares(shares *big.Int) (*big.Int, error) {
	totalShares, totalPooled, err := s.totals()
	if err != nil {
		return nil, err
	}
	if totalShares.IsZero() || shares.Sign() == 0 {
		return new(big.Int), nil
	}
	sh, overflow := uint256.FromBig(shares)
	if overflow {
		return nil, errOverflow
	}
	amount, overflow := new(uint256.Int).MulDivOverflow(sh, totalPooled, totalShares)
	if overflow {
		return nil, errOverflow
	}
	return amount.ToBig(), nil
}

// sharesForAmount rounds up so that the recipient never receives less than amount.
func (s *Staking) sharesForAmount(amount *big.Int) (*big.Int, error) {
	totalShares, totalPooled, err := s.totals()
	if err != nil {
		return nil, err
	}
	if totalPooled.IsZero() {
		return new(big.Int), nil
	}
	amt, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, errOverflow
	}
	shares, overflow := new(uint256.Int).MulDivOverflow(amt, totalShares, totalPooled)
	if overflow {
		return nil, errOverflow
	}
	if !new(uint256.Int).MulMod(amt, totalShares, totalPooled).IsZero() {
		shares.AddUint64(shares, 1)
	}
	return shares.ToBig(), nil
}
