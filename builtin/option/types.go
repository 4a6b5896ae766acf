// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package option

import (
	"math/big"

	"github.com/vechain/stakedcall/builtin/oracle"
	"github.com/vechain/stakedcall/thor"
)

// Option is a purchased call. Buyer, Premium, StrikePrice and Expiration
// never change after creation. Exercised and Cancelled are set at most
// once and never both.
type Option struct {
	ID          uint64
	Buyer       thor.Address
	Premium     *big.Int
	StrikePrice *big.Int
	Expiration  uint64
	Exercised   bool
	Cancelled   bool
}

// Settled returns whether the collateral of the option has been paid out.
func (o *Option) Settled() bool {
	return o.Exercised || o.Cancelled
}

// Status returns the lifecycle state of the option at time now.
func (o *Option) Status(now uint64) Status {
	switch {
	case o.Exercised:
		return StatusExercised
	case o.Cancelled:
		return StatusCancelled
	case now > o.Expiration:
		return StatusExpired
	default:
		return StatusActive
	}
}

type Status uint8

const (
	StatusActive Status = iota
	StatusExercised
	StatusCancelled
	// StatusExpired is an unexercised option past expiration, waiting to be cancelled.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExercised:
		return "exercised"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// Terms fixes the only instrument offered in single mode.
type Terms struct {
	Strike   *big.Int
	Premium  *big.Int
	Duration uint64
}

// StakingAdapter is the staking protocol as seen by the option contract.
type StakingAdapter interface {
	// Address is the staked-asset token address.
	Address() thor.Address
	// Deposit stakes amount of native asset owned by from and returns the shares minted.
	Deposit(from thor.Address, amount *big.Int) (*big.Int, error)
	// BalanceOf returns the staked-asset amount redeemable by addr.
	BalanceOf(addr thor.Address) (*big.Int, error)
	// Transfer moves amount of staked asset. It returns false on insufficient balance.
	Transfer(from, to thor.Address, amount *big.Int) (bool, error)
}

// PriceFeed is the price oracle as seen by the option contract.
type PriceFeed interface {
	LatestRoundData() (*oracle.Round, error)
}

// Notifier is told about every payment the contract makes. Implementations
// may call back into the contract.
type Notifier interface {
	NotifyReceived(recipient, token thor.Address, amount *big.Int) error
}

type idKey uint64

func (k idKey) Bytes() []byte {
	return new(big.Int).SetUint64(uint64(k)).Bytes()
}
