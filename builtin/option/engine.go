// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package option implements a European call on a staked position.
//
// The buyer of an option may claim the contract's staked-asset balance
// while the option is live and the oracle price is at or above the strike.
// After expiration the owner may reclaim the collateral of an unexercised
// option. Every mutating operation writes its state before any payment
// and runs under a contract wide reentrancy guard. A failed operation leaves
// no state change behind.
package option

import (
	"math/big"

	"github.com/vechain/stakedcall/builtin/nonreentrant"
	"github.com/vechain/stakedcall/builtin/ownable"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

var (
	slotTotalShares = thor.BytesToBytes32([]byte("option.totalShares"))

	logger = log.WithContext("pkg", "option")
)

// Engine binder of the option contract.
type Engine struct {
	addr        thor.Address
	state       *state.State
	registry    *Registry
	settlement  *Settlement
	ownable     *ownable.Ownable
	guard       *nonreentrant.Guard
	totalShares *solidity.Uint256
	staking     StakingAdapter
	feed        PriceFeed
}

func New(addr thor.Address, state *state.State, staking StakingAdapter, feed PriceFeed, notifier Notifier) *Engine {
	ctx := solidity.NewContext(addr, state)
	return &Engine{
		addr:        addr,
		state:       state,
		registry:    NewRegistry(ctx),
		settlement:  NewSettlement(addr, state, staking, notifier),
		ownable:     ownable.New(ctx),
		guard:       nonreentrant.New(ctx),
		totalShares: solidity.NewUint256(ctx, slotTotalShares),
		staking:     staking,
		feed:        feed,
	}
}

// Init deploys the contract. A nil terms selects registry mode.
func (e *Engine) Init(owner, stakingPool, priceFeed thor.Address, terms *Terms) error {
	if stakingPool.IsZero() || priceFeed.IsZero() {
		return reverts.ErrInvalidConfiguration
	}
	if err := e.ownable.Init(owner); err != nil {
		return err
	}
	if terms != nil {
		return e.registry.SetTerms(terms)
	}
	return nil
}

// run executes fn under the guard. Every state change made by fn is
// reverted if it fails.
func (e *Engine) run(fn func() error) error {
	cp := e.state.NewCheckpoint()
	if err := e.guard.Run(fn); err != nil {
		e.state.RevertTo(cp)
		return err
	}
	return nil
}

// Stake deposits amount of the contract's native balance into the staking pool.
func (e *Engine) Stake(caller thor.Address, amount *big.Int) (shares *big.Int, err error) {
	logger.Debug("stake", "caller", caller, "amount", amount)
	defer func() { logOutcome("stake", err, "amount", amount, "shares", shares) }()

	err = e.run(func() error {
		if err := e.ownable.RequireOwner(caller); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		balance, err := e.state.GetBalance(e.addr)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return reverts.ErrInsufficientFunds
		}
		if shares, err = e.staking.Deposit(e.addr, amount); err != nil {
			return err
		}
		return e.totalShares.Add(shares)
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// Buy sells an option to caller, who has already paid value to the contract.
// In single mode strike and duration must be zero and value must equal the
// fixed premium. The premium is forwarded to the owner.
func (e *Engine) Buy(caller, origin thor.Address, value, strike *big.Int, duration, now uint64) (opt *Option, err error) {
	logger.Debug("buy", "caller", caller, "value", value, "strike", strike, "duration", duration)
	defer func() {
		if opt != nil {
			logOutcome("buy", err, "id", opt.ID, "buyer", opt.Buyer)
		} else {
			logOutcome("buy", err)
		}
	}()

	err = e.run(func() error {
		if caller != origin {
			return reverts.ErrUnauthorized
		}
		terms, err := e.registry.Terms()
		if err != nil {
			return err
		}
		if terms != nil {
			count, err := e.registry.Count()
			if err != nil {
				return err
			}
			if count > 0 {
				return reverts.ErrAlreadySold
			}
			if strike != nil && strike.Sign() != 0 {
				return reverts.ErrInvalidStrike
			}
			if duration != 0 {
				return reverts.ErrInvalidDuration
			}
			if value.Cmp(terms.Premium) != 0 {
				return reverts.ErrWrongPremium
			}
			strike, duration = terms.Strike, terms.Duration
		} else if value == nil || value.Sign() <= 0 {
			return reverts.ErrWrongPremium
		}

		if opt, err = e.registry.Create(strike, duration, value, caller, now); err != nil {
			return err
		}
		owner, err := e.ownable.Owner()
		if err != nil {
			return err
		}
		return e.settlement.Pay(owner, value)
	})
	if err != nil {
		return nil, err
	}
	return opt, nil
}

// Exercise pays the buyer's allocation of the staked balance.
func (e *Engine) Exercise(caller thor.Address, id, now uint64) (amount *big.Int, err error) {
	logger.Debug("exercise", "caller", caller, "id", id)
	defer func() { logOutcome("exercise", err, "id", id, "amount", amount) }()

	err = e.run(func() error {
		opt, err := e.registry.Get(id)
		if err != nil {
			return err
		}
		if caller != opt.Buyer {
			return reverts.ErrUnauthorized
		}
		if opt.Exercised {
			return reverts.ErrAlreadyExercised
		}
		if now > opt.Expiration {
			return reverts.ErrExpired
		}
		if err := e.checkPrice(opt.StrikePrice); err != nil {
			return err
		}

		if amount, err = e.allocation(); err != nil {
			return err
		}
		if err := e.registry.Settle(opt, true); err != nil {
			return err
		}
		return e.settlement.TransferOut(opt.Buyer, amount)
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// Cancel returns the allocation of an expired, unexercised option to the owner.
func (e *Engine) Cancel(caller thor.Address, id, now uint64) (amount *big.Int, err error) {
	logger.Debug("cancel", "caller", caller, "id", id)
	defer func() { logOutcome("cancel", err, "id", id, "amount", amount) }()

	err = e.run(func() error {
		opt, err := e.registry.Get(id)
		if err != nil {
			return err
		}
		if err := e.ownable.RequireOwner(caller); err != nil {
			return err
		}
		if opt.Exercised {
			return reverts.ErrAlreadyExercised
		}
		if now <= opt.Expiration {
			return reverts.ErrNotExpired
		}
		if opt.Cancelled {
			return reverts.ErrAlreadySettled
		}

		if amount, err = e.allocation(); err != nil {
			return err
		}
		if err := e.registry.Settle(opt, false); err != nil {
			return err
		}
		return e.settlement.TransferOut(caller, amount)
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// WithdrawResidual sends the contract's native balance to the owner.
func (e *Engine) WithdrawResidual(caller thor.Address) (amount *big.Int, err error) {
	logger.Debug("withdraw residual", "caller", caller)
	defer func() { logOutcome("withdrawResidual", err, "amount", amount) }()

	err = e.run(func() error {
		if err := e.ownable.RequireOwner(caller); err != nil {
			return err
		}
		if amount, err = e.state.GetBalance(e.addr); err != nil {
			return err
		}
		return e.settlement.Pay(caller, amount)
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// TransferOwnership returns the previous owner.
func (e *Engine) TransferOwnership(caller, next thor.Address) (prev thor.Address, err error) {
	err = e.run(func() error {
		prev, err = e.ownable.TransferOwnership(caller, next)
		return err
	})
	logOutcome("transferOwnership", err, "next", next)
	return
}

func (e *Engine) checkPrice(strike *big.Int) error {
	round, err := e.feed.LatestRoundData()
	if err != nil {
		return err
	}
	if round.AnsweredInRound < round.RoundID || round.UpdatedAt == 0 {
		return reverts.ErrStaleOracleData
	}
	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return reverts.ErrInvalidPrice
	}
	if round.Answer.Cmp(strike) < 0 {
		return reverts.ErrPriceBelowStrike
	}
	return nil
}

// allocation must be read before the option is settled, while it still counts as open.
func (e *Engine) allocation() (*big.Int, error) {
	open, err := e.registry.OpenCount()
	if err != nil {
		return nil, err
	}
	return e.settlement.Allocation(open)
}

func (e *Engine) Address() thor.Address {
	return e.addr
}

func (e *Engine) Owner() (thor.Address, error) {
	return e.ownable.Owner()
}

// GetOption returns the option with the given id.
func (e *Engine) GetOption(id uint64) (*Option, error) {
	return e.registry.Get(id)
}

// Terms returns the fixed terms, or nil in registry mode.
func (e *Engine) Terms() (*Terms, error) {
	return e.registry.Terms()
}

// TotalShares returns the sum of shares received from every stake.
func (e *Engine) TotalShares() (*big.Int, error) {
	return e.totalShares.Get()
}

func (e *Engine) OptionCount() (uint64, error) {
	return e.registry.Count()
}

func (e *Engine) OpenCount() (uint64, error) {
	return e.registry.OpenCount()
}

func (e *Engine) StakedBalance() (*big.Int, error) {
	return e.settlement.StakedBalance()
}

func logOutcome(op string, err error, ctx ...any) {
	if err != nil {
		logger.Info(op+" failed", append(ctx, "err", err)...)
		return
	}
	logger.Info(op, ctx...)
}
