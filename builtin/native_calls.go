// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakedcall/abi"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/metrics"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/xenv"
)

type addressAndMethodID struct {
	thor.Address
	abi.MethodID
}

type nativeMethod struct {
	abi *abi.Method
	run func(env *xenv.Environment) ([]any, error)
}

var (
	nativeMethods = make(map[addressAndMethodID]*nativeMethod)

	metricOptionCalls = metrics.LazyLoadCounterVec("option_calls_count", []string{"method", "result"})
)

func uint64Topic(v uint64) thor.Bytes32 {
	return thor.BytesToBytes32(new(big.Int).SetUint64(v).Bytes())
}

func init() {
	defines := []struct {
		contract *contract
		name     string
		run      func(env *xenv.Environment) ([]any, error)
	}{
		{Option.contract, "stake", func(env *xenv.Environment) ([]any, error) {
			var amount *big.Int
			env.ParseArgs(&amount)
			shares, err := Option.WithEnv(env).Stake(env.Caller(), amount)
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("Staked"), []thor.Bytes32{xenv.AddressTopic(env.Caller())}, amount)
			return []any{shares}, nil
		}},
		{Option.contract, "buy", func(env *xenv.Environment) ([]any, error) {
			var args struct {
				Strike   *big.Int
				Duration uint64
			}
			env.ParseArgs(&args)
			opt, err := Option.WithEnv(env).Buy(
				env.Caller(),
				env.TransactionContext().Origin,
				env.Value(),
				args.Strike,
				args.Duration,
				env.BlockContext().Time,
			)
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("OptionBought"),
				[]thor.Bytes32{xenv.AddressTopic(opt.Buyer), uint64Topic(opt.ID)},
				opt.Premium)
			return []any{opt.ID}, nil
		}},
		{Option.contract, "exercise", func(env *xenv.Environment) ([]any, error) {
			var id uint64
			env.ParseArgs(&id)
			amount, err := Option.WithEnv(env).Exercise(env.Caller(), id, env.BlockContext().Time)
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("OptionExercised"),
				[]thor.Bytes32{xenv.AddressTopic(env.Caller()), uint64Topic(id)},
				amount)
			return []any{amount}, nil
		}},
		{Option.contract, "cancel", func(env *xenv.Environment) ([]any, error) {
			var id uint64
			env.ParseArgs(&id)
			amount, err := Option.WithEnv(env).Cancel(env.Caller(), id, env.BlockContext().Time)
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("OptionCancelled"),
				[]thor.Bytes32{xenv.AddressTopic(env.Caller()), uint64Topic(id)},
				amount)
			return []any{amount}, nil
		}},
		{Option.contract, "withdrawResidual", func(env *xenv.Environment) ([]any, error) {
			amount, err := Option.WithEnv(env).WithdrawResidual(env.Caller())
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("Withdrawn"), []thor.Bytes32{xenv.AddressTopic(env.Caller())}, amount)
			return []any{amount}, nil
		}},
		{Option.contract, "transferOwnership", func(env *xenv.Environment) ([]any, error) {
			var next common.Address
			env.ParseArgs(&next)
			prev, err := Option.WithEnv(env).TransferOwnership(env.Caller(), thor.Address(next))
			if err != nil {
				return nil, err
			}
			env.Log(Option.event("OwnershipTransferred"),
				[]thor.Bytes32{xenv.AddressTopic(prev), xenv.AddressTopic(thor.Address(next))})
			return nil, nil
		}},
		{Option.contract, "owner", func(env *xenv.Environment) ([]any, error) {
			owner, err := Option.WithState(env.State()).Owner()
			if err != nil {
				return nil, err
			}
			return []any{common.Address(owner)}, nil
		}},
		{Option.contract, "getOption", func(env *xenv.Environment) ([]any, error) {
			var id uint64
			env.ParseArgs(&id)
			opt, err := Option.WithState(env.State()).GetOption(id)
			if err != nil {
				return nil, err
			}
			return []any{common.Address(opt.Buyer), opt.Premium, opt.StrikePrice, opt.Expiration, opt.Exercised, opt.Cancelled}, nil
		}},
		{Option.contract, "terms", func(env *xenv.Environment) ([]any, error) {
			terms, err := Option.WithState(env.State()).Terms()
			if err != nil {
				return nil, err
			}
			if terms == nil {
				return []any{new(big.Int), new(big.Int), uint64(0)}, nil
			}
			return []any{terms.Strike, terms.Premium, terms.Duration}, nil
		}},
		{Option.contract, "totalShares", func(env *xenv.Environment) ([]any, error) {
			total, err := Option.WithState(env.State()).TotalShares()
			return []any{total}, err
		}},
		{Option.contract, "optionCount", func(env *xenv.Environment) ([]any, error) {
			count, err := Option.WithState(env.State()).OptionCount()
			return []any{count}, err
		}},
		{Option.contract, "openCount", func(env *xenv.Environment) ([]any, error) {
			count, err := Option.WithState(env.State()).OpenCount()
			return []any{count}, err
		}},
		{Option.contract, "stakedBalance", func(env *xenv.Environment) ([]any, error) {
			bal, err := Option.WithState(env.State()).StakedBalance()
			return []any{bal}, err
		}},

		{Staking.contract, "submit", func(env *xenv.Environment) ([]any, error) {
			value := env.Value()
			shares, err := Staking.WithState(env.State()).Submit(env.Caller(), value)
			if err != nil {
				return nil, err
			}
			env.Log(Staking.event("Submitted"), []thor.Bytes32{xenv.AddressTopic(env.Caller())}, value, shares)
			return []any{shares}, nil
		}},
		{Staking.contract, "accrue", func(env *xenv.Environment) ([]any, error) {
			var amount *big.Int
			env.ParseArgs(&amount)
			if err := Staking.WithState(env.State()).Accrue(env.Caller(), amount); err != nil {
				return nil, err
			}
			env.Log(Staking.event("Accrued"), nil, amount)
			return nil, nil
		}},
		{Staking.contract, "transfer", func(env *xenv.Environment) ([]any, error) {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			to := thor.Address(args.To)
			ok, err := Staking.WithState(env.State()).Transfer(env.Caller(), to, args.Amount)
			if err != nil {
				return nil, err
			}
			env.Require(ok, reverts.ErrInsufficientFunds)
			env.Log(Staking.event("Transfer"),
				[]thor.Bytes32{xenv.AddressTopic(env.Caller()), xenv.AddressTopic(to)},
				args.Amount)
			if err := env.NotifyReceived(to, Staking.Address, args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}},
		{Staking.contract, "balanceOf", func(env *xenv.Environment) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			bal, err := Staking.WithState(env.State()).BalanceOf(thor.Address(account))
			return []any{bal}, err
		}},
		{Staking.contract, "sharesOf", func(env *xenv.Environment) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			shares, err := Staking.WithState(env.State()).SharesOf(thor.Address(account))
			return []any{shares}, err
		}},
		{Staking.contract, "totalShares", func(env *xenv.Environment) ([]any, error) {
			total, err := Staking.WithState(env.State()).TotalShares()
			return []any{total}, err
		}},
		{Staking.contract, "totalPooled", func(env *xenv.Environment) ([]any, error) {
			total, err := Staking.WithState(env.State()).TotalPooled()
			return []any{total}, err
		}},
		{Staking.contract, "operator", func(env *xenv.Environment) ([]any, error) {
			op, err := Staking.WithState(env.State()).Operator()
			return []any{common.Address(op)}, err
		}},

		{Oracle.contract, "submit", func(env *xenv.Environment) ([]any, error) {
			var answer *big.Int
			env.ParseArgs(&answer)
			round, err := Oracle.WithState(env.State()).Submit(env.Caller(), answer, env.BlockContext().Time)
			if err != nil {
				return nil, err
			}
			env.Log(Oracle.event("AnswerUpdated"), []thor.Bytes32{uint64Topic(round.RoundID)}, round.Answer, round.UpdatedAt)
			return []any{round.RoundID}, nil
		}},
		{Oracle.contract, "startRound", func(env *xenv.Environment) ([]any, error) {
			round, err := Oracle.WithState(env.State()).StartRound(env.Caller(), env.BlockContext().Time)
			if err != nil {
				return nil, err
			}
			env.Log(Oracle.event("NewRound"),
				[]thor.Bytes32{uint64Topic(round.RoundID), xenv.AddressTopic(env.Caller())},
				round.StartedAt)
			return []any{round.RoundID}, nil
		}},
		{Oracle.contract, "latestRoundData", func(env *xenv.Environment) ([]any, error) {
			round, err := Oracle.WithState(env.State()).LatestRoundData()
			if err != nil {
				return nil, err
			}
			return []any{round.RoundID, round.Answer, round.StartedAt, round.UpdatedAt, round.AnsweredInRound}, nil
		}},
		{Oracle.contract, "decimals", func(env *xenv.Environment) ([]any, error) {
			d, err := Oracle.WithState(env.State()).Decimals()
			return []any{d}, err
		}},
	}

	for _, def := range defines {
		method, found := def.contract.ABI.MethodByName(def.name)
		if !found {
			panic("method not found: " + def.contract.name + "." + def.name)
		}
		run := def.run
		if def.contract == Option.contract && !method.Const() {
			run = countOptionCall(method.Name(), run)
		}
		nativeMethods[addressAndMethodID{def.contract.Address, method.ID()}] = &nativeMethod{
			abi: method,
			run: run,
		}
	}
}

func countOptionCall(name string, run func(env *xenv.Environment) ([]any, error)) func(env *xenv.Environment) ([]any, error) {
	return func(env *xenv.Environment) ([]any, error) {
		out, err := run(env)
		result := "success"
		if err != nil {
			result = "reverted"
		}
		metricOptionCalls().AddWithLabel(1, map[string]string{"method": name, "result": result})
		return out, err
	}
}

// FindNativeCall find native calls.
func FindNativeCall(to thor.Address, input []byte) (*abi.Method, func(env *xenv.Environment) ([]any, error), bool) {
	methodID, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, nil, false
	}

	method := nativeMethods[addressAndMethodID{to, methodID}]
	if method == nil {
		return nil, nil, false
	}
	return method.abi, method.run, true
}
