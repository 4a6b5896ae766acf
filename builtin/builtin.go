// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/stakedcall/builtin/option"
	"github.com/vechain/stakedcall/builtin/oracle"
	"github.com/vechain/stakedcall/builtin/staking"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/xenv"
)

// Builtin contracts binding.
var (
	Staking = &stakingContract{mustLoadContract("staking", thor.StakingPoolAddress)}
	Oracle  = &oracleContract{mustLoadContract("oracle", thor.PriceFeedAddress)}
	Option  = &optionContract{mustLoadContract("option", thor.OptionAddress)}
)

type (
	stakingContract struct{ *contract }
	oracleContract  struct{ *contract }
	optionContract  struct{ *contract }
)

func (s *stakingContract) WithState(state *state.State) *staking.Staking {
	return staking.New(s.Address, state)
}

func (o *oracleContract) WithState(state *state.State) *oracle.Oracle {
	return oracle.New(o.Address, state)
}

// WithState binds the option contract without receiver notifications.
// Use it for reads and for deployment.
func (o *optionContract) WithState(state *state.State) *option.Engine {
	return option.New(o.Address, state, Staking.WithState(state), Oracle.WithState(state), nil)
}

// WithEnv binds the option contract to a call frame, so payments reach receiver hooks.
func (o *optionContract) WithEnv(env *xenv.Environment) *option.Engine {
	st := env.State()
	return option.New(o.Address, st, Staking.WithState(st), Oracle.WithState(st), env)
}

// Lookup returns the builtin contract deployed at addr.
func Lookup(addr thor.Address) (*contract, bool) {
	for _, c := range []*contract{Staking.contract, Oracle.contract, Option.contract} {
		if c.Address == addr {
			return c, true
		}
	}
	return nil, false
}
