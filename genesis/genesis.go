// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/builtin/option"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

// Genesis to build the initial state.
type Genesis struct {
	config *Config
	id     thor.Bytes32

	balances map[thor.Address]*big.Int
	terms    *option.Terms
	price    *big.Int
}

// New validates config and creates the genesis.
func New(config *Config) (*Genesis, error) {
	invalid := func(format string, args ...any) error {
		return errors.WithMessagef(reverts.ErrInvalidConfiguration, format, args...)
	}

	// the seeded price round is stamped with it
	if config.LaunchTime == 0 {
		return nil, invalid("launchTime required")
	}
	if config.Owner.IsZero() {
		return nil, invalid("owner required")
	}
	if config.Operator.IsZero() {
		return nil, invalid("operator required")
	}
	if config.Reporter.IsZero() {
		return nil, invalid("reporter required")
	}

	g := &Genesis{
		config:   config,
		balances: make(map[thor.Address]*big.Int),
	}
	for _, acc := range config.Accounts {
		if acc.Address.IsZero() {
			return nil, invalid("zero account address")
		}
		if _, dup := g.balances[acc.Address]; dup {
			return nil, invalid("duplicated account %v", acc.Address)
		}
		bal, err := thor.ParseAmount(acc.Balance)
		if err != nil {
			return nil, invalid("balance of %v: %v", acc.Address, err)
		}
		if bal.Sign() < 0 {
			return nil, invalid("negative balance of %v", acc.Address)
		}
		g.balances[acc.Address] = bal
	}

	if t := config.Terms; t != nil {
		strike, err := thor.ParsePrice(t.Strike)
		if err != nil {
			return nil, invalid("strike: %v", err)
		}
		premium, err := thor.ParseAmount(t.Premium)
		if err != nil {
			return nil, invalid("premium: %v", err)
		}
		duration, err := time.ParseDuration(t.Duration)
		if err != nil {
			return nil, invalid("duration: %v", err)
		}
		if strike.Sign() <= 0 || premium.Sign() <= 0 || duration < time.Second {
			return nil, invalid("terms must be positive")
		}
		g.terms = &option.Terms{
			Strike:   strike,
			Premium:  premium,
			Duration: uint64(duration / time.Second),
		}
	}

	if config.InitialPrice != "" {
		price, err := thor.ParsePrice(config.InitialPrice)
		if err != nil {
			return nil, invalid("initial price: %v", err)
		}
		if price.Sign() <= 0 {
			return nil, invalid("initial price must be positive")
		}
		g.price = price
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, errors.Wrap(err, "encode genesis config")
	}
	g.id = thor.Blake2b(data)
	return g, nil
}

// ID returns the hash of the config.
func (g *Genesis) ID() thor.Bytes32 { return g.id }

// ChainTag returns the tag every transaction must carry.
func (g *Genesis) ChainTag() byte { return g.id[len(g.id)-1] }

func (g *Genesis) LaunchTime() uint64 { return g.config.LaunchTime }

// Config returns the config the genesis was created from.
func (g *Genesis) Config() *Config { return g.config }

// Build funds the accounts and deploys the contracts.
func (g *Genesis) Build(st *state.State) error {
	for addr, bal := range g.balances {
		if err := st.SetBalance(addr, bal); err != nil {
			return err
		}
	}

	if err := builtin.Staking.WithState(st).Init(g.config.Operator); err != nil {
		return errors.WithMessage(err, "init staking")
	}
	feed := builtin.Oracle.WithState(st)
	if err := feed.Init(g.config.Reporter, 0); err != nil {
		return errors.WithMessage(err, "init oracle")
	}
	if err := builtin.Option.WithState(st).Init(
		g.config.Owner,
		thor.StakingPoolAddress,
		thor.PriceFeedAddress,
		g.terms,
	); err != nil {
		return errors.WithMessage(err, "init option")
	}

	if g.price != nil {
		if _, err := feed.Submit(g.config.Reporter, g.price, g.config.LaunchTime); err != nil {
			return errors.WithMessage(err, "submit initial price")
		}
	}
	return nil
}
