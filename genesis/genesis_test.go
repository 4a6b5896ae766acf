// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

const testConfig = `
launchTime: 1700000000
owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
operator: "0xd3ae78222beadb038203be21ed5ce7c9b1bff602"
reporter: "0x733b7269443c70de16bbf9b0615307884bcc5636"
accounts:
  - address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
    balance: "1000"
  - address: "0x115eabb4f62973d0dba138ab7df5c0375ec87256"
    balance: "0.5"
terms:
  strike: "2000"
  premium: "1.25"
  duration: "24h"
initialPrice: "2100.5"
`

func TestParseAndBuild(t *testing.T) {
	config, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)
	g, err := New(config)
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), g.LaunchTime())
	assert.False(t, g.ID().IsZero())

	st := state.New(nil)
	require.NoError(t, g.Build(st))

	bal, err := st.GetBalance(thor.MustParseAddress("0x115eabb4f62973d0dba138ab7df5c0375ec87256"))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Div(thor.Ether, big.NewInt(2)), bal)

	engine := builtin.Option.WithState(st)
	owner, err := engine.Owner()
	require.NoError(t, err)
	assert.Equal(t, config.Owner, owner)

	terms, err := engine.Terms()
	require.NoError(t, err)
	require.NotNil(t, terms)
	assert.Equal(t, big.NewInt(2000e8), terms.Strike)
	assert.Equal(t, uint64(86400), terms.Duration)
	assert.Equal(t, "1.25", thor.FormatAmount(terms.Premium))

	round, err := builtin.Oracle.WithState(st).LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), round.RoundID)
	assert.Equal(t, "2100.5", thor.FormatPrice(round.Answer))
	assert.Equal(t, uint64(1700000000), round.UpdatedAt)

	operator, err := builtin.Staking.WithState(st).Operator()
	require.NoError(t, err)
	assert.Equal(t, config.Operator, operator)
}

func TestRegistryMode(t *testing.T) {
	config := DevConfig()
	config.Terms = nil
	config.InitialPrice = ""
	g, err := New(config)
	require.NoError(t, err)

	st := state.New(nil)
	require.NoError(t, g.Build(st))
	terms, err := builtin.Option.WithState(st).Terms()
	require.NoError(t, err)
	assert.Nil(t, terms)

	round, err := builtin.Oracle.WithState(st).LatestRoundData()
	require.NoError(t, err)
	assert.Zero(t, round.RoundID)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no launch time", func(c *Config) { c.LaunchTime = 0 }},
		{"no owner", func(c *Config) { c.Owner = thor.Address{} }},
		{"no operator", func(c *Config) { c.Operator = thor.Address{} }},
		{"no reporter", func(c *Config) { c.Reporter = thor.Address{} }},
		{"zero strike", func(c *Config) { c.Terms.Strike = "0" }},
		{"zero premium", func(c *Config) { c.Terms.Premium = "0" }},
		{"bad duration", func(c *Config) { c.Terms.Duration = "forever" }},
		{"short duration", func(c *Config) { c.Terms.Duration = "10ms" }},
		{"bad balance", func(c *Config) { c.Accounts[0].Balance = "lots" }},
		{"duplicated account", func(c *Config) { c.Accounts[1].Address = c.Accounts[0].Address }},
		{"negative price", func(c *Config) { c.InitialPrice = "-1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DevConfig()
			tt.modify(config)
			_, err := New(config)
			assert.ErrorIs(t, err, reverts.ErrInvalidConfiguration)
		})
	}
}

func TestUnknownField(t *testing.T) {
	_, err := ParseConfig([]byte("owner: \"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\"\nfoo: 1\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, config.Accounts, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDevnet(t *testing.T) {
	accs := DevAccounts()
	require.Len(t, accs, 10)
	assert.Equal(t, thor.MustParseAddress("0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa"), accs[0].Address)

	g1, g2 := NewDevnet(), NewDevnet()
	assert.Equal(t, g1.ID(), g2.ID())
	assert.Equal(t, g1.ChainTag(), g2.ChainTag())
}
