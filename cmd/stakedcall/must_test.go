// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/genesis"
	"github.com/vechain/stakedcall/thor"
)

func TestLoadKey(t *testing.T) {
	key, err := loadKey("dev:2")
	require.NoError(t, err)
	assert.Equal(t, genesis.DevAccounts()[2].PrivateKey, key)

	_, err = loadKey("dev:10")
	assert.Error(t, err)

	hex := thor.BytesToBytes32(crypto.FromECDSA(genesis.DevAccounts()[1].PrivateKey)).String()
	key, err = loadKey(hex)
	require.NoError(t, err)
	assert.Equal(t, genesis.DevAccounts()[1].Address, thor.Address(crypto.PubkeyToAddress(key.PublicKey)))

	_, err = loadKey("zz")
	assert.Error(t, err)
}

func TestBuildClause(t *testing.T) {
	clause, err := buildClause("option", "buy", "10", []string{"0", "0"})
	require.NoError(t, err)
	assert.Equal(t, thor.OptionAddress, clause.To())
	assert.Equal(t, new(big.Int).Mul(big.NewInt(10), thor.Ether), clause.Value())

	method, ok := builtin.Option.ABI.MethodByName("buy")
	require.True(t, ok)
	var args struct {
		Strike   *big.Int
		Duration uint64
	}
	require.NoError(t, method.DecodeInput(clause.Data(), &args))
	assert.Equal(t, int64(0), args.Strike.Int64())

	clause, err = buildClause("staking", "transfer", "0", []string{genesis.DevAccounts()[3].Address.String(), "0x10"})
	require.NoError(t, err)
	assert.Equal(t, thor.StakingPoolAddress, clause.To())

	clause, err = buildClause("oracle", "submit", "0", []string{"-5"})
	require.NoError(t, err)
	assert.Equal(t, thor.PriceFeedAddress, clause.To())

	clause, err = buildClause("option", "", "1.5", nil)
	require.NoError(t, err)
	assert.Empty(t, clause.Data())

	for _, tc := range []struct {
		contract, method, value string
		args                    []string
	}{
		{"vault", "buy", "0", nil},
		{"option", "sell", "0", nil},
		{"option", "exercise", "0", nil},
		{"option", "exercise", "0", []string{"x"}},
		{"option", "stake", "0", []string{"-1"}},
		{"option", "stake", "0.0000000000000000001", []string{"1"}},
	} {
		_, err := buildClause(tc.contract, tc.method, tc.value, tc.args)
		assert.Error(t, err, "%v", tc)
	}
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 128, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(1<<30), 1<<30)
}
