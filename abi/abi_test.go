// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/thor"
)

const testABI = `[
	{"type":"function","name":"buy","stateMutability":"payable",
	 "inputs":[{"name":"strike","type":"uint256"},{"name":"duration","type":"uint64"}],
	 "outputs":[{"name":"id","type":"uint64"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"owner","type":"address"}]},
	{"type":"event","name":"Staked","anonymous":false,
	 "inputs":[{"name":"actor","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"receive","stateMutability":"payable"}
]`

func TestMethod(t *testing.T) {
	a, err := New([]byte(testABI))
	require.NoError(t, err)
	assert.True(t, a.HasReceive())

	buy, ok := a.MethodByName("buy")
	require.True(t, ok)
	assert.True(t, buy.Payable())
	assert.False(t, buy.Const())
	assert.Equal(t, "buy", buy.Name())

	input, err := buy.EncodeInput(big.NewInt(2000), uint64(86400))
	require.NoError(t, err)

	found, err := a.MethodByInput(input)
	require.NoError(t, err)
	assert.Equal(t, buy.ID(), found.ID())

	var args struct {
		Strike   *big.Int
		Duration uint64
	}
	require.NoError(t, buy.DecodeInput(input, &args))
	assert.Equal(t, big.NewInt(2000), args.Strike)
	assert.Equal(t, uint64(86400), args.Duration)

	out, err := buy.EncodeOutput(uint64(7))
	require.NoError(t, err)
	var id uint64
	require.NoError(t, buy.DecodeOutput(out, &id))
	assert.Equal(t, uint64(7), id)

	owner, ok := a.MethodByName("owner")
	require.True(t, ok)
	assert.True(t, owner.Const())

	assert.Error(t, owner.DecodeInput(input, &args), "foreign selector")

	_, err = a.MethodByInput([]byte{1, 2})
	assert.EqualError(t, err, "input data too short")
	_, err = a.MethodByInput([]byte{1, 2, 3, 4})
	assert.EqualError(t, err, "method not found")
}

func TestEvent(t *testing.T) {
	a, err := New([]byte(testABI))
	require.NoError(t, err)

	ev, ok := a.EventByName("Staked")
	require.True(t, ok)
	assert.Equal(t, thor.Keccak256([]byte("Staked(address,uint256)")), ev.ID())

	byID, ok := a.EventByID(ev.ID())
	require.True(t, ok)
	assert.Equal(t, "Staked", byID.Name())

	data, err := ev.Encode(big.NewInt(42))
	require.NoError(t, err)
	assert.Len(t, data, 32)

	var decoded struct{ Amount *big.Int }
	require.NoError(t, ev.Decode(data, &decoded))
	assert.Equal(t, big.NewInt(42), decoded.Amount)

}
