// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

var reporter = thor.BytesToAddress([]byte("reporter"))

func newFeed(t *testing.T) *Oracle {
	o := New(thor.PriceFeedAddress, state.New(nil))
	require.NoError(t, o.Init(reporter, 0))
	return o
}

func TestInit(t *testing.T) {
	o := New(thor.PriceFeedAddress, state.New(nil))
	assert.ErrorIs(t, o.Init(thor.Address{}, 8), reverts.ErrInvalidConfiguration)

	d, err := o.Decimals()
	require.NoError(t, err)
	assert.Equal(t, uint8(DefaultDecimals), d, "default before init")

	require.NoError(t, o.Init(reporter, 6))
	d, err = o.Decimals()
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)

	r, err := o.Reporter()
	require.NoError(t, err)
	assert.Equal(t, reporter, r)
}

func TestEmptyFeed(t *testing.T) {
	o := newFeed(t)
	round, err := o.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), round.RoundID)
	assert.Equal(t, uint64(0), round.UpdatedAt)
	assert.Equal(t, 0, round.Answer.Sign())
}

func TestSubmitAndStartRound(t *testing.T) {
	o := newFeed(t)

	_, err := o.Submit(thor.BytesToAddress([]byte("mallory")), big.NewInt(1), 100)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	_, err = o.Submit(reporter, big.NewInt(2100_00000000), 100)
	require.NoError(t, err)

	round, err := o.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, &Round{
		RoundID:         1,
		Answer:          big.NewInt(2100_00000000),
		StartedAt:       100,
		UpdatedAt:       100,
		AnsweredInRound: 1,
	}, round)

	_, err = o.StartRound(reporter, 200)
	require.NoError(t, err)
	round, err = o.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), round.RoundID)
	assert.Equal(t, uint64(1), round.AnsweredInRound)
	assert.Equal(t, uint64(100), round.UpdatedAt)
	assert.Equal(t, big.NewInt(2100_00000000), round.Answer)

	_, err = o.Submit(reporter, big.NewInt(-5), 300)
	require.NoError(t, err)
	round, err = o.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), round.RoundID)
	assert.Equal(t, big.NewInt(-5), round.Answer, "negative answers survive storage")

	first, err := o.GetRound(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.AnsweredInRound)
}
