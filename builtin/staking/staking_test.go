// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

var (
	operator = thor.BytesToAddress([]byte("operator"))
	alice    = thor.BytesToAddress([]byte("alice"))
	bob      = thor.BytesToAddress([]byte("bob"))
)

func newPool(t *testing.T) (*Staking, *state.State) {
	st := state.New(nil)
	s := New(thor.StakingPoolAddress, st)
	require.NoError(t, s.Init(operator))
	return s, st
}

func balanceOf(t *testing.T, s *Staking, addr thor.Address) *big.Int {
	bal, err := s.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func TestInit(t *testing.T) {
	s := New(thor.StakingPoolAddress, state.New(nil))
	assert.ErrorIs(t, s.Init(thor.Address{}), reverts.ErrInvalidConfiguration)
	require.NoError(t, s.Init(operator))

	op, err := s.Operator()
	require.NoError(t, err)
	assert.Equal(t, operator, op)
	assert.Equal(t, thor.StakingPoolAddress, s.Address())
}

func TestDepositAndAccrue(t *testing.T) {
	s, st := newPool(t)
	require.NoError(t, st.SetBalance(alice, big.NewInt(1000)))
	require.NoError(t, st.SetBalance(bob, big.NewInt(1000)))

	shares, err := s.Deposit(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), shares)
	assert.Equal(t, big.NewInt(100), balanceOf(t, s, alice))

	poolBal, err := st.GetBalance(thor.StakingPoolAddress)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), poolBal)

	// 10% rewards
	assert.ErrorIs(t, s.Accrue(alice, big.NewInt(10)), reverts.ErrUnauthorized)
	assert.ErrorIs(t, s.Accrue(operator, big.NewInt(0)), reverts.ErrZeroAmount)
	require.NoError(t, s.Accrue(operator, big.NewInt(10)))
	assert.Equal(t, big.NewInt(110), balanceOf(t, s, alice))

	// later depositors get fewer shares for the same amount
	shares, err = s.Deposit(bob, big.NewInt(110))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), shares)
	assert.Equal(t, big.NewInt(110), balanceOf(t, s, bob))

	total, err := s.TotalShares()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), total)
	pooled, err := s.TotalPooled()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(220), pooled)
}

func TestDepositErrors(t *testing.T) {
	s, st := newPool(t)
	require.NoError(t, st.SetBalance(alice, big.NewInt(10)))

	_, err := s.Deposit(alice, big.NewInt(0))
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
	_, err = s.Deposit(alice, big.NewInt(11))
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)

	assert.ErrorIs(t, s.Accrue(operator, big.NewInt(1)), reverts.ErrInsufficientFunds, "no holders")
}

func TestTransfer(t *testing.T) {
	s, st := newPool(t)
	require.NoError(t, st.SetBalance(alice, big.NewInt(300)))

	_, err := s.Deposit(alice, big.NewInt(300))
	require.NoError(t, err)
	require.NoError(t, s.Accrue(operator, big.NewInt(100)))
	assert.Equal(t, big.NewInt(400), balanceOf(t, s, alice))

	ok, err := s.Transfer(alice, bob, big.NewInt(401))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Transfer(alice, bob, big.NewInt(133))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, balanceOf(t, s, bob).Int64(), int64(133), "rounded in favour of recipient")

	rest := balanceOf(t, s, alice)
	ok, err = s.Transfer(alice, bob, rest)
	require.NoError(t, err)
	assert.True(t, ok)

	shares, err := s.SharesOf(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, shares.Sign(), "whole balance moves every share")
	assert.Equal(t, big.NewInt(400), balanceOf(t, s, bob))
}

func TestTransferRevert(t *testing.T) {
	s, st := newPool(t)
	require.NoError(t, st.SetBalance(alice, big.NewInt(50)))
	_, err := s.Deposit(alice, big.NewInt(50))
	require.NoError(t, err)

	cp := st.NewCheckpoint()
	ok, err := s.Transfer(alice, bob, big.NewInt(20))
	require.NoError(t, err)
	require.True(t, ok)
	st.RevertTo(cp)

	assert.Equal(t, big.NewInt(50), balanceOf(t, s, alice))
	assert.Equal(t, 0, balanceOf(t, s, bob).Sign())
}
