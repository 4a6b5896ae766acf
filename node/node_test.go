// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/genesis"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/lvldb"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

type testClock struct{ now uint64 }

func (c *testClock) Now() uint64 { return c.now }

func stakeClause(t *testing.T, amount *big.Int) *tx.Clause {
	method, ok := builtin.Option.ABI.MethodByName("stake")
	require.True(t, ok)
	data, err := method.EncodeInput(amount)
	require.NoError(t, err)
	return tx.NewClause(thor.OptionAddress).WithValue(amount).WithData(data)
}

func newTx(t *testing.T, g *genesis.Genesis, nonce uint64, acc genesis.DevAccount, clauses ...*tx.Clause) *tx.Transaction {
	b := tx.NewBuilder().ChainTag(g.ChainTag()).Nonce(nonce)
	for _, c := range clauses {
		b.Clause(c)
	}
	return tx.MustSign(b.Build(), acc.PrivateKey)
}

func newNode(t *testing.T) (*Node, *testClock) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ldb, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	clock := &testClock{now: genesis.DevConfig().LaunchTime + 100}
	n, err := New(db, ldb, genesis.NewDevnet(), clock.Now)
	require.NoError(t, err)
	t.Cleanup(n.Close)
	return n, clock
}

func TestGenesis(t *testing.T) {
	n, _ := newNode(t)
	assert.Equal(t, uint32(0), n.Best().Number)

	owner := genesis.DevAccounts()[0].Address
	err := n.ViewState(func(st *state.State, best Block) error {
		bal, err := st.GetBalance(owner)
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Mul(big.NewInt(10000), thor.Ether), bal)

		got, err := builtin.Option.WithState(st).Owner()
		require.NoError(t, err)
		assert.Equal(t, owner, got)
		return nil
	})
	require.NoError(t, err)
}

func TestExecuteTransaction(t *testing.T) {
	n, clock := newNode(t)
	owner := genesis.DevAccounts()[0]

	ch := make(chan []*logdb.Event, 1)
	sub := n.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	trx := newTx(t, n.Genesis(), 1, owner, stakeClause(t, thor.Ether))
	receipt, err := n.ExecuteTransaction(trx)
	require.NoError(t, err)
	assert.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, Block{Number: 1, Time: clock.now}, n.Best())

	select {
	case events := <-ch:
		require.Len(t, events, 1)
		assert.Equal(t, thor.OptionAddress, events[0].Address)
		assert.Equal(t, trx.ID(), events[0].TxID)
	case <-time.After(time.Second):
		t.Fatal("no events delivered")
	}

	stored, err := n.LogDB().FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	_, err = n.ExecuteTransaction(trx)
	assert.True(t, IsBadTx(err))

	other := tx.MustSign(tx.NewBuilder().ChainTag(n.Genesis().ChainTag()+1).Build(), owner.PrivateKey)
	_, err = n.ExecuteTransaction(other)
	assert.ErrorIs(t, err, errChainTagMismatched)

	// the clock going back does not move block time back
	clock.now -= 50
	receipt, err = n.ExecuteTransaction(newTx(t, n.Genesis(), 2, owner, stakeClause(t, thor.Ether)))
	require.NoError(t, err)
	assert.Equal(t, clock.now+50, receipt.BlockTime)
}

func TestRevertedTransaction(t *testing.T) {
	n, _ := newNode(t)
	buyer := genesis.DevAccounts()[5]

	// only the owner may stake
	receipt, err := n.ExecuteTransaction(newTx(t, n.Genesis(), 1, buyer, stakeClause(t, thor.Ether)))
	require.NoError(t, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, uint32(1), n.Best().Number)

	stored, err := n.LogDB().FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.NoError(t, n.ViewState(func(st *state.State, _ Block) error {
		bal, err := st.GetBalance(buyer.Address)
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Mul(big.NewInt(10000), thor.Ether), bal)
		return nil
	}))
}

func TestCall(t *testing.T) {
	n, _ := newNode(t)
	owner := genesis.DevAccounts()[0]

	out, err := n.Call(owner.Address, stakeClause(t, thor.Ether))
	require.NoError(t, err)
	assert.Len(t, out.Events, 1)

	require.NoError(t, n.ViewState(func(st *state.State, _ Block) error {
		shares, err := builtin.Option.WithState(st).TotalShares()
		require.NoError(t, err)
		assert.Zero(t, shares.Sign())
		return nil
	}))
	assert.Equal(t, uint32(0), n.Best().Number)
}

func TestReopen(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := genesis.NewDevnet()
	clock := &testClock{now: gen.LaunchTime() + 10}
	n, err := New(db, nil, gen, clock.Now)
	require.NoError(t, err)
	_, err = n.ExecuteTransaction(newTx(t, gen, 1, genesis.DevAccounts()[0], stakeClause(t, thor.Ether)))
	require.NoError(t, err)

	n, err = New(db, nil, gen, clock.Now)
	require.NoError(t, err)
	assert.Equal(t, Block{Number: 1, Time: clock.now}, n.Best())
	require.NoError(t, n.ViewState(func(st *state.State, _ Block) error {
		bal, err := builtin.Option.WithState(st).StakedBalance()
		require.NoError(t, err)
		assert.Equal(t, thor.Ether, bal)
		return nil
	}))

	config := genesis.DevConfig()
	config.LaunchTime++
	other, err := genesis.New(config)
	require.NoError(t, err)
	_, err = New(db, nil, other, clock.Now)
	assert.ErrorIs(t, err, errGenesisMismatched)
}
