// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/lvldb"
	"github.com/vechain/stakedcall/thor"
)

func M(a ...any) []any {
	return a
}

func TestStateReadWrite(t *testing.T) {
	st := New(nil)

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))

	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))
	st.SetStorage(addr, storageKey, thor.BytesToBytes32([]byte("storageValue")))

	assert.Equal(t, M(big.NewInt(1), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.BytesToBytes32([]byte("storageValue")), nil), M(st.GetStorage(addr, storageKey)))

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))
}

func TestStateRevert(t *testing.T) {
	st := New(nil)

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	values := []struct {
		balance *big.Int
		storage thor.Bytes32
	}{
		{big.NewInt(1), thor.BytesToBytes32([]byte("v1"))},
		{big.NewInt(2), thor.BytesToBytes32([]byte("v2"))},
		{big.NewInt(3), thor.BytesToBytes32([]byte("v3"))},
	}

	var chk int
	for _, v := range values {
		chk = st.NewCheckpoint()
		require.NoError(t, st.SetBalance(addr, v.balance))
		st.SetStorage(addr, storageKey, v.storage)
	}

	for i := range values {
		v := values[len(values)-i-1]
		assert.Equal(t, M(v.balance, nil), M(st.GetBalance(addr)))
		assert.Equal(t, M(v.storage, nil), M(st.GetStorage(addr, storageKey)))
		st.RevertTo(chk)
		chk--
	}
	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))
}

func TestStateTransfer(t *testing.T) {
	st := New(nil)
	a := thor.BytesToAddress([]byte("a"))
	b := thor.BytesToAddress([]byte("b"))

	require.NoError(t, st.SetBalance(a, big.NewInt(10)))

	ok, err := st.Transfer(a, b, big.NewInt(4))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.Transfer(a, b, big.NewInt(7))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, M(big.NewInt(6), nil), M(st.GetBalance(a)))
	assert.Equal(t, M(big.NewInt(4), nil), M(st.GetBalance(b)))
}

func TestStateCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	st := New(db)
	require.NoError(t, st.SetBalance(addr, big.NewInt(100)))
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes([]uint64{1, 2, 3})
	}))

	n, err := st.Commit(db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a fresh state over the same db sees committed values
	fresh := New(db)
	assert.Equal(t, M(big.NewInt(100), nil), M(fresh.GetBalance(addr)))

	var decoded []uint64
	require.NoError(t, fresh.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &decoded)
	}))
	assert.Equal(t, []uint64{1, 2, 3}, decoded)

	// clearing writes deletions
	require.NoError(t, fresh.SetBalance(addr, new(big.Int)))
	fresh.SetRawStorage(addr, key, nil)
	_, err = fresh.Commit(db)
	require.NoError(t, err)

	_, err = db.Get(balanceKey(addr).dbKey())
	assert.True(t, db.IsNotFound(err))
	_, err = db.Get(storageKey{addr, key}.dbKey())
	assert.True(t, db.IsNotFound(err))
}
