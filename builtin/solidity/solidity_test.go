// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

func newTestContext() *Context {
	return NewContext(thor.BytesToAddress([]byte("contract")), state.New(nil))
}

type record struct {
	Owner  thor.Address
	Amount *big.Int
	Flag   bool
}

type idKey uint64

func (k idKey) Bytes() []byte {
	return new(big.Int).SetUint64(uint64(k)).Bytes()
}

func TestAddress(t *testing.T) {
	ctx := newTestContext()
	addr := NewAddress(ctx, thor.BytesToBytes32([]byte("owner")))

	got, err := addr.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	value := thor.BytesToAddress([]byte("alice"))
	addr.Set(&value)
	got, err = addr.Get()
	require.NoError(t, err)
	assert.Equal(t, value, got)

	addr.Set(nil)
	got, err = addr.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	assert.Equal(t, thor.BytesToAddress([]byte("contract")), ctx.Address())
}

func TestAddressCorrupted(t *testing.T) {
	ctx := newTestContext()
	slot := thor.BytesToBytes32([]byte("slot"))
	ctx.State().SetRawStorage(ctx.Address(), slot, rlp.RawValue{0xFF})

	_, err := NewAddress(ctx, slot).Get()
	assert.Error(t, err)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Add(big.NewInt(50)))
	require.NoError(t, u.Sub(big.NewInt(30)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), v)

	assert.Error(t, u.Sub(big.NewInt(121)))
	assert.Error(t, u.Set(new(big.Int).Lsh(big.NewInt(1), 256)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), v, "failed writes leave value untouched")
}

func TestUint64(t *testing.T) {
	ctx := newTestContext()
	u := NewUint64(ctx, thor.BytesToBytes32([]byte("counter")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	u.Set(42)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[idKey, *record](ctx, thor.BytesToBytes32([]byte("records")))

	ok, err := m.Exists(1)
	require.NoError(t, err)
	assert.False(t, ok)

	empty, err := m.Get(1)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Nil(t, empty.Amount)

	rec := &record{Owner: thor.BytesToAddress([]byte("bob")), Amount: big.NewInt(7), Flag: true}
	require.NoError(t, m.Set(1, rec))

	ok, err = m.Exists(1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	other, err := m.Get(2)
	require.NoError(t, err)
	assert.Equal(t, &record{}, other)
}

func TestMappingRevert(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[idKey, uint64](ctx, thor.BytesToBytes32([]byte("values")))

	require.NoError(t, m.Set(1, 10))
	cp := ctx.State().NewCheckpoint()
	require.NoError(t, m.Set(1, 20))
	ctx.State().RevertTo(cp)

	v, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}
