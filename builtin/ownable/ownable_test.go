// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

func TestOwnable(t *testing.T) {
	o := New(solidity.NewContext(thor.BytesToAddress([]byte("c")), state.New(nil)))
	alice := thor.BytesToAddress([]byte("alice"))
	bob := thor.BytesToAddress([]byte("bob"))

	assert.ErrorIs(t, o.RequireOwner(thor.Address{}), reverts.ErrUnauthorized, "no owner yet")
	assert.ErrorIs(t, o.Init(thor.Address{}), reverts.ErrInvalidConfiguration)
	require.NoError(t, o.Init(alice))

	owner, err := o.Owner()
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	assert.NoError(t, o.RequireOwner(alice))
	assert.ErrorIs(t, o.RequireOwner(bob), reverts.ErrUnauthorized)

	tests := []struct {
		name   string
		caller thor.Address
		next   thor.Address
		err    error
	}{
		{"not owner", bob, bob, reverts.ErrUnauthorized},
		{"zero", alice, thor.Address{}, reverts.ErrInvalidConfiguration},
		{"ok", alice, bob, nil},
		{"old owner", alice, alice, reverts.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, err := o.TransferOwnership(tt.caller, tt.next)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.caller, prev)
		})
	}

	owner, err = o.Owner()
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}
