// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *big.Int
		err  bool
	}{
		{"1", Ether, false},
		{"1.5", new(big.Int).Div(new(big.Int).Mul(Ether, big.NewInt(3)), big.NewInt(2)), false},
		{"0.000000000000000001", big.NewInt(1), false},
		{"0.0000000000000000001", nil, true},
		{"abc", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPrice(t *testing.T) {
	p, err := ParsePrice("2000.5")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200_050_000_000), p)
	assert.Equal(t, "2000.5", FormatPrice(p))

	_, err = ParsePrice("1.000000001")
	assert.Error(t, err)

	assert.Equal(t, "0", FormatPrice(nil))
	assert.Equal(t, "1.5", FormatAmount(new(big.Int).Mul(big.NewInt(15), new(big.Int).Div(Ether, big.NewInt(10)))))
}
