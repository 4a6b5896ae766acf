// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	tests := []struct {
		name                        string
		blockNum, txIndex, logIndex uint32
	}{
		{"regular", 1, 2, 3},
		{"max bn", blockNumMask, 1, 2},
		{"max tx index", 5, txIndexMask, 4},
		{"max log index", 5, 4, logIndexMask},
		{"all max", blockNumMask, txIndexMask, logIndexMask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := newSequence(tt.blockNum, tt.txIndex, tt.logIndex)
			require.NoError(t, err)
			assert.True(t, seq >= 0)
			assert.Equal(t, tt.blockNum, seq.BlockNumber())
			assert.Equal(t, tt.txIndex, seq.TxIndex())
			assert.Equal(t, tt.logIndex, seq.LogIndex())
		})
	}

	_, err := newSequence(blockNumMask+1, 0, 0)
	assert.ErrorContains(t, err, "block number out of range")
	_, err = newSequence(0, txIndexMask+1, 0)
	assert.ErrorContains(t, err, "tx index out of range")
	_, err = newSequence(0, 0, logIndexMask+1)
	assert.ErrorContains(t, err, "log index out of range")

	a, _ := newSequence(2, 0, 0)
	b, _ := newSequence(1, txIndexMask, logIndexMask)
	assert.Greater(t, a, b)
	assert.Less(t, blockNumBits+txIndexBits+logIndexBits, 64)
}
