// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	data := ErrPriceBelowStrike.Bytes()
	assert.Equal(t, errorSelector, data[:4])
	assert.Len(t, data, 4+32+32+32)

	reason, ok := DecodeReason(data)
	assert.True(t, ok)
	assert.Equal(t, "price below strike", reason)

	_, ok = DecodeReason([]byte{1, 2, 3, 4})
	assert.False(t, ok)

	var nilErr *ErrRevert
	assert.Nil(t, nilErr.Bytes())
}

func TestIsRevertErr(t *testing.T) {
	wrapped := pkgerrors.WithMessage(ErrNotFound, "id 9")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrExpired))

	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(errors.New("leveldb: closed")))
}
