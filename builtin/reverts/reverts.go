// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Revert reasons shared by the native contracts. Compare with errors.Is.
var (
	ErrInvalidConfiguration = New("invalid configuration")
	ErrUnauthorized         = New("unauthorized")
	ErrAlreadySold          = New("already sold")
	ErrAlreadyExercised     = New("already exercised")
	ErrExpired              = New("option expired")
	ErrNotExpired           = New("option not expired")
	ErrPriceBelowStrike     = New("price below strike")
	ErrInvalidPrice         = New("invalid price")
	ErrStaleOracleData      = New("stale oracle data")
	ErrZeroAmount           = New("zero amount")
	ErrTransferFailed       = New("transfer failed")
	ErrUnsupported          = New("unsupported")
	ErrNotFound             = New("option not found")
	ErrAlreadySettled       = New("already settled")
	ErrReentrantCall        = New("reentrant call")
	ErrWrongPremium         = New("wrong premium")
	ErrInvalidStrike        = New("invalid strike")
	ErrInvalidDuration      = New("invalid duration")
	ErrInsufficientFunds    = New("insufficient funds")
	ErrNonPayable           = New("non-payable method")
)

var errorSelector, _ = hex.DecodeString("08c379a0")

// ErrRevert is returned by a native contract to abort the current call.
type ErrRevert struct {
	message string
}

// New creates a revert error with the given reason.
func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Bytes returns the reason ABI-encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}
	return EncodeReason(e.message)
}

// EncodeReason encodes msg the way solidity encodes require reasons.
func EncodeReason(msg string) []byte {
	msgBytes := []byte(msg)
	padded := ((len(msgBytes) + 31) / 32) * 32

	// selector + offset + length + data
	encoded := make([]byte, 0, 4+32+32+padded)
	encoded = append(encoded, errorSelector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], uint64(len(msgBytes)))
	encoded = append(encoded, length...)

	data := make([]byte, padded)
	copy(data, msgBytes)
	return append(encoded, data...)
}

// DecodeReason is the inverse of EncodeReason. It returns false if data
// is not an Error(string) payload.
func DecodeReason(data []byte) (string, bool) {
	if len(data) < 4+64 || string(data[:4]) != string(errorSelector) {
		return "", false
	}
	n := binary.BigEndian.Uint64(data[4+32+24 : 4+64])
	if uint64(len(data)-4-64) < n {
		return "", false
	}
	return string(data[4+64 : 4+64+int(n)]), true
}

// IsRevertErr returns whether err is, or wraps, a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}
