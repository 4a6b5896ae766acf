// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// Account for marshal account
type Account struct {
	Balance math.HexOrDecimal256 `json:"balance"`
	Staked  math.HexOrDecimal256 `json:"staked"`
	Shares  math.HexOrDecimal256 `json:"shares"`
}

// ContractCall represents contract-call body
type ContractCall struct {
	Value  *math.HexOrDecimal256 `json:"value"`
	Data   string                `json:"data"`
	Caller *thor.Address         `json:"caller"`
}

type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
}

type CallResult struct {
	Data         string   `json:"data"`
	Events       []*Event `json:"events"`
	Reverted     bool     `json:"reverted"`
	RevertReason string   `json:"revertReason"`
}

func convertOutput(output *tx.Output) *CallResult {
	result := &CallResult{
		Data:   hexutil.Encode(output.Data),
		Events: make([]*Event, len(output.Events)),
	}
	for i, ev := range output.Events {
		result.Events[i] = &Event{
			Address: ev.Address,
			Topics:  ev.Topics,
			Data:    hexutil.Encode(ev.Data),
		}
	}
	return result
}
