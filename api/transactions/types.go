// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// RawTx is the body of a transaction submission.
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, err
	}
	return &trx, nil
}

// Event is an event in a receipt.
type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
}

// Output is the result of a clause.
type Output struct {
	Data   string   `json:"data"`
	Events []*Event `json:"events"`
}

// Receipt for json marshal.
type Receipt struct {
	TxID         thor.Bytes32 `json:"txID"`
	TxOrigin     thor.Address `json:"txOrigin"`
	BlockNumber  uint32       `json:"blockNumber"`
	BlockTime    uint64       `json:"blockTimestamp"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
	BadClause    *int         `json:"badClauseIndex,omitempty"`
	Outputs      []*Output    `json:"outputs"`
}

func convertReceipt(receipt *tx.Receipt) *Receipt {
	r := &Receipt{
		TxID:         receipt.TxID,
		TxOrigin:     receipt.TxOrigin,
		BlockNumber:  receipt.BlockNumber,
		BlockTime:    receipt.BlockTime,
		Reverted:     receipt.Reverted,
		RevertReason: receipt.RevertReason,
		Outputs:      make([]*Output, len(receipt.Outputs)),
	}
	if receipt.Reverted {
		idx := receipt.BadClauseIndex
		r.BadClause = &idx
	}
	for i, o := range receipt.Outputs {
		out := &Output{
			Data:   hexutil.Encode(o.Data),
			Events: make([]*Event, len(o.Events)),
		}
		for j, ev := range o.Events {
			out.Events[j] = &Event{
				Address: ev.Address,
				Topics:  ev.Topics,
				Data:    hexutil.Encode(ev.Data),
			}
		}
		r.Outputs[i] = out
	}
	return r
}

// SendResult is the response of a transaction submission.
type SendResult struct {
	ID      thor.Bytes32 `json:"id"`
	Receipt *Receipt     `json:"receipt"`
}
