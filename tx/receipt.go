// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/stakedcall/thor"
)

// Event represents a contract event log.
type Event struct {
	// address of the contract that emitted the event
	Address thor.Address
	// topics[0] is the event id
	Topics []thor.Bytes32
	Data   []byte
}

// Output output of clause execution.
type Output struct {
	Data   []byte
	Events []*Event
}

// Receipt represents the results of a transaction.
type Receipt struct {
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	BlockNumber uint32
	BlockTime   uint64
	// Reverted means the tx left no effect on state.
	Reverted bool
	// RevertReason is the error that aborted the tx.
	RevertReason string
	// which clause caused tx failure
	BadClauseIndex int
	// Outputs is empty when the tx is reverted.
	Outputs []*Output
}

// Events returns events of all outputs in order.
func (r *Receipt) Events() []*Event {
	var events []*Event
	for _, o := range r.Outputs {
		events = append(events, o.Events...)
	}
	return events
}
