// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockNumber uint32
	TxIndex     uint32
	LogIndex    uint32
	BlockTime   uint64
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	Address     thor.Address // always a contract address
	Topics      [5]*thor.Bytes32
	Data        []byte
}

func newEvent(receipt *tx.Receipt, txIndex, logIndex uint32, ev *tx.Event) *Event {
	event := &Event{
		BlockNumber: receipt.BlockNumber,
		TxIndex:     txIndex,
		LogIndex:    logIndex,
		BlockTime:   receipt.BlockTime,
		TxID:        receipt.TxID,
		TxOrigin:    receipt.TxOrigin,
		Address:     ev.Address,
		Data:        ev.Data,
	}
	for i := 0; i < len(ev.Topics) && i < len(event.Topics); i++ {
		topic := ev.Topics[i]
		event.Topics[i] = &topic
	}
	return event
}

// Range is an inclusive range of block numbers.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// EventCriteria matches events by emitter and topics. Nil fields match anything.
type EventCriteria struct {
	Address  *thor.Address
	TxOrigin *thor.Address
	Topics   [5]*thor.Bytes32
}

func (c *EventCriteria) toWhereCondition() (cond string, args []any) {
	cond = "1"
	if c.Address != nil {
		cond += " AND address = ?"
		args = append(args, c.Address.Bytes())
	}
	if c.TxOrigin != nil {
		cond += " AND txOrigin = ?"
		args = append(args, c.TxOrigin.Bytes())
	}
	for i, topic := range c.Topics {
		if topic != nil {
			cond += " AND topic" + string(rune('0'+i)) + " = ?"
			args = append(args, topic.Bytes())
		}
	}
	return
}

// EventFilter selects events. The criteria are OR-ed.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order
}
