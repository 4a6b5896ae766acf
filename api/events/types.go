// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/thor"
)

type LogMeta struct {
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	TxID           thor.Bytes32 `json:"txID"`
	TxOrigin       thor.Address `json:"txOrigin"`
	TxIndex        uint32       `json:"txIndex"`
	LogIndex       uint32       `json:"logIndex"`
}

// FilteredEvent only comes from one contract. Name is set for builtin events.
type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Name    string          `json:"name,omitempty"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

// ConvertEvent converts a logdb.Event into a json format Event.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
			TxIndex:        event.TxIndex,
			LogIndex:       event.LogIndex,
		},
	}
	fe.Topics = make([]*thor.Bytes32, 0)
	for i := 0; i < 5; i++ {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	if c, ok := builtin.Lookup(event.Address); ok && event.Topics[0] != nil {
		if ev, ok := c.ABI.EventByID(*event.Topics[0]); ok {
			fe.Name = ev.Name()
		}
	}
	return fe
}

type TopicSet struct {
	Topic0 *thor.Bytes32 `json:"topic0"`
	Topic1 *thor.Bytes32 `json:"topic1"`
	Topic2 *thor.Bytes32 `json:"topic2"`
	Topic3 *thor.Bytes32 `json:"topic3"`
	Topic4 *thor.Bytes32 `json:"topic4"`
}

type EventCriteria struct {
	Address  *thor.Address `json:"address"`
	TxOrigin *thor.Address `json:"txOrigin"`
	TopicSet
}

type Range struct {
	From *uint32 `json:"from"`
	To   *uint32 `json:"to"`
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

// convertEventFilter fills an open range end with best.
func convertEventFilter(ef *EventFilter, best uint32, limit uint64) (*logdb.EventFilter, error) {
	filter := &logdb.EventFilter{
		Options: &logdb.Options{Limit: limit},
		Order:   ef.Order,
	}
	switch ef.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, fmt.Errorf("order: unsupported %q", ef.Order)
	}
	if ef.Range != nil {
		r := &logdb.Range{To: best}
		if ef.Range.From != nil {
			r.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			r.To = *ef.Range.To
		}
		if r.From > r.To {
			return nil, fmt.Errorf("range: from %d is greater than to %d", r.From, r.To)
		}
		filter.Range = r
	}
	if ef.Options != nil {
		filter.Options.Offset = ef.Options.Offset
		if ef.Options.Limit != nil {
			filter.Options.Limit = *ef.Options.Limit
		}
	}
	for i, c := range ef.CriteriaSet {
		if c == nil {
			return nil, fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		filter.CriteriaSet = append(filter.CriteriaSet, &logdb.EventCriteria{
			Address:  c.Address,
			TxOrigin: c.TxOrigin,
			Topics:   [5]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4},
		})
	}
	return filter, nil
}
