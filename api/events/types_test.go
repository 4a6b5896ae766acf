// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/thor"
)

func u32(v uint32) *uint32 { return &v }
func u64(v uint64) *uint64 { return &v }

func TestConvertEventFilter(t *testing.T) {
	topic := thor.BytesToBytes32([]byte("topic"))

	tests := []struct {
		name    string
		filter  *EventFilter
		want    *logdb.EventFilter
		wantErr string
	}{
		{
			name:   "empty",
			filter: &EventFilter{},
			want:   &logdb.EventFilter{Options: &logdb.Options{Limit: 100}},
		},
		{
			name:   "open range ends at best",
			filter: &EventFilter{Range: &Range{From: u32(3)}},
			want: &logdb.EventFilter{
				Range:   &logdb.Range{From: 3, To: 10},
				Options: &logdb.Options{Limit: 100},
			},
		},
		{
			name: "options and criteria",
			filter: &EventFilter{
				Options:     &Options{Offset: 5, Limit: u64(7)},
				CriteriaSet: []*EventCriteria{{Address: &thor.OptionAddress, TopicSet: TopicSet{Topic2: &topic}}},
				Order:       logdb.DESC,
			},
			want: &logdb.EventFilter{
				Options: &logdb.Options{Offset: 5, Limit: 7},
				CriteriaSet: []*logdb.EventCriteria{{
					Address: &thor.OptionAddress,
					Topics:  [5]*thor.Bytes32{nil, nil, &topic, nil, nil},
				}},
				Order: logdb.DESC,
			},
		},
		{
			name:    "inverted range",
			filter:  &EventFilter{Range: &Range{From: u32(11)}},
			wantErr: "range: from 11 is greater than to 10",
		},
		{
			name:    "null criteria",
			filter:  &EventFilter{CriteriaSet: []*EventCriteria{nil}},
			wantErr: "criteriaSet[0]: null not allowed",
		},
		{
			name:    "bad order",
			filter:  &EventFilter{Order: "up"},
			wantErr: `order: unsupported "up"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertEventFilter(tt.filter, 10, 100)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
