// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/node"
)

type Events struct {
	node  *node.Node
	db    *logdb.LogDB
	limit uint64
}

func New(n *node.Node, db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		n,
		db,
		logsLimit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var ef EventFilter
	if err := restutil.ParseJSON(req.Body, &ef); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if ef.Options != nil && ef.Options.Limit != nil && *ef.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if ef.Options != nil && ef.Options.Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}

	filter, err := convertEventFilter(&ef, e.node.Best().Number, e.limit)
	if err != nil {
		return restutil.BadRequest(err)
	}
	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = ConvertEvent(ev)
	}
	return restutil.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
