// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package options

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/state"
)

type Options struct {
	node *node.Node
}

func New(n *node.Node) *Options {
	return &Options{n}
}

func (o *Options) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	var summary Summary
	err := o.node.ViewState(func(st *state.State, _ node.Block) error {
		engine := builtin.Option.WithState(st)

		owner, err := engine.Owner()
		if err != nil {
			return err
		}
		terms, err := engine.Terms()
		if err != nil {
			return err
		}
		shares, err := engine.TotalShares()
		if err != nil {
			return err
		}
		staked, err := engine.StakedBalance()
		if err != nil {
			return err
		}
		count, err := engine.OptionCount()
		if err != nil {
			return err
		}
		open, err := engine.OpenCount()
		if err != nil {
			return err
		}
		summary = Summary{
			Owner:         owner,
			Terms:         convertTerms(terms),
			TotalShares:   hexOrDecimal(shares),
			StakedBalance: hexOrDecimal(staked),
			OptionCount:   count,
			OpenCount:     open,
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &summary)
}

func (o *Options) handleGetOption(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}

	now := o.node.Now()
	var result *Option
	err = o.node.ViewState(func(st *state.State, _ node.Block) error {
		opt, err := builtin.Option.WithState(st).GetOption(id)
		if err != nil {
			return err
		}
		result = convertOption(opt, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, reverts.ErrNotFound) {
			return restutil.NotFound(err)
		}
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (o *Options) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /options").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetSummary))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /options/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetOption))
}
