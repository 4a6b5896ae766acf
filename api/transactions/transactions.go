// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/node"
)

type Transactions struct {
	node *node.Node
}

func New(n *node.Node) *Transactions {
	return &Transactions{n}
}

// handleSendTransaction executes the transaction immediately. A reverted
// transaction is still accepted and reported through its receipt.
func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw RawTx
	if err := restutil.ParseJSON(req.Body, &raw); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	trx, err := raw.decode()
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "raw"))
	}

	receipt, err := t.node.ExecuteTransaction(trx)
	if err != nil {
		if node.IsBadTx(err) {
			return restutil.BadRequest(errors.WithMessage(err, "bad tx"))
		}
		return err
	}
	return restutil.WriteJSON(w, &SendResult{
		ID:      trx.ID(),
		Receipt: convertReceipt(receipt),
	})
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transactions").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleSendTransaction))
}
