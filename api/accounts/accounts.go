// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

type Accounts struct {
	node *node.Node
}

func New(n *node.Node) *Accounts {
	return &Accounts{n}
}

func (a *Accounts) getAccount(addr thor.Address) (*Account, error) {
	var acc Account
	err := a.node.ViewState(func(st *state.State, _ node.Block) error {
		balance, err := st.GetBalance(addr)
		if err != nil {
			return err
		}
		pool := builtin.Staking.WithState(st)
		staked, err := pool.BalanceOf(addr)
		if err != nil {
			return err
		}
		shares, err := pool.SharesOf(addr)
		if err != nil {
			return err
		}
		acc = Account{
			Balance: math.HexOrDecimal256(*balance),
			Staked:  math.HexOrDecimal256(*staked),
			Shares:  math.HexOrDecimal256(*shares),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, acc)
}

// handleCallContract runs a call on the newest state without committing it.
// Reverts are reported in the result rather than as http errors.
func (a *Accounts) handleCallContract(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	var body ContractCall
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(body.Data)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "data"))
	}
	value := new(big.Int)
	if body.Value != nil {
		value = (*big.Int)(body.Value)
		if value.Sign() < 0 {
			return restutil.BadRequest(errors.New("value: negative"))
		}
	}
	var caller thor.Address
	if body.Caller != nil {
		caller = *body.Caller
	}

	output, err := a.node.Call(caller, tx.NewClause(addr).WithValue(value).WithData(data))
	if err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.WriteJSON(w, &CallResult{
				Data:         "0x",
				Events:       []*Event{},
				Reverted:     true,
				RevertReason: err.Error(),
			})
		}
		return err
	}
	return restutil.WriteJSON(w, convertOutput(output))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCallContract))
}
