// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/builtin"
	builtinoracle "github.com/vechain/stakedcall/builtin/oracle"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

// Round for json marshal. Answer keeps the sign, so it is a decimal string.
type Round struct {
	RoundID         uint64       `json:"roundId"`
	Answer          string       `json:"answer"`
	AnswerText      string       `json:"answerText"`
	StartedAt       uint64       `json:"startedAt"`
	UpdatedAt       uint64       `json:"updatedAt"`
	AnsweredInRound uint64       `json:"answeredInRound"`
	Reporter        thor.Address `json:"reporter"`
}

type Oracle struct {
	node *node.Node
}

func New(n *node.Node) *Oracle {
	return &Oracle{n}
}

func (o *Oracle) getRound(load func(*builtinoracle.Oracle) (*builtinoracle.Round, error)) (*Round, error) {
	var result *Round
	err := o.node.ViewState(func(st *state.State, _ node.Block) error {
		feed := builtin.Oracle.WithState(st)
		round, err := load(feed)
		if err != nil {
			return err
		}
		reporter, err := feed.Reporter()
		if err != nil {
			return err
		}
		answer := round.Answer
		if answer == nil {
			answer = new(big.Int)
		}
		result = &Round{
			RoundID:         round.RoundID,
			Answer:          answer.String(),
			AnswerText:      thor.FormatPrice(answer),
			StartedAt:       round.StartedAt,
			UpdatedAt:       round.UpdatedAt,
			AnsweredInRound: round.AnsweredInRound,
			Reporter:        reporter,
		}
		return nil
	})
	return result, err
}

func (o *Oracle) handleGetLatest(w http.ResponseWriter, _ *http.Request) error {
	round, err := o.getRound((*builtinoracle.Oracle).LatestRoundData)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, round)
}

func (o *Oracle) handleGetRound(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	round, err := o.getRound(func(feed *builtinoracle.Oracle) (*builtinoracle.Round, error) {
		return feed.GetRound(id)
	})
	if err != nil {
		return err
	}
	if round.RoundID == 0 {
		return restutil.NotFound(errors.New("round not found"))
	}
	return restutil.WriteJSON(w, round)
}

func (o *Oracle) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /oracle").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetLatest))
	sub.Path("/rounds/{id}").
		Methods(http.MethodGet).
		Name("GET /oracle/rounds/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleGetRound))
}
