// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
)

const DefaultDecimals = thor.PriceDecimals

var (
	slotReporter    = thor.BytesToBytes32([]byte("oracle.reporter"))
	slotDecimals    = thor.BytesToBytes32([]byte("oracle.decimals"))
	slotLatestRound = thor.BytesToBytes32([]byte("oracle.latestRound"))
	slotRounds      = thor.BytesToBytes32([]byte("oracle.rounds"))

	logger = log.WithContext("pkg", "oracle")
)

// Round is a price report. A round that was opened but not answered
// carries the previous answer and AnsweredInRound < RoundID.
type Round struct {
	RoundID         uint64
	Answer          *big.Int
	StartedAt       uint64
	UpdatedAt       uint64
	AnsweredInRound uint64
}

// storedRound is the storage form of Round. rlp has no signed integers.
type storedRound struct {
	RoundID         uint64
	Answer          *big.Int
	Negative        bool
	StartedAt       uint64
	UpdatedAt       uint64
	AnsweredInRound uint64
}

type roundKey uint64

func (k roundKey) Bytes() []byte {
	return new(big.Int).SetUint64(uint64(k)).Bytes()
}

// Oracle binder of the price feed contract.
type Oracle struct {
	addr        thor.Address
	reporter    *solidity.Address
	decimals    *solidity.Uint64
	latestRound *solidity.Uint64
	rounds      *solidity.Mapping[roundKey, *storedRound]
}

func New(addr thor.Address, state *state.State) *Oracle {
	ctx := solidity.NewContext(addr, state)
	return &Oracle{
		addr:        addr,
		reporter:    solidity.NewAddress(ctx, slotReporter),
		decimals:    solidity.NewUint64(ctx, slotDecimals),
		latestRound: solidity.NewUint64(ctx, slotLatestRound),
		rounds:      solidity.NewMapping[roundKey, *storedRound](ctx, slotRounds),
	}
}

func (o *Oracle) Address() thor.Address {
	return o.addr
}

// Init sets the reporter and the number of decimals of answers.
// Zero decimals selects DefaultDecimals.
func (o *Oracle) Init(reporter thor.Address, decimals uint8) error {
	if reporter.IsZero() {
		return reverts.ErrInvalidConfiguration
	}
	if decimals == 0 {
		decimals = DefaultDecimals
	}
	o.reporter.Set(&reporter)
	o.decimals.Set(uint64(decimals))
	return nil
}

func (o *Oracle) Reporter() (thor.Address, error) {
	return o.reporter.Get()
}

func (o *Oracle) Decimals() (uint8, error) {
	d, err := o.decimals.Get()
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return DefaultDecimals, nil
	}
	return uint8(d), nil
}

func (o *Oracle) requireReporter(caller thor.Address) error {
	reporter, err := o.reporter.Get()
	if err != nil {
		return err
	}
	if reporter.IsZero() || caller != reporter {
		return reverts.ErrUnauthorized
	}
	return nil
}

// Submit opens a new round and answers it with price at time now.
func (o *Oracle) Submit(caller thor.Address, price *big.Int, now uint64) (*Round, error) {
	if err := o.requireReporter(caller); err != nil {
		return nil, err
	}
	latest, err := o.latestRound.Get()
	if err != nil {
		return nil, err
	}
	id := latest + 1
	round := &Round{
		RoundID:         id,
		Answer:          new(big.Int).Set(price),
		StartedAt:       now,
		UpdatedAt:       now,
		AnsweredInRound: id,
	}
	if err := o.store(round); err != nil {
		return nil, err
	}
	logger.Debug("price submitted", "round", id, "answer", price)
	return round, nil
}

// StartRound opens a new round without answering it. The previous answer
// is carried over, which leaves the feed stale until the next Submit.
func (o *Oracle) StartRound(caller thor.Address, now uint64) (*Round, error) {
	if err := o.requireReporter(caller); err != nil {
		return nil, err
	}
	prev, err := o.LatestRoundData()
	if err != nil {
		return nil, err
	}
	round := &Round{
		RoundID:         prev.RoundID + 1,
		Answer:          prev.Answer,
		StartedAt:       now,
		UpdatedAt:       prev.UpdatedAt,
		AnsweredInRound: prev.AnsweredInRound,
	}
	if err := o.store(round); err != nil {
		return nil, err
	}
	logger.Debug("round started", "round", round.RoundID)
	return round, nil
}

// LatestRoundData returns the latest round. Before the first round it
// returns an empty round with UpdatedAt == 0.
func (o *Oracle) LatestRoundData() (*Round, error) {
	latest, err := o.latestRound.Get()
	if err != nil {
		return nil, err
	}
	if latest == 0 {
		return &Round{Answer: new(big.Int)}, nil
	}
	return o.GetRound(latest)
}

// GetRound returns the round with the given id.
func (o *Oracle) GetRound(id uint64) (*Round, error) {
	stored, err := o.rounds.Get(roundKey(id))
	if err != nil {
		return nil, err
	}
	answer := new(big.Int)
	if stored.Answer != nil {
		answer.Set(stored.Answer)
	}
	if stored.Negative {
		answer.Neg(answer)
	}
	return &Round{
		RoundID:         stored.RoundID,
		Answer:          answer,
		StartedAt:       stored.StartedAt,
		UpdatedAt:       stored.UpdatedAt,
		AnsweredInRound: stored.AnsweredInRound,
	}, nil
}

func (o *Oracle) store(r *Round) error {
	stored := &storedRound{
		RoundID:         r.RoundID,
		Answer:          new(big.Int).Abs(r.Answer),
		Negative:        r.Answer.Sign() < 0,
		StartedAt:       r.StartedAt,
		UpdatedAt:       r.UpdatedAt,
		AnsweredInRound: r.AnsweredInRound,
	}
	if err := o.rounds.Set(roundKey(r.RoundID), stored); err != nil {
		return err
	}
	o.latestRound.Set(r.RoundID)
	return nil
}
