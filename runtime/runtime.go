// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
	"github.com/vechain/stakedcall/xenv"
)

// MaxCallDepth limits nested calls made by receiver hooks.
const MaxCallDepth = 64

var (
	errCallTooDeep = reverts.New("max call depth exceeded")

	logger = log.WithContext("pkg", "runtime")
)

// Receiver is run when a contract pays recipient. token is the zero address
// for the native asset. The hook runs as recipient and may issue calls
// through env. Returning an error aborts the payment.
type Receiver func(env *xenv.Environment, token thor.Address, amount *big.Int) error

// Runtime is to support transaction execution.
type Runtime struct {
	state     *state.State
	blockCtx  *xenv.BlockContext
	receivers map[thor.Address]Receiver
}

// New create a Runtime object.
func New(state *state.State, blockCtx *xenv.BlockContext) *Runtime {
	return &Runtime{
		state:     state,
		blockCtx:  blockCtx,
		receivers: make(map[thor.Address]Receiver),
	}
}

func (rt *Runtime) State() *state.State              { return rt.state }
func (rt *Runtime) BlockContext() *xenv.BlockContext { return rt.blockCtx }

// SetReceiver registers the receiver hook of addr. A nil r removes it.
func (rt *Runtime) SetReceiver(addr thor.Address, r Receiver) {
	if r == nil {
		delete(rt.receivers, addr)
		return
	}
	rt.receivers[addr] = r
}

// ExecuteTransaction executes all clauses of tx atomically. A revert is
// reported in the receipt. The returned error is for txs that cannot be
// executed at all or for failures of the underlying state.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, err
	}
	txCtx := &xenv.TransactionContext{
		ID:     trx.ID(),
		Origin: origin,
	}
	receipt := &tx.Receipt{
		TxID:        txCtx.ID,
		TxOrigin:    origin,
		BlockNumber: rt.blockCtx.Number,
		BlockTime:   rt.blockCtx.Time,
	}

	checkpoint := rt.state.NewCheckpoint()
	for i, clause := range trx.Clauses() {
		data, events, err := rt.call(txCtx, origin, clause.To(), clause.Value(), clause.Data(), 0)
		if err != nil {
			rt.state.RevertTo(checkpoint)
			if !reverts.IsRevertErr(err) {
				logger.Error("failed to execute clause", "tx", txCtx.ID, "clause", i, "err", err)
				return nil, err
			}
			logger.Debug("tx reverted", "tx", txCtx.ID, "clause", i, "err", err)
			receipt.Reverted = true
			receipt.RevertReason = err.Error()
			receipt.BadClauseIndex = i
			receipt.Outputs = nil
			return receipt, nil
		}
		receipt.Outputs = append(receipt.Outputs, &tx.Output{Data: data, Events: events})
	}
	return receipt, nil
}

// Call runs a single clause as caller and throws its effects away.
// It is meant for reads.
func (rt *Runtime) Call(caller thor.Address, clause *tx.Clause) (*tx.Output, error) {
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)

	txCtx := &xenv.TransactionContext{Origin: caller}
	data, events, err := rt.call(txCtx, caller, clause.To(), clause.Value(), clause.Data(), 0)
	if err != nil {
		return nil, err
	}
	return &tx.Output{Data: data, Events: events}, nil
}

func (rt *Runtime) call(
	txCtx *xenv.TransactionContext,
	caller thor.Address,
	to thor.Address,
	value *big.Int,
	data []byte,
	depth int,
) (output []byte, events []*tx.Event, err error) {
	if depth > MaxCallDepth {
		return nil, nil, errCallTooDeep
	}

	checkpoint := rt.state.NewCheckpoint()
	defer func() {
		if err != nil {
			rt.state.RevertTo(checkpoint)
		}
	}()

	if value.Sign() < 0 {
		return nil, nil, reverts.ErrInsufficientFunds
	}
	if value.Sign() > 0 {
		ok, err := rt.state.Transfer(caller, to, value)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, reverts.ErrInsufficientFunds
		}
	}

	contract, isBuiltin := builtin.Lookup(to)
	if !isBuiltin {
		// plain account
		if value.Sign() > 0 {
			events, err := rt.notify(txCtx, caller, to, thor.Address{}, value, depth)
			if err != nil {
				return nil, nil, err
			}
			return nil, events, nil
		}
		return nil, nil, nil
	}

	if len(data) == 0 {
		if !contract.ABI.HasReceive() {
			return nil, nil, errors.WithMessage(reverts.ErrUnsupported, "no receive function")
		}
		return nil, nil, nil
	}

	method, run, found := builtin.FindNativeCall(to, data)
	if !found {
		return nil, nil, errors.WithMessage(reverts.ErrUnsupported, "unknown selector")
	}

	msg := &xenv.Message{Caller: caller, To: to, Value: value, Data: data}
	env := xenv.New(method, rt.state, rt.blockCtx, txCtx, msg, depth, rt)
	output, err = env.Run(run)
	if err != nil {
		return nil, nil, err
	}
	return output, env.Events(), nil
}

// NestedCall implements xenv.Host.
func (rt *Runtime) NestedCall(env *xenv.Environment, to thor.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	output, events, err := rt.call(env.TransactionContext(), env.To(), to, value, data, env.Depth()+1)
	if err != nil {
		return nil, err
	}
	env.AddEvents(events)
	return output, nil
}

// Notify implements xenv.Host.
func (rt *Runtime) Notify(env *xenv.Environment, recipient, token thor.Address, amount *big.Int) error {
	events, err := rt.notify(env.TransactionContext(), env.To(), recipient, token, amount, env.Depth()+1)
	if err != nil {
		return err
	}
	env.AddEvents(events)
	return nil
}

func (rt *Runtime) notify(
	txCtx *xenv.TransactionContext,
	payer thor.Address,
	recipient thor.Address,
	token thor.Address,
	amount *big.Int,
	depth int,
) ([]*tx.Event, error) {
	receiver := rt.receivers[recipient]
	if receiver == nil {
		return nil, nil
	}
	if depth > MaxCallDepth {
		return nil, errCallTooDeep
	}

	checkpoint := rt.state.NewCheckpoint()
	hookEnv := xenv.New(nil, rt.state, rt.blockCtx, txCtx,
		&xenv.Message{Caller: payer, To: recipient},
		depth, rt)

	if err := receiver(hookEnv, token, amount); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}
	return hookEnv.Events(), nil
}
