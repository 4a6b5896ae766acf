// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/abi"
	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     thor.Bytes32
	Origin thor.Address
}

// Message is what a frame was called with.
type Message struct {
	Caller thor.Address
	To     thor.Address
	Value  *big.Int
	Data   []byte
}

// Host runs the work that leaves the current frame.
type Host interface {
	// NestedCall runs a call from env.To().
	NestedCall(env *Environment, to thor.Address, value *big.Int, data []byte) ([]byte, error)
	// Notify runs the receiver hook of recipient, if any.
	Notify(env *Environment, recipient, token thor.Address, amount *big.Int) error
}

type vmError struct {
	cause error
}

func (e *vmError) Error() string {
	return e.cause.Error()
}

// Environment an env to execute native method.
type Environment struct {
	method   *abi.Method
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	msg      *Message
	depth    int
	host     Host
	events   []*tx.Event
}

// New create a new env. method is nil for frames that do not run a contract method.
func New(
	method *abi.Method,
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	msg *Message,
	depth int,
	host Host,
) *Environment {
	return &Environment{
		method:   method,
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		msg:      msg,
		depth:    depth,
		host:     host,
	}
}

func (env *Environment) Method() *abi.Method                     { return env.method }
func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Caller() thor.Address                    { return env.msg.Caller }
func (env *Environment) To() thor.Address                        { return env.msg.To }
func (env *Environment) Depth() int                              { return env.depth }
func (env *Environment) Events() []*tx.Event                     { return env.events }

// Value returns a copy of the value sent with the call.
func (env *Environment) Value() *big.Int {
	if env.msg.Value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(env.msg.Value)
}

func (env *Environment) ParseArgs(val any) {
	if err := env.method.DecodeInput(env.msg.Data, val); err != nil {
		panic(&vmError{errors.WithMessage(err, "decode native input")})
	}
}

func (env *Environment) Require(cond bool, err error) {
	if !cond {
		panic(&vmError{err})
	}
}

func (env *Environment) Stop(err error) {
	panic(&vmError{err})
}

// Log emits an event from the current contract.
func (env *Environment) Log(event *abi.Event, topics []thor.Bytes32, args ...any) {
	data, err := event.Encode(args...)
	if err != nil {
		panic(errors.WithMessage(err, "encode native event"))
	}
	allTopics := make([]thor.Bytes32, 0, len(topics)+1)
	allTopics = append(allTopics, event.ID())
	allTopics = append(allTopics, topics...)

	env.events = append(env.events, &tx.Event{
		Address: env.msg.To,
		Topics:  allTopics,
		Data:    data,
	})
}

// AddEvents appends the events of a finished nested frame.
func (env *Environment) AddEvents(events []*tx.Event) {
	env.events = append(env.events, events...)
}

// Call makes a nested call with this frame's address as the caller.
func (env *Environment) Call(to thor.Address, value *big.Int, data []byte) ([]byte, error) {
	return env.host.NestedCall(env, to, value, data)
}

// NotifyReceived tells recipient about a payment made by this frame.
func (env *Environment) NotifyReceived(recipient, token thor.Address, amount *big.Int) error {
	if env.host == nil {
		return nil
	}
	return env.host.Notify(env, recipient, token, amount)
}

// Run executes proc as the body of the method and encodes its output.
func (env *Environment) Run(proc func(env *Environment) ([]any, error)) (data []byte, err error) {
	if env.method == nil {
		return nil, reverts.ErrUnsupported
	}
	if env.msg.Value != nil && env.msg.Value.Sign() != 0 && !env.method.Payable() {
		return nil, reverts.ErrNonPayable
	}

	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				err = rec.cause
			} else {
				panic(e)
			}
		}
	}()

	output, err := proc(env)
	if err != nil {
		return nil, err
	}
	data, err = env.method.EncodeOutput(output...)
	if err != nil {
		panic(errors.WithMessage(err, "encode native output"))
	}
	return
}

// AddressTopic left pads addr into an event topic.
func AddressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}
