// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/abi"
	"github.com/vechain/stakedcall/genesis"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/lvldb"
	"github.com/vechain/stakedcall/node"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// Chain is a devnet node on in-memory databases with a manual clock.
type Chain struct {
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	node  *node.Node

	mu    sync.Mutex
	now   uint64
	nonce uint64
}

// New creates a devnet node whose clock starts one minute after launch.
func New() (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}
	c := &Chain{
		db:    db,
		logDB: logDB,
		now:   genesis.DevConfig().LaunchTime + 60,
	}
	c.node, err = node.New(db, logDB, genesis.NewDevnet(), c.Now)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Chain) Node() *node.Node { return c.node }

// Now returns the current time of the manual clock.
func (c *Chain) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AdvanceTime moves the clock forward by seconds.
func (c *Chain) AdvanceTime(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

// BuildTx signs a transaction of clauses by acc. Each call takes a fresh nonce.
func (c *Chain) BuildTx(acc genesis.DevAccount, clauses ...*tx.Clause) *tx.Transaction {
	c.mu.Lock()
	c.nonce++
	nonce := c.nonce
	c.mu.Unlock()

	b := tx.NewBuilder().ChainTag(c.node.Genesis().ChainTag()).Nonce(nonce)
	for _, clause := range clauses {
		b.Clause(clause)
	}
	return tx.MustSign(b.Build(), acc.PrivateKey)
}

// MintClauses executes clauses sent by acc and returns the receipt.
func (c *Chain) MintClauses(acc genesis.DevAccount, clauses ...*tx.Clause) (*tx.Receipt, error) {
	return c.node.ExecuteTransaction(c.BuildTx(acc, clauses...))
}

// Close closes the node and its databases.
func (c *Chain) Close() {
	if c.node != nil {
		c.node.Close()
	}
	c.logDB.Close()
	c.db.Close()
}

// Clause encodes a call of method on the contract at to. A nil value sends nothing.
func Clause(to thor.Address, contractABI *abi.ABI, value *big.Int, method string, args ...any) (*tx.Clause, error) {
	m, ok := contractABI.MethodByName(method)
	if !ok {
		return nil, errors.Errorf("method %q not found", method)
	}
	data, err := m.EncodeInput(args...)
	if err != nil {
		return nil, errors.WithMessage(err, method)
	}
	clause := tx.NewClause(to).WithData(data)
	if value != nil {
		clause = clause.WithValue(value)
	}
	return clause, nil
}
