// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/builtin"
	"github.com/vechain/stakedcall/genesis"
	"github.com/vechain/stakedcall/kv"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/logdb"
	"github.com/vechain/stakedcall/metrics"
	"github.com/vechain/stakedcall/runtime"
	"github.com/vechain/stakedcall/state"
	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
	"github.com/vechain/stakedcall/xenv"
)

var (
	logger = log.WithContext("pkg", "node")

	metricOpenOptions = metrics.LazyLoadGauge("option_open_count")
	metricTxCount     = metrics.LazyLoadCounterVec("node_tx_count", []string{"result"})

	errKnownTx            = errors.New("known tx")
	errInvalidSignature   = errors.New("invalid signature")
	errChainTagMismatched = errors.New("chain tag mismatched")
	errGenesisMismatched  = errors.New("database belongs to another genesis")
)

const (
	stateStoreName = "st"
	metaStoreName  = "mt"
	txStoreName    = "tx"
)

var (
	genesisKey = []byte("genesis")
	bestKey    = []byte("best")
)

// IsBadTx returns whether err is caused by the tx itself rather than the node.
func IsBadTx(err error) bool {
	return errors.Is(err, errKnownTx) ||
		errors.Is(err, errChainTagMismatched) ||
		errors.Is(err, errInvalidSignature)
}

// Block is the position of the newest executed transaction.
// Every transaction is packed into a block of its own.
type Block struct {
	Number uint32
	Time   uint64
}

// Node executes transactions one at a time against the committed state.
type Node struct {
	mu      sync.Mutex
	db      kv.Store
	logDB   *logdb.LogDB
	genesis *genesis.Genesis
	state   *state.State
	best    Block
	clock   func() uint64

	eventFeed event.Feed
	scope     event.SubscriptionScope
}

// New opens the node on db. An empty db is initialized from gen.
// clock returns the wall time in unix seconds, nil selects the system clock.
func New(db kv.Store, logDB *logdb.LogDB, gen *genesis.Genesis, clock func() uint64) (*Node, error) {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	n := &Node{
		db:      db,
		logDB:   logDB,
		genesis: gen,
		state:   state.New(kv.Bucket(stateStoreName).NewGetter(db)),
		clock:   clock,
	}

	meta := kv.Bucket(metaStoreName).NewGetter(db)
	id, err := meta.Get(genesisKey)
	if err != nil && !meta.IsNotFound(err) {
		return nil, errors.Wrap(err, "read genesis id")
	}
	if id == nil {
		if err := n.initGenesis(); err != nil {
			return nil, err
		}
	} else {
		if thor.BytesToBytes32(id) != gen.ID() {
			return nil, errGenesisMismatched
		}
		data, err := meta.Get(bestKey)
		if err != nil {
			return nil, errors.Wrap(err, "read best block")
		}
		n.best = decodeBlock(data)
	}

	n.updateGauges()
	logger.Info("node ready", "genesis", gen.ID(), "best", n.best.Number)
	return n, nil
}

func (n *Node) initGenesis() error {
	if err := n.genesis.Build(n.state); err != nil {
		return errors.WithMessage(err, "build genesis")
	}
	n.best = Block{Number: 0, Time: n.genesis.LaunchTime()}

	batch := n.db.NewBatch()
	if _, err := n.state.Commit(kv.Bucket(stateStoreName).NewPutter(batch)); err != nil {
		return err
	}
	meta := kv.Bucket(metaStoreName).NewPutter(batch)
	if err := meta.Put(genesisKey, n.genesis.ID().Bytes()); err != nil {
		return err
	}
	if err := meta.Put(bestKey, encodeBlock(n.best)); err != nil {
		return err
	}
	return errors.Wrap(batch.Write(), "write genesis")
}

func encodeBlock(b Block) []byte {
	data := make([]byte, 12)
	binary.BigEndian.PutUint32(data, b.Number)
	binary.BigEndian.PutUint64(data[4:], b.Time)
	return data
}

func decodeBlock(data []byte) Block {
	if len(data) < 12 {
		return Block{}
	}
	return Block{
		Number: binary.BigEndian.Uint32(data),
		Time:   binary.BigEndian.Uint64(data[4:]),
	}
}

func (n *Node) Genesis() *genesis.Genesis { return n.genesis }
func (n *Node) LogDB() *logdb.LogDB       { return n.logDB }

// Best returns the newest block.
func (n *Node) Best() Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.best
}

// Now returns the timestamp the next block would carry.
func (n *Node) Now() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.nextBlock().Time
}

// nextBlock never goes back in time even if the wall clock does.
func (n *Node) nextBlock() *xenv.BlockContext {
	now := n.clock()
	if now < n.best.Time {
		now = n.best.Time
	}
	return &xenv.BlockContext{Number: n.best.Number + 1, Time: now}
}

// ExecuteTransaction executes trx in a new block and commits the result.
// A reverted transaction is committed too, leaving only its receipt.
func (n *Node) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if trx.ChainTag() != n.genesis.ChainTag() {
		return nil, errChainTagMismatched
	}
	txs := kv.Bucket(txStoreName).NewGetter(n.db)
	if _, err := trx.Origin(); err != nil {
		return nil, errors.Wrap(errInvalidSignature, err.Error())
	}
	if has, err := txs.Has(trx.ID().Bytes()); err != nil {
		return nil, err
	} else if has {
		return nil, errKnownTx
	}

	blockCtx := n.nextBlock()
	receipt, err := runtime.New(n.state, blockCtx).ExecuteTransaction(trx)
	if err != nil {
		metricTxCount().AddWithLabel(1, map[string]string{"result": "failed"})
		return nil, err
	}

	next := Block{Number: blockCtx.Number, Time: blockCtx.Time}
	batch := n.db.NewBatch()
	if _, err := n.state.Commit(kv.Bucket(stateStoreName).NewPutter(batch)); err != nil {
		return nil, err
	}
	if err := kv.Bucket(txStoreName).NewPutter(batch).Put(trx.ID().Bytes(), encodeBlock(next)); err != nil {
		return nil, err
	}
	if err := kv.Bucket(metaStoreName).NewPutter(batch).Put(bestKey, encodeBlock(next)); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	n.best = next

	result := "success"
	if receipt.Reverted {
		result = "reverted"
	}
	metricTxCount().AddWithLabel(1, map[string]string{"result": result})
	n.updateGauges()

	if n.logDB != nil {
		w := n.logDB.NewWriter()
		if err := w.Write([]*tx.Receipt{receipt}); err != nil {
			return nil, err
		}
		events, err := w.Commit()
		if err != nil {
			return nil, err
		}
		if len(events) > 0 {
			n.eventFeed.Send(events)
		}
	}

	logger.Debug("tx executed", "id", receipt.TxID, "block", next.Number, "reverted", receipt.Reverted)
	return receipt, nil
}

// Call runs clause as caller on top of the newest state and discards the effects.
func (n *Node) Call(caller thor.Address, clause *tx.Clause) (*tx.Output, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return runtime.New(n.state, n.nextBlock()).Call(caller, clause)
}

// ViewState runs fn with the newest state. fn must not modify it.
func (n *Node) ViewState(fn func(st *state.State, best Block) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	cp := n.state.NewCheckpoint()
	defer n.state.RevertTo(cp)
	return fn(n.state, n.best)
}

// SubscribeEvents delivers the events of each committed transaction to ch.
func (n *Node) SubscribeEvents(ch chan<- []*logdb.Event) event.Subscription {
	return n.scope.Track(n.eventFeed.Subscribe(ch))
}

// Close closes all subscriptions.
func (n *Node) Close() {
	n.scope.Close()
}

func (n *Node) updateGauges() {
	if metrics.NoOp() {
		return
	}
	open, err := builtin.Option.WithState(n.state).OpenCount()
	if err != nil {
		logger.Warn("failed to read open options", "err", err)
		return
	}
	metricOpenOptions().Set(int64(open))
}
