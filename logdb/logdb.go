// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakedcall/thor"
	"github.com/vechain/stakedcall/tx"
)

// MaxLimit caps the number of events a single filter returns.
const MaxLimit = 1000

// LogDB stores the events of executed transactions.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open log db")
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// every connection would see its own database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns the events matching filter, ordered by position in the chain.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		query = "SELECT seq, blockTime, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data FROM event WHERE 1"
	)

	if filter.Range != nil {
		from, to, err := seqRange(filter.Range)
		if err != nil {
			return nil, err
		}
		query += " AND seq >= ? AND seq <= ?"
		args = append(args, from, to)
	}

	if len(filter.CriteriaSet) > 0 {
		query += " AND ("
		for i, c := range filter.CriteriaSet {
			cond, cargs := c.toWhereCondition()
			if i > 0 {
				query += " OR "
			}
			query += "(" + cond + ")"
			args = append(args, cargs...)
		}
		query += ")"
	}

	if filter.Order == DESC {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}

	offset, limit := uint64(0), uint64(MaxLimit)
	if filter.Options != nil {
		offset = filter.Options.Offset
		if filter.Options.Limit < limit {
			limit = filter.Options.Limit
		}
	}
	if offset > math.MaxInt64 {
		return nil, errors.New("offset out of range")
	}
	query += " LIMIT ?, ?"
	args = append(args, offset, limit)

	return db.queryEvents(ctx, query, args...)
}

func seqRange(r *Range) (sequence, sequence, error) {
	if r.From > r.To {
		return 0, 0, errors.New("invalid range")
	}
	to := r.To
	if to > blockNumMask {
		to = blockNumMask
	}
	from, err := newSequence(min(r.From, blockNumMask), 0, 0)
	if err != nil {
		return 0, 0, err
	}
	end, err := newSequence(to, txIndexMask, logIndexMask)
	if err != nil {
		return 0, 0, err
	}
	return from, end, nil
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(err, "prepare")
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq       sequence
			blockTime uint64
			txID      []byte
			txOrigin  []byte
			address   []byte
			topics    [5][]byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&blockTime,
			&txID,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: seq.BlockNumber(),
			TxIndex:     seq.TxIndex(),
			LogIndex:    seq.LogIndex(),
			BlockTime:   blockTime,
			TxID:        thor.BytesToBytes32(txID),
			TxOrigin:    thor.BytesToAddress(txOrigin),
			Address:     thor.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewestBlockNumber returns the number of the newest block that has events.
func (db *LogDB) NewestBlockNumber() (uint32, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).BlockNumber(), nil
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db.db}
}

// Writer is to write events of receipts in one sql transaction.
type Writer struct {
	db     *sql.DB
	events []*Event
}

// Write stages the events of receipts, which belong to one block, in order.
func (w *Writer) Write(receipts []*tx.Receipt) error {
	for i, receipt := range receipts {
		if receipt.Reverted {
			continue
		}
		var logIndex uint32
		for _, output := range receipt.Outputs {
			for _, ev := range output.Events {
				w.events = append(w.events, newEvent(receipt, uint32(i), logIndex, ev))
				logIndex++
			}
		}
	}
	return nil
}

// Commit commits accumulated events and returns them.
func (w *Writer) Commit() ([]*Event, error) {
	events := w.events
	if len(events) == 0 {
		return nil, nil
	}
	err := w.exec(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT INTO event(seq, blockTime, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ev := range events {
			seq, err := newSequence(ev.BlockNumber, ev.TxIndex, ev.LogIndex)
			if err != nil {
				return err
			}
			if _, err := stmt.Exec(
				seq,
				ev.BlockTime,
				ev.TxID.Bytes(),
				ev.TxOrigin.Bytes(),
				ev.Address.Bytes(),
				topicValue(ev.Topics[0]),
				topicValue(ev.Topics[1]),
				topicValue(ev.Topics[2]),
				topicValue(ev.Topics[3]),
				topicValue(ev.Topics[4]),
				ev.Data,
			); err != nil {
				return err
			}
		}
		return nil
	})
	w.events = nil
	if err != nil {
		return nil, errors.Wrap(err, "commit events")
	}
	metricWrittenEvents().Add(int64(len(events)))
	return events, nil
}

// Rollback drops the staged events.
func (w *Writer) Rollback() {
	w.events = nil
}

// UncommittedCount returns the count of staged events.
func (w *Writer) UncommittedCount() int {
	return len(w.events)
}

func (w *Writer) exec(fn func(*sql.Tx) error) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func topicValue(topic *thor.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
