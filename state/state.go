// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakedcall/cache"
	"github.com/vechain/stakedcall/kv"
	"github.com/vechain/stakedcall/stackedmap"
	"github.com/vechain/stakedcall/thor"
)

const (
	balancePrefix = "b"
	storagePrefix = "s"

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type balanceKey thor.Address

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k balanceKey) dbKey() []byte {
	return append([]byte(balancePrefix), k[:]...)
}

func (k storageKey) dbKey() []byte {
	buf := make([]byte, 0, len(storagePrefix)+thor.AddressLength+32)
	buf = append(buf, storagePrefix...)
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

// State manages balances and contract storage.
type State struct {
	db    kv.Getter // committed data, may be nil
	cache *cache.LRU
	sm    *stackedmap.StackedMap[any, any]
}

// New create state object on top of the committed data in db.
// A nil db means an empty state.
func New(db kv.Getter) *State {
	c, _ := cache.NewLRU(defaultCacheSize)
	s := &State{db: db, cache: c}
	s.resetJournal()
	return s
}

func (s *State) resetJournal() {
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.cacheGetter(key)
	})
}

// cacheGetter implements stackedmap.MapGetter, loading committed values.
func (s *State) cacheGetter(key any) (any, bool, error) {
	v, err := s.cache.GetOrLoad(key, s.load)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *State) load(key any) (any, error) {
	var dbKey []byte
	switch k := key.(type) {
	case balanceKey:
		dbKey = k.dbKey()
	case storageKey:
		dbKey = k.dbKey()
	default:
		panic(fmt.Errorf("unexpected key type %+v", key))
	}

	var raw []byte
	if s.db != nil {
		data, err := s.db.Get(dbKey)
		if err != nil && !s.db.IsNotFound(err) {
			return nil, err
		}
		raw = data
	}

	if _, ok := key.(balanceKey); ok {
		return new(big.Int).SetBytes(raw), nil
	}
	return rlp.RawValue(raw), nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr thor.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr thor.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v for %v", balance, addr)}
	}
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// AddBalance adds amount to the balance of the given address.
func (s *State) AddBalance(addr thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, bal.Add(bal, amount))
}

// SubBalance subtracts amount from the balance of the given address.
// It returns false if the balance is insufficient.
func (s *State) SubBalance(addr thor.Address, amount *big.Int) (bool, error) {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	if amount.Sign() == 0 {
		return true, nil
	}
	return true, s.SetBalance(addr, bal.Sub(bal, amount))
}

// Transfer moves amount of native asset between two accounts.
// It returns false if the sender's balance is insufficient.
func (s *State) Transfer(from, to thor.Address, amount *big.Int) (bool, error) {
	ok, err := s.SubBalance(from, amount)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.AddBalance(to, amount)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// dec receives an empty slice if the slot was never written.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all changes since the last commit into putter and resets the journal.
// It returns the number of entries written.
func (s *State) Commit(putter kv.Putter) (int, error) {
	changes := make(map[any]any)
	var order []any
	s.sm.Journal(func(k, v any) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})

	for _, k := range order {
		var err error
		switch key := k.(type) {
		case balanceKey:
			bal := changes[k].(*big.Int)
			if bal.Sign() == 0 {
				err = putter.Delete(key.dbKey())
			} else {
				err = putter.Put(key.dbKey(), bal.Bytes())
			}
		case storageKey:
			raw := changes[k].(rlp.RawValue)
			if len(raw) == 0 {
				err = putter.Delete(key.dbKey())
			} else {
				err = putter.Put(key.dbKey(), raw)
			}
		}
		if err != nil {
			return 0, &Error{err}
		}
	}

	for _, k := range order {
		s.cache.Add(k, changes[k])
	}
	s.resetJournal()
	return len(order), nil
}
