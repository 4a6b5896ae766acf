// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package option

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakedcall/builtin/reverts"
	"github.com/vechain/stakedcall/builtin/solidity"
	"github.com/vechain/stakedcall/thor"
)

var (
	slotLastID    = thor.BytesToBytes32([]byte("option.lastID"))
	slotOpenCount = thor.BytesToBytes32([]byte("option.openCount"))
	slotTerms     = thor.BytesToBytes32([]byte("option.terms"))
	slotOptions   = thor.BytesToBytes32([]byte("option.options"))
)

// Registry stores options by id. Ids start at 1 and are never reused.
type Registry struct {
	ctx       *solidity.Context
	lastID    *solidity.Uint64
	openCount *solidity.Uint64
	options   *solidity.Mapping[idKey, *Option]
}

func NewRegistry(ctx *solidity.Context) *Registry {
	return &Registry{
		ctx:       ctx,
		lastID:    solidity.NewUint64(ctx, slotLastID),
		openCount: solidity.NewUint64(ctx, slotOpenCount),
		options:   solidity.NewMapping[idKey, *Option](ctx, slotOptions),
	}
}

// SetTerms switches the registry to single mode.
func (r *Registry) SetTerms(terms *Terms) error {
	if terms.Strike == nil || terms.Strike.Sign() <= 0 ||
		terms.Premium == nil || terms.Premium.Sign() <= 0 ||
		terms.Duration == 0 {
		return reverts.ErrInvalidConfiguration
	}
	return r.ctx.State().EncodeStorage(r.ctx.Address(), slotTerms, func() ([]byte, error) {
		return rlp.EncodeToBytes(terms)
	})
}

// Terms returns the fixed terms, or nil in registry mode.
func (r *Registry) Terms() (*Terms, error) {
	var terms *Terms
	err := r.ctx.State().DecodeStorage(r.ctx.Address(), slotTerms, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		terms = &Terms{}
		return rlp.DecodeBytes(raw, terms)
	})
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// Create records a new option expiring duration seconds after now.
func (r *Registry) Create(strike *big.Int, duration uint64, premium *big.Int, buyer thor.Address, now uint64) (*Option, error) {
	if strike == nil || strike.Sign() <= 0 {
		return nil, reverts.ErrInvalidStrike
	}
	if duration == 0 || duration > math.MaxUint64-now {
		return nil, reverts.ErrInvalidDuration
	}
	terms, err := r.Terms()
	if err != nil {
		return nil, err
	}
	lastID, err := r.lastID.Get()
	if err != nil {
		return nil, err
	}
	if terms != nil && lastID > 0 {
		return nil, reverts.ErrAlreadySold
	}

	opt := &Option{
		ID:          lastID + 1,
		Buyer:       buyer,
		Premium:     new(big.Int).Set(premium),
		StrikePrice: new(big.Int).Set(strike),
		Expiration:  now + duration,
	}
	if err := r.options.Set(idKey(opt.ID), opt); err != nil {
		return nil, err
	}
	r.lastID.Set(opt.ID)

	open, err := r.openCount.Get()
	if err != nil {
		return nil, err
	}
	r.openCount.Set(open + 1)
	return opt, nil
}

// Get returns the option with the given id.
func (r *Registry) Get(id uint64) (*Option, error) {
	if id == 0 {
		return nil, reverts.ErrNotFound
	}
	exists, err := r.options.Exists(idKey(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, reverts.ErrNotFound
	}
	return r.options.Get(idKey(id))
}

// Settle marks the option exercised or cancelled and drops it from the open count.
func (r *Registry) Settle(opt *Option, exercised bool) error {
	if opt.Settled() {
		return reverts.ErrAlreadySettled
	}
	if exercised {
		opt.Exercised = true
	} else {
		opt.Cancelled = true
	}
	if err := r.options.Set(idKey(opt.ID), opt); err != nil {
		return err
	}
	open, err := r.openCount.Get()
	if err != nil {
		return err
	}
	r.openCount.Set(open - 1)
	return nil
}

// Count returns the number of options ever created.
func (r *Registry) Count() (uint64, error) {
	return r.lastID.Get()
}

// OpenCount returns the number of options not yet settled.
func (r *Registry) OpenCount() (uint64, error) {
	return r.openCount.Get()
}
