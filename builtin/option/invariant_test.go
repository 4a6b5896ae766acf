// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package option

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakedcall/thor"
)

type step struct {
	Op      uint8
	Actor   uint8
	ID      uint8
	Advance uint16
	Price   uint16
	Amount  uint8
}

var actors = []thor.Address{owner, buyer, mallory}

// apply runs one random operation. Errors are expected and ignored,
// the invariants are checked after every step.
func (f *fixture) apply(s step) {
	actor := actors[int(s.Actor)%len(actors)]
	id := uint64(s.ID % 6)
	f.now += uint64(s.Advance) * 60

	switch s.Op % 7 {
	case 0:
		_ = f.stake(int64(s.Amount) + 1)
	case 1:
		_, _ = f.buy(actor, 10, price(2000), uint64(s.Advance)*60+1)
	case 2:
		_, _ = f.exercise(actor, id)
	case 3:
		_, _ = f.cancel(actor, id)
	case 4:
		f.setPrice(price(int64(s.Price) % 4000))
	case 5:
		_, _ = f.feed.StartRound(reporter, f.now)
	case 6:
		_ = f.pool.Accrue(operator, big.NewInt(int64(s.Amount)))
	}
}

type snapshot map[uint64]*Option

func (f *fixture) snapshot() snapshot {
	count, err := f.engine.OptionCount()
	require.NoError(f.t, err)
	snap := make(snapshot)
	for id := uint64(1); id <= count; id++ {
		snap[id] = f.option(id)
	}
	return snap
}

func (f *fixture) checkInvariants(prev, cur snapshot, steps []step) {
	fail := func(msg string, args ...any) {
		f.t.Fatalf(msg+"\nsteps: %s", append(args, spew.Sdump(steps))...)
	}

	var open uint64
	for id, opt := range cur {
		if opt.Exercised && opt.Cancelled {
			fail("option %d exercised and cancelled", id)
		}
		if !opt.Settled() {
			open++
		}
		before, ok := prev[id]
		if !ok {
			continue
		}
		if before.Exercised && !opt.Exercised {
			fail("option %d lost its exercised flag", id)
		}
		if before.Cancelled && !opt.Cancelled {
			fail("option %d lost its cancelled flag", id)
		}
		if before.Buyer != opt.Buyer || before.Expiration != opt.Expiration || before.StrikePrice.Cmp(opt.StrikePrice) != 0 {
			fail("option %d terms changed", id)
		}
		if !before.Exercised && opt.Exercised && f.now > opt.Expiration {
			fail("option %d exercised after expiration", id)
		}
		if !before.Cancelled && opt.Cancelled && f.now <= opt.Expiration {
			fail("option %d cancelled before expiration", id)
		}
	}

	stored, err := f.engine.OpenCount()
	require.NoError(f.t, err)
	if stored != open {
		fail("open count %d, want %d", stored, open)
	}
	entered, err := f.engine.guard.Entered()
	require.NoError(f.t, err)
	if entered {
		fail("guard left entered")
	}
}

func TestRandomSequences(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		var steps []step
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(20, 80).Fuzz(&steps)

		f := newFixture(t, nil)
		require.NoError(t, f.st.SetBalance(owner, big.NewInt(1_000_000)))
		require.NoError(t, f.st.SetBalance(buyer, big.NewInt(1_000_000)))
		require.NoError(t, f.st.SetBalance(mallory, big.NewInt(1_000_000)))

		prev := f.snapshot()
		for i, s := range steps {
			f.apply(s)
			cur := f.snapshot()
			f.checkInvariants(prev, cur, steps[:i+1])
			prev = cur
		}
	}
}
