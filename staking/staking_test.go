// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/rewards"
	"github.com/vechain/npos/staking/session"
	"github.com/vechain/npos/storage"
	"github.com/vechain/npos/weight"
)

var (
	v1 = npos.Address{0x01}
	v2 = npos.Address{0x02}
	v3 = npos.Address{0x03}
	n1 = npos.Address{0x11}
	n2 = npos.Address{0x12}
	r1 = npos.Address{0xa1}
)

type fakeClock struct{ now uint64 }

func (c *fakeClock) NowMillis() uint64 { return c.now }

type testEnv struct {
	staking *Staking
	session *session.Session
	clock   *fakeClock
	sctx    *storage.Context
}

func testConfig() npos.Config {
	return npos.Config{
		SessionsPerEra:                   3,
		BondingDuration:                  3,
		HistoryDepth:                     10,
		MaxNominatorRewardedPerValidator: 64,
		ValidatorCount:                   3,
		MinimumValidatorCount:            1,
		SessionLength:                    10,
		OffendingValidatorsThreshold:     npos.PerbillOne(),
		SlashRewardFraction:              npos.PerbillFromPercent(10),
		ExistentialDeposit:               1,
	}
}

func newTestEnv(t *testing.T, cfg npos.Config, opts ...Option) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sctx := storage.NewContext(db, weight.NewMeter(weight.DBWeight{Read: 1, Write: 10}))
	sess := session.New(sctx)
	clock := &fakeClock{now: 1_000}

	opts = append([]Option{
		WithSession(sess),
		WithUnixTime(clock),
		WithEraPayout(rewards.Fixed(3000)),
	}, opts...)
	st := New(sctx, cfg, opts...)
	sess.SetManager(st)
	return &testEnv{staking: st, session: sess, clock: clock, sctx: sctx}
}

// defaultStakers are three validators of 1000, n1 nominating v1 with 500.
func defaultStakers() []GenesisStaker {
	return []GenesisStaker{
		{Stash: v1, Controller: v1, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: v2, Controller: v2, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: v3, Controller: v3, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: n1, Controller: n1, Balance: 2000, Bonded: 500, Targets: []npos.Address{v1}},
	}
}

func (e *testEnv) genesis(t *testing.T, force npos.Forcing, stakers []GenesisStaker) {
	require.NoError(t, e.staking.InitGenesis(force, stakers))
	require.NoError(t, e.session.Genesis(nil))
	require.NoError(t, e.staking.OnFinalize())
}

// rotate moves n sessions forward, finalizing a block after each rotation.
func (e *testEnv) rotate(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		e.clock.now += 6_000
		require.NoError(t, e.session.Rotate())
		require.NoError(t, e.staking.OnFinalize())
	}
}

func (e *testEnv) activeEra(t *testing.T) npos.EraIndex {
	active, found, err := e.staking.ActiveEra()
	require.NoError(t, err)
	require.True(t, found)
	return active.Index
}

func (e *testEnv) currentEra(t *testing.T) npos.EraIndex {
	current, found, err := e.staking.CurrentEra()
	require.NoError(t, err)
	require.True(t, found)
	return current
}

func (e *testEnv) active(t *testing.T, stash npos.Address) npos.Balance {
	_, l, err := e.staking.Ledgers().LedgerOfStash(stash)
	require.NoError(t, err)
	return l.Active
}

func (e *testEnv) free(t *testing.T, who npos.Address) npos.Balance {
	b, err := e.staking.Currency().FreeBalance(who)
	require.NoError(t, err)
	return b
}
