// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
	"github.com/vechain/npos/staking/ledger"
	"github.com/vechain/npos/staking/registry"
)

func TestNominate(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.genesis(t, npos.NotForcing, defaultStakers())

	assert.ErrorIs(t, env.staking.Nominate(n1, nil), ErrEmptyTargets)
	assert.ErrorIs(t, env.staking.Nominate(npos.Address{0x77}, []npos.Address{v1}), ErrNotController)

	require.NoError(t, env.staking.Nominate(n1, []npos.Address{v2, v2, v3}))
	nominations, _, err := env.staking.Nominations(n1)
	require.NoError(t, err)
	assert.Equal(t, []npos.Address{v2, v3}, nominations.Targets)

	require.NoError(t, env.staking.Validate(v1, npos.ValidatorPrefs{Blocked: true}))
	assert.ErrorIs(t, env.staking.Nominate(n1, []npos.Address{v1}), ErrBadTarget)

	// a validator turning nominator stops validating
	require.NoError(t, env.staking.Nominate(v3, []npos.Address{v2}))
	_, isValidator, err := env.staking.Registry().Validator(v3)
	require.NoError(t, err)
	assert.False(t, isValidator)
	count, err := env.staking.Registry().NominatorCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestNominateTooManyTargets(t *testing.T) {
	cfg := testConfig()
	cfg.MaxNominations = 2
	env := newTestEnv(t, cfg)
	env.genesis(t, npos.NotForcing, defaultStakers())

	assert.ErrorIs(t, env.staking.Nominate(n1, []npos.Address{v1, v2, v3}), ErrTooManyTargets)
}

func TestValidateCommission(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.genesis(t, npos.NotForcing, defaultStakers())

	assert.ErrorIs(t, env.staking.Validate(v1, npos.ValidatorPrefs{Commission: npos.PerbillOne() + 1}), ErrCommissionTooHigh)
	require.NoError(t, env.staking.Validate(n1, npos.ValidatorPrefs{Commission: npos.PerbillFromPercent(5)}))
	_, isNominator, err := env.staking.Nominations(n1)
	require.NoError(t, err)
	assert.False(t, isNominator)
}

func TestKillStash(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.genesis(t, npos.NotForcing, defaultStakers())
	env.staking.OnOffence(offenceAgainst(t, env, 0, v1), []npos.Perbill{npos.PerbillFromPercent(10)}, 0, 0)
	_, found, err := env.staking.Slashing().Spans(n1)
	require.NoError(t, err)
	require.True(t, found)

	assert.ErrorIs(t, env.staking.ReapStash(n1), ErrFundedTarget)
	require.NoError(t, env.staking.KillStash(n1))

	_, _, err = env.staking.Ledgers().LedgerOfStash(n1)
	assert.ErrorIs(t, err, ledger.ErrNotStash)
	_, isNominator, err := env.staking.Nominations(n1)
	require.NoError(t, err)
	assert.False(t, isNominator)
	_, found, err = env.staking.Slashing().Spans(n1)
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, env.staking.KillStash(n1), ErrNotStash)
}

func TestBondExtraMovesVoter(t *testing.T) {
	env := newTestEnv(t, testConfig(), WithRegistryOptions(registry.WithWeightedVoterList()))
	env.genesis(t, npos.NotForcing, []GenesisStaker{
		{Stash: v1, Controller: v1, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: n1, Controller: n1, Balance: 2000, Bonded: 500, Targets: []npos.Address{v1}},
		{Stash: n2, Controller: n2, Balance: 2000, Bonded: 800, Targets: []npos.Address{v1}},
	})

	order := func() []npos.Address {
		var out []npos.Address
		require.NoError(t, env.staking.VoterList().Iterate(func(who npos.Address) (bool, error) {
			out = append(out, who)
			return true, nil
		}))
		return out
	}
	assert.Equal(t, []npos.Address{n2, n1}, order())

	require.NoError(t, env.staking.BondExtra(n1, 1000))
	assert.Equal(t, npos.Balance(1500), env.active(t, n1))
	assert.Equal(t, []npos.Address{n1, n2}, order())
	require.NoError(t, env.staking.VoterList().SanityCheck())
}

func TestAuthorshipPoints(t *testing.T) {
	env := newTestEnv(t, testConfig())

	// nothing is recorded before the first era
	require.NoError(t, env.staking.NoteAuthor(v1))

	env.genesis(t, npos.NotForcing, defaultStakers())
	require.NoError(t, env.staking.NoteAuthor(v1))
	require.NoError(t, env.staking.NoteUncle(v1, v2, 1))

	points, err := env.staking.Eras().RewardPoints(0)
	require.NoError(t, err)
	assert.Equal(t, npos.RewardPoint(23), points.Total)
	assert.Equal(t, npos.RewardPoint(22), points.Of(v1))
	assert.Equal(t, npos.RewardPoint(1), points.Of(v2))
}

func TestDataProviderBounds(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.genesis(t, npos.NotForcing, defaultStakers())

	desired, err := env.staking.DesiredTargets()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), desired)

	voters, err := env.staking.Voters(election.NewCountBounds(2))
	require.NoError(t, err)
	require.Len(t, voters, 2)
	assert.Equal(t, v1, voters[0].Who)
	assert.Equal(t, npos.VoteWeight(1000), voters[0].Weight)
	assert.Equal(t, []npos.Address{v1}, voters[0].Targets)
	assert.Equal(t, v2, voters[1].Who)

	voters, err = env.staking.Voters(election.NewUnbounded())
	require.NoError(t, err)
	require.Len(t, voters, 4)
	assert.Equal(t, election.Voter{Who: n1, Weight: 500, Targets: []npos.Address{v1}}, voters[3])

	targets, err := env.staking.Targets(election.NewCountBounds(1))
	require.NoError(t, err)
	assert.Equal(t, []npos.Address{v1}, targets)
}
