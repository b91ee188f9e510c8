// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

func newDevNode(t *testing.T) (*node.Node, *config) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := devConfig()
	return node.New(db, cfg.nodeOptions()), cfg
}

func TestSimulate(t *testing.T) {
	n, cfg := newDevNode(t)

	var total uint64
	blocks := 0
	result, err := simulate(n, cfg, 13, func(n uint64) { total = n }, func() { blocks++ })
	require.NoError(t, err)

	assert.Equal(t, uint64(130), total)
	assert.Equal(t, 130, blocks)
	assert.Equal(t, uint64(130), result.Blocks)

	require.Len(t, result.Eras, 3)
	for i, era := range result.Eras {
		assert.Equal(t, npos.EraIndex(i), era.Era)
		assert.Equal(t, npos.SessionIndex(6*i), era.StartSession)
		assert.Equal(t, 3, era.Validators)
	}
	assert.NotZero(t, result.Eras[0].Points)
	assert.Equal(t, 3, result.Events[staking.EventEraStarted])
	assert.Equal(t, 2, result.Events[staking.EventEraPaid])

	var out bytes.Buffer
	printSimulation(&out, result)
	assert.Contains(t, out.String(), "simulated 130 blocks")
}

func TestInspect(t *testing.T) {
	n, cfg := newDevNode(t)

	_, err := inspect(n, nil)
	assert.ErrorIs(t, err, node.ErrNoGenesis)

	require.NoError(t, n.InitGenesis(cfg.forcing(), cfg.genesisStakers(), 1_000))
	nominator := npos.Address{0x11}
	out, err := inspect(n, &nominator)
	require.NoError(t, err)

	assert.Equal(t, node.Head{Number: 0, Timestamp: 1_000}, out.Head)
	require.NotNil(t, out.ActiveEra)
	assert.Equal(t, npos.EraIndex(0), out.ActiveEra.Index)
	assert.Equal(t, "NotForcing", out.ForceEra)
	assert.Len(t, out.Validators, 3)

	require.NotNil(t, out.Staker)
	assert.Equal(t, nominator, out.Staker.Controller)
	assert.Equal(t, npos.Balance(250_000), out.Staker.Ledger.Active)
	assert.Equal(t, "Staked", out.Staker.Payee)
	assert.Nil(t, out.Staker.Validator)
	require.NotNil(t, out.Staker.Nominations)
	assert.Equal(t, []npos.Address{{1}, {2}}, out.Staker.Nominations.Targets)

	var buf bytes.Buffer
	require.NoError(t, printValue(&buf, out, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "NotForcing", decoded["forceEra"])

	buf.Reset()
	require.NoError(t, printValue(&buf, out, false))
	assert.Contains(t, buf.String(), "ForceEra")
}

func TestExportSnapshot(t *testing.T) {
	n, cfg := newDevNode(t)
	require.NoError(t, n.InitGenesis(cfg.forcing(), cfg.genesisStakers(), 1_000))

	snap, err := buildSnapshot(n.StakingView(), n.Options().Config)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), snap.DesiredTargets)
	assert.Len(t, snap.Voters, 4)
	assert.Len(t, snap.Targets, 3)

	data, err := encodeSnapshot(snap)
	require.NoError(t, err)
	decoded, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)

	_, err = decodeSnapshot([]byte("garbage"))
	assert.Error(t, err)
}
