// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/election"
)

// electionSnapshot is the input of an off-chain election solver.
type electionSnapshot struct {
	DesiredTargets uint32
	Voters         []election.Voter
	Targets        []npos.Address
}

func exportSnapshotAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "load config")
	}
	db := openMainDB(ctx)
	defer db.Close()

	n := node.New(db, cfg.nodeOptions())
	snap, err := buildSnapshot(n.StakingView(), n.Options().Config)
	if err != nil {
		return err
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	out := ctx.String(outFlag.Name)
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return err
	}
	logger.Info("election snapshot written", "path", out, "voters", len(snap.Voters), "targets", len(snap.Targets), "bytes", len(data))
	return nil
}

func buildSnapshot(st *staking.Staking, cfg npos.Config) (*electionSnapshot, error) {
	desired, err := st.DesiredTargets()
	if err != nil {
		return nil, err
	}
	voters, err := st.Voters(election.BoundsFromConfig(cfg.VoterSnapshotBounds))
	if err != nil {
		return nil, errors.WithMessage(err, "voters")
	}
	targets, err := st.Targets(election.BoundsFromConfig(cfg.TargetSnapshotBounds))
	if err != nil {
		return nil, errors.WithMessage(err, "targets")
	}
	return &electionSnapshot{DesiredTargets: desired, Voters: voters, Targets: targets}, nil
}

func encodeSnapshot(snap *electionSnapshot) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func decodeSnapshot(data []byte) (*electionSnapshot, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "decompress snapshot")
	}
	var snap electionSnapshot
	if err := rlp.DecodeBytes(raw, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}
