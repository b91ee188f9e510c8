// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/cmd/nposd/node"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

// simulationStart is the timestamp of the simulated genesis, in unix millis.
const simulationStart = 1_700_000_000_000

type eraSummary struct {
	Era             npos.EraIndex     `json:"era"`
	StartSession    npos.SessionIndex `json:"startSession"`
	ValidatorReward npos.Balance      `json:"validatorReward"`
	TotalStake      npos.Balance      `json:"totalStake"`
	Points          npos.RewardPoint  `json:"points"`
	Validators      int               `json:"validators"`
}

type simulation struct {
	Blocks uint64                    `json:"blocks"`
	Eras   []eraSummary              `json:"eras"`
	Events map[staking.EventKind]int `json:"events"`
}

func simulateAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "load config")
	}
	sessions := ctx.Int(sessionsFlag.Name)
	if sessions <= 0 {
		return errors.New("sessions must be positive")
	}

	db, err := lvldb.NewMem()
	if err != nil {
		return err
	}
	defer db.Close()

	var bar *pb.ProgressBar
	result, err := simulate(node.New(db, cfg.nodeOptions()), cfg, sessions, func(total uint64) {
		bar = pb.New64(int64(total)).SetMaxWidth(90).Start()
	}, func() {
		bar.Increment()
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	if ctx.Bool(jsonOutFlag.Name) {
		return printValue(os.Stdout, result, true)
	}
	printSimulation(os.Stdout, result)
	return nil
}

// simulate applies the blocks of the given number of sessions with synthetic timestamps.
func simulate(n *node.Node, cfg *config, sessions int, onStart func(uint64), onBlock func()) (*simulation, error) {
	events := make(chan staking.Event, 1024)
	sub := n.Feed().Subscribe(events)
	defer sub.Unsubscribe()

	result := &simulation{Events: make(map[staking.EventKind]int)}
	drain := func() {
		for {
			select {
			case ev := <-events:
				result.Events[ev.Kind]++
			default:
				return
			}
		}
	}

	now := uint64(simulationStart)
	if err := n.InitGenesis(cfg.forcing(), cfg.genesisStakers(), now); err != nil {
		return nil, errors.WithMessage(err, "init genesis")
	}
	drain()

	opts := n.Options()
	interval := uint64(opts.BlockInterval.Milliseconds())
	blocks := uint64(sessions) * uint64(opts.Config.SessionLength)
	onStart(blocks)
	for i := uint64(0); i < blocks; i++ {
		now += interval
		if _, err := n.Step(now); err != nil {
			return nil, err
		}
		drain()
		onBlock()
	}
	result.Blocks = blocks

	st := n.StakingView()
	active, found, err := st.ActiveEra()
	if err != nil || !found {
		return result, err
	}
	for era := npos.EraIndex(0); era <= active.Index; era++ {
		summary := eraSummary{Era: era}
		repo := st.Eras()
		start, found, err := repo.StartSessionIndex(era)
		if err != nil {
			return nil, err
		}
		if !found {
			// cleared past the history depth
			continue
		}
		summary.StartSession = start
		if summary.ValidatorReward, _, err = repo.ValidatorReward(era); err != nil {
			return nil, err
		}
		if summary.TotalStake, err = repo.TotalStake(era); err != nil {
			return nil, err
		}
		points, err := repo.RewardPoints(era)
		if err != nil {
			return nil, err
		}
		summary.Points = points.Total
		if err := repo.IterateStakers(era, func(npos.Address, npos.Exposure) error {
			summary.Validators++
			return nil
		}); err != nil {
			return nil, err
		}
		result.Eras = append(result.Eras, summary)
	}
	return result, nil
}

func printSimulation(w io.Writer, s *simulation) {
	fmt.Fprintf(w, "simulated %d blocks\n", s.Blocks)
	fmt.Fprintf(w, "%6s %8s %12s %14s %8s %10s\n", "era", "session", "reward", "stake", "points", "validators")
	for _, e := range s.Eras {
		fmt.Fprintf(w, "%6d %8d %12d %14d %8d %10d\n", e.Era, e.StartSession, e.ValidatorReward, e.TotalStake, e.Points, e.Validators)
	}
	for _, kind := range []staking.EventKind{
		staking.EventEraPlanned,
		staking.EventEraStarted,
		staking.EventEraPaid,
		staking.EventPayout,
		staking.EventSlashApplied,
		staking.EventSlashDeferred,
		staking.EventElectionFailed,
	} {
		if c := s.Events[kind]; c > 0 {
			fmt.Fprintf(w, "%-16s %d\n", kind, c)
		}
	}
}
