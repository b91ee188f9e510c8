// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node drives the staking state forward one block at a time.
package node

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/rewards"
	"github.com/vechain/npos/staking/session"
	"github.com/vechain/npos/weight"
)

var logger = log.WithContext("pkg", "node")

// ErrNoGenesis is returned when a block is applied before genesis.
var ErrNoGenesis = errors.New("staking state not initialized")

type Options struct {
	Config            npos.Config
	BlockInterval     time.Duration
	AutoPayout        bool              // pay every validator of an era once it ends
	WeightedVoterList bool              // keep voters sorted by weight
	EraPayout         rewards.EraPayout // nil uses the inflation curve of Config
	DBWeight          weight.DBWeight
}

// Node applies blocks to the staking state. Each block is one leveldb transaction; events are
// sent to subscribers only after the transaction commits.
type Node struct {
	db   *lvldb.LevelDB
	opts Options
	feed event.Feed
}

func New(db *lvldb.LevelDB, opts Options) *Node {
	opts.Config = opts.Config.WithDefaults()
	if opts.BlockInterval <= 0 {
		opts.BlockInterval = 6 * time.Second
	}
	return &Node{db: db, opts: opts}
}

// Options returns the options completed with defaults.
func (n *Node) Options() Options {
	return n.opts
}

// Feed returns the feed receiving staking events.
func (n *Node) Feed() *event.Feed {
	return &n.feed
}

// StakingView returns a reader of the committed staking state.
func (n *Node) StakingView() *staking.Staking {
	return n.newRuntime(n.db, uint64(time.Now().UnixMilli()), nil).staking
}

// SessionView returns a reader of the committed session state.
func (n *Node) SessionView() *session.Session {
	return n.newRuntime(n.db, uint64(time.Now().UnixMilli()), nil).session
}

// Head returns the last applied block, reporting false before genesis.
func (n *Node) Head() (Head, bool, error) {
	return n.newRuntime(n.db, 0, nil).head.Find()
}

// InitGenesis bonds the genesis stakers and starts session 0. It does nothing when the state is
// already initialized.
func (n *Node) InitGenesis(force npos.Forcing, stakers []staking.GenesisStaker, now uint64) error {
	var events []staking.Event
	err := n.db.Transact(func(store kv.Store) error {
		rt := n.newRuntime(store, now, func(ev staking.Event) { events = append(events, ev) })
		exists, err := rt.head.Exists()
		if err != nil {
			return err
		}
		if exists {
			logger.Info("staking state already initialized")
			return nil
		}
		if err := rt.staking.InitGenesis(force, stakers); err != nil {
			return errors.Wrap(err, "genesis stakers")
		}
		if err := rt.session.Genesis(nil); err != nil {
			return errors.Wrap(err, "genesis session")
		}
		if err := rt.staking.OnFinalize(); err != nil {
			return err
		}
		return rt.head.Set(Head{Number: 0, Timestamp: now})
	})
	if err != nil {
		return err
	}
	n.publish(events)
	return nil
}

// Step applies the next block, authored at now in unix millis.
func (n *Node) Step(now uint64) (Head, error) {
	var (
		events []staking.Event
		head   Head
		used   weight.Weight
	)
	err := n.db.Transact(func(store kv.Store) error {
		rt := n.newRuntime(store, now, func(ev staking.Event) { events = append(events, ev) })
		parent, found, err := rt.head.Find()
		if err != nil {
			return err
		}
		if !found {
			return ErrNoGenesis
		}
		head = Head{Number: parent.Number + 1, Timestamp: now}

		validators, err := rt.session.Validators()
		if err != nil {
			return err
		}
		if len(validators) > 0 {
			author := validators[head.Number%uint64(len(validators))]
			if err := rt.staking.NoteAuthor(author); err != nil {
				return errors.WithMessage(err, "note author")
			}
		}
		if head.Number%uint64(n.opts.Config.SessionLength) == 0 {
			if err := rt.session.Rotate(); err != nil {
				return errors.WithMessage(err, "rotate session")
			}
		}
		if err := rt.staking.OnFinalize(); err != nil {
			return err
		}

		if n.opts.AutoPayout {
			// payouts append to events, so only the era transitions seen so far are walked
			for _, ev := range events[:len(events):len(events)] {
				if ev.Kind != staking.EventEraPaid {
					continue
				}
				if err := n.payoutEra(rt, ev.Era); err != nil {
					return err
				}
			}
		}
		if err := rt.head.Set(head); err != nil {
			return err
		}
		used = rt.meter.Total()
		return nil
	})
	if err != nil {
		return Head{}, err
	}

	metricBlockWeight().Observe(int64(used))
	metricHead().Set(int64(head.Number))
	n.publish(events)
	return head, nil
}

func (n *Node) payoutEra(rt *runtime, era npos.EraIndex) error {
	var validators []npos.Address
	if err := rt.staking.Eras().IterateStakers(era, func(v npos.Address, _ npos.Exposure) error {
		validators = append(validators, v)
		return nil
	}); err != nil {
		return err
	}
	for _, v := range validators {
		if _, err := rt.staking.PayoutStakers(v, era); err != nil {
			var dispatch *staking.DispatchError
			if !errors.As(err, &dispatch) {
				return err
			}
			logger.Warn("payout rejected", "validator", v, "era", era, "err", err)
		}
	}
	logger.Debug("era paid out", "era", era, "validators", len(validators))
	return nil
}

func (n *Node) publish(events []staking.Event) {
	for _, ev := range events {
		metricEvents().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
		n.feed.Send(ev)
	}
}

// Run applies a block every block interval until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	logger.Debug("enter block loop")
	defer logger.Debug("leave block loop")

	go checkClockOffset(n.opts.BlockInterval)

	ticker := time.NewTicker(n.opts.BlockInterval)
	defer ticker.Stop()
	clockSyncTicker := time.NewTicker(10 * time.Minute)
	defer clockSyncTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-clockSyncTicker.C:
			go checkClockOffset(n.opts.BlockInterval)
		case t := <-ticker.C:
			start := time.Now()
			head, err := n.Step(uint64(t.UnixMilli()))
			if err != nil {
				return errors.WithMessage(err, "apply block")
			}
			logger.Debug("block applied", "number", head.Number, "elapsed", time.Since(start))
		}
	}
}
