// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/registry"
	"github.com/vechain/npos/staking/session"
	"github.com/vechain/npos/storage"
	"github.com/vechain/npos/weight"
)

// Head is the last block applied to the staking state.
type Head struct {
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"` // unix millis
}

// runtime is the staking core and the session layer over one store. It must not outlive the
// transaction it was built for, since the era repository caches what it reads.
type runtime struct {
	staking *staking.Staking
	session *session.Session
	meter   *weight.Meter
	head    *storage.Value[Head]
}

func (n *Node) newRuntime(store kv.Store, now uint64, sink func(staking.Event)) *runtime {
	meter := weight.NewMeter(n.opts.DBWeight)
	sctx := storage.NewContext(store, meter)
	sess := session.New(sctx)

	opts := []staking.Option{
		staking.WithSession(sess),
		staking.WithUnixTime(staking.UnixTimeFunc(func() uint64 { return now })),
	}
	if sink != nil {
		opts = append(opts, staking.WithEventSink(sink))
	}
	if n.opts.EraPayout != nil {
		opts = append(opts, staking.WithEraPayout(n.opts.EraPayout))
	}
	if n.opts.WeightedVoterList {
		opts = append(opts, staking.WithRegistryOptions(registry.WithWeightedVoterList()))
	}
	st := staking.New(sctx, n.opts.Config, opts...)
	sess.SetManager(st)

	return &runtime{
		staking: st,
		session: sess,
		meter:   meter,
		head:    storage.NewValue[Head](sctx, "NodeHead"),
	}
}
