// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

// OnChain runs an approval election synchronously over the data provider's snapshot.
type OnChain struct {
	data         DataProvider
	voterBounds  Bounds
	targetBounds Bounds
}

// NewOnChain creates the provider, snapshotting voters and targets within the given bounds.
func NewOnChain(data DataProvider, voterBounds, targetBounds Bounds) *OnChain {
	return &OnChain{data: data, voterBounds: voterBounds, targetBounds: targetBounds}
}

// Elect implements Provider.
func (o *OnChain) Elect() (Supports, error) {
	desired, err := o.data.DesiredTargets()
	if err != nil {
		return nil, errors.Wrap(err, "desired targets")
	}
	targets, err := o.data.Targets(o.targetBounds)
	if err != nil {
		return nil, errors.Wrap(err, "targets snapshot")
	}
	voters, err := o.data.Voters(o.voterBounds)
	if err != nil {
		return nil, errors.Wrap(err, "voters snapshot")
	}
	return SolveApproval(desired, targets, voters), nil
}

// SolveApproval elects the desired number of targets with the highest approval stake,
// the sum of the weights of every voter backing them. Ties go to the lower address.
// Each voter's weight is then split evenly over the winners it backs, the remainder
// going to the first of them.
func SolveApproval(desired uint32, targets []npos.Address, voters []Voter) Supports {
	approval := make(map[npos.Address]uint64, len(targets))
	for _, t := range targets {
		approval[t] = 0
	}
	for _, v := range voters {
		seen := make(map[npos.Address]struct{}, len(v.Targets))
		for _, t := range v.Targets {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if a, ok := approval[t]; ok {
				approval[t] = saturatingAdd(a, uint64(v.Weight))
			}
		}
	}

	candidates := make([]npos.Address, 0, len(approval))
	for t, a := range approval {
		if a > 0 {
			candidates = append(candidates, t)
		}
	}
	slices.SortFunc(candidates, func(a, b npos.Address) int {
		switch {
		case approval[a] > approval[b]:
			return -1
		case approval[a] < approval[b]:
			return 1
		default:
			return a.Compare(b)
		}
	})
	if len(candidates) > int(desired) {
		candidates = candidates[:desired]
	}

	index := make(map[npos.Address]int, len(candidates))
	supports := make(Supports, len(candidates))
	for i, w := range candidates {
		index[w] = i
		supports[i].Winner = w
	}

	for _, v := range voters {
		var backed []int
		for _, t := range v.Targets {
			if i, ok := index[t]; ok && !slices.Contains(backed, i) {
				backed = append(backed, i)
			}
		}
		if len(backed) == 0 {
			continue
		}
		share := uint64(v.Weight) / uint64(len(backed))
		rest := uint64(v.Weight) - share*uint64(len(backed))
		for n, i := range backed {
			w := share
			if n == 0 {
				w += rest
			}
			if w == 0 {
				continue
			}
			s := &supports[i].Support
			s.Total = saturatingAdd(s.Total, w)
			s.Voters = append(s.Voters, Backing{Who: v.Who, Weight: w})
		}
	}
	return supports
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
