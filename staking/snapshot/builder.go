// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snapshot

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

var (
	logger = log.WithContext("pkg", "snapshot")

	metricVoters        = metrics.LazyLoadGauge("staking_snapshot_voters")
	metricTargets       = metrics.LazyLoadGauge("staking_snapshot_targets")
	metricSnapshotBytes = metrics.LazyLoadHistogram("staking_snapshot_bytes", metrics.BucketSnapshotSize)
)

// Source is the staking state a snapshot is built from.
type Source interface {
	// IterateValidators visits the registered validators until fn returns false.
	IterateValidators(fn func(npos.Address) (bool, error)) error
	VoterList() election.SortedVoterList
	Nominations(who npos.Address) (npos.Nominations, bool, error)
	WeightOf(who npos.Address) (npos.VoteWeight, error)
	// LastNonzeroSlashes maps every stash with slashing spans to the era of its last non-zero slash.
	LastNonzeroSlashes() (map[npos.Address]npos.EraIndex, error)
}

// Builder produces the voter and target snapshots handed to election providers.
type Builder struct {
	src      Source
	maxVotes int
}

// NewBuilder creates a builder. maxVotes is the most targets any nominator may have.
func NewBuilder(src Source, maxVotes int) *Builder {
	return &Builder{src: src, maxVotes: maxVotes}
}

func capacity(bounds election.Bounds, itemSize int) int {
	c, ok := bounds.PredictCapacity(itemSize)
	if !ok {
		return 0
	}
	return min(c, MaxPossibleAllocation/2)
}

// Voters returns every validator's self vote followed by the nominators in voter list order,
// trimmed to the bounds. Nominations submitted before the last non-zero slash of a target lose
// that target, and nominators left without targets are skipped.
func (b *Builder) Voters(bounds election.Bounds) ([]election.Voter, error) {
	if bounds.IsUnbounded() {
		logger.Warn("iterating over an unbounded number of npos voters, this might exhaust the memory limits")
		return b.votersUnbounded()
	}
	return b.votersBounded(bounds)
}

func (b *Builder) selfVote(validator npos.Address) (election.Voter, error) {
	w, err := b.src.WeightOf(validator)
	if err != nil {
		return election.Voter{}, errors.Wrap(err, "weight of validator")
	}
	return election.Voter{Who: validator, Weight: w, Targets: []npos.Address{validator}}, nil
}

// nominatorVote returns the vote of a nominator, reporting false when none of its targets survive.
// registered is called with the unfiltered target count before filtering; returning false stops.
func (b *Builder) nominatorVote(
	who npos.Address,
	slashes map[npos.Address]npos.EraIndex,
	registered func(votes int) bool,
) (v election.Voter, keep bool, stop bool, err error) {
	nominations, found, err := b.src.Nominations(who)
	if err != nil {
		return v, false, false, errors.Wrap(err, "get nominations")
	}
	if !found {
		logger.Error("voter list holds an unknown voter", "who", who)
		return v, false, false, nil
	}
	if registered != nil && !registered(len(nominations.Targets)) {
		return v, false, true, nil
	}

	targets := nominations.Targets[:0:0]
	for _, t := range nominations.Targets {
		if last, slashed := slashes[t]; !slashed || nominations.SubmittedIn >= last {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return v, false, false, nil
	}
	w, err := b.src.WeightOf(who)
	if err != nil {
		return v, false, false, errors.Wrap(err, "weight of nominator")
	}
	return election.Voter{Who: who, Weight: w, Targets: targets}, true, false, nil
}

func (b *Builder) votersUnbounded() ([]election.Voter, error) {
	var voters []election.Voter
	if err := b.src.IterateValidators(func(v npos.Address) (bool, error) {
		vote, err := b.selfVote(v)
		if err != nil {
			return false, err
		}
		voters = append(voters, vote)
		return true, nil
	}); err != nil {
		return nil, err
	}
	validatorsTaken := len(voters)

	slashes, err := b.src.LastNonzeroSlashes()
	if err != nil {
		return nil, errors.Wrap(err, "slashing spans")
	}
	if err := b.src.VoterList().Iterate(func(who npos.Address) (bool, error) {
		vote, keep, _, err := b.nominatorVote(who, slashes, nil)
		if err != nil {
			return false, err
		}
		if keep {
			voters = append(voters, vote)
		}
		return true, nil
	}); err != nil {
		return nil, err
	}

	b.report(voters, validatorsTaken, election.NewUnbounded(), -1)
	return voters, nil
}

func (b *Builder) votersBounded(bounds election.Bounds) ([]election.Voter, error) {
	var (
		tracker         SizeTracker
		maxSize, sized  = bounds.SizeBound()
		maxCount, count = bounds.CountBound()
		voters          = make([]election.Voter, 0, capacity(bounds, VoterSize(b.maxVotes)))
	)

	// count-only bounds need no size tracking, the length of voters is the count.
	addVoter := func(votes int) {
		if sized {
			tracker.RegisterVoter(votes)
		}
	}
	nextWillExhaust := func() bool {
		next := len(voters) + 1
		if sized && tracker.FinalByteSizeOf(next) > maxSize {
			return true
		}
		return count && next > maxCount
	}

	if err := b.src.IterateValidators(func(v npos.Address) (bool, error) {
		addVoter(1)
		if nextWillExhaust() {
			logger.Warn("stopped iterating over validators' self-vote", "at", len(voters), "bounds", bounds)
			return false, nil
		}
		vote, err := b.selfVote(v)
		if err != nil {
			return false, err
		}
		voters = append(voters, vote)
		return true, nil
	}); err != nil {
		return nil, err
	}
	validatorsTaken := len(voters)

	// only bother with reading the slashing spans if there is room left.
	if !nextWillExhaust() {
		slashes, err := b.src.LastNonzeroSlashes()
		if err != nil {
			return nil, errors.Wrap(err, "slashing spans")
		}
		// the size of a nominator is registered before its stale targets are dropped,
		// so stale nominations count towards the bounds.
		register := func(votes int) bool {
			addVoter(votes)
			return !nextWillExhaust()
		}
		if err := b.src.VoterList().Iterate(func(who npos.Address) (bool, error) {
			vote, keep, stop, err := b.nominatorVote(who, slashes, register)
			if err != nil || stop {
				return false, err
			}
			if keep {
				voters = append(voters, vote)
			}
			return true, nil
		}); err != nil {
			return nil, err
		}
	}

	size := -1
	if sized {
		size = tracker.FinalByteSizeOf(len(voters))
	}
	b.report(voters, validatorsTaken, bounds, size)
	return voters, nil
}

func (b *Builder) report(voters []election.Voter, validatorsTaken int, bounds election.Bounds, size int) {
	metricVoters().Set(int64(len(voters)))
	if size >= 0 {
		metricSnapshotBytes().Observe(int64(size))
	}
	logger.Info("generated npos voters",
		"total", len(voters),
		"validators", validatorsTaken,
		"nominators", len(voters)-validatorsTaken,
		"bounds", bounds,
	)
}

// Targets returns the registered validators, trimmed to the bounds.
func (b *Builder) Targets(bounds election.Bounds) ([]npos.Address, error) {
	if bounds.IsUnbounded() {
		logger.Warn("iterating over an unbounded number of npos targets, this might exhaust the memory limits")
	}
	var (
		maxSize, sized  = bounds.SizeBound()
		maxCount, count = bounds.CountBound()
		internalSize    int
		targets         = make([]npos.Address, 0, capacity(bounds, accountSize))
	)
	if err := b.src.IterateValidators(func(v npos.Address) (bool, error) {
		newInternal := internalSize + accountSize
		newCount := len(targets) + 1
		if sized && newInternal+LengthPrefix(newCount) > maxSize {
			return false, nil
		}
		if count && newCount > maxCount {
			return false, nil
		}
		targets = append(targets, v)
		internalSize = newInternal
		return true, nil
	}); err != nil {
		return nil, err
	}

	metricTargets().Set(int64(len(targets)))
	logger.Info("generated npos targets", "total", len(targets), "bounds", bounds)
	return targets, nil
}

// DisplayBoundsLimits returns how many voters fit the bounds when every voter casts the maximum
// number of votes (low), half of it (mid), or a single vote (high). The outer length prefix is
// assumed to take 4 bytes.
func DisplayBoundsLimits(bounds election.Bounds, maxVotes int) (low, mid, high int) {
	size, sized := bounds.SizeBound()
	count, counted := bounds.CountBound()
	switch {
	case !sized && !counted:
		return math.MaxInt, math.MaxInt, math.MaxInt
	case !sized:
		return count, count, count
	}
	fit := func(votes int) int {
		n := max(size-4, 0) / VoterSize(votes)
		if counted {
			n = min(n, count)
		}
		return n
	}
	return fit(maxVotes), fit(maxVotes / 2), fit(1)
}
