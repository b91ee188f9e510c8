// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

// ErrAlreadyClaimed is returned when the rewards of an era were already paid to a stash.
var ErrAlreadyClaimed = errors.New("rewards for this era have already been claimed")

// UnlockChunk is bonded stake scheduled to become free at Era.
type UnlockChunk struct {
	Value npos.Balance
	Era   npos.EraIndex
}

// StakingLedger is the bonded stake controlled by a controller account.
type StakingLedger struct {
	Stash          npos.Address    // the stash the stake belongs to
	Total          npos.Balance    // active plus unlocking, the amount under lock
	Active         npos.Balance    // the amount counted for elections and exposures
	Unlocking      []UnlockChunk   // stake being unbonded, oldest first
	ClaimedRewards []npos.EraIndex // eras whose rewards were paid, ascending
}

// ClaimEra marks era as claimed. Claims older than current - historyDepth are dropped first.
func (l *StakingLedger) ClaimEra(era, current, historyDepth npos.EraIndex) error {
	oldest := current.SaturatingSub(historyDepth)
	l.ClaimedRewards = slices.DeleteFunc(l.ClaimedRewards, func(e npos.EraIndex) bool {
		return e < oldest
	})
	pos, found := slices.BinarySearch(l.ClaimedRewards, era)
	if found {
		return ErrAlreadyClaimed
	}
	l.ClaimedRewards = slices.Insert(l.ClaimedRewards, pos, era)
	return nil
}

// Claimed tells whether era is among the claimed eras.
func (l *StakingLedger) Claimed(era npos.EraIndex) bool {
	_, found := slices.BinarySearch(l.ClaimedRewards, era)
	return found
}

// Slash removes up to value from the active stake and then from the unlocking chunks,
// oldest first. A target left at or below minimumBalance is slashed entirely. It returns
// the amount removed from the ledger's total.
func (l *StakingLedger) Slash(value, minimumBalance npos.Balance) npos.Balance {
	preTotal := l.Total

	slashOutOf := func(target *npos.Balance) {
		take := min(value, *target)
		if take == 0 {
			return
		}
		*target -= take
		value -= take
		if *target <= minimumBalance {
			take += *target
			*target = 0
		}
		l.Total = l.Total.SaturatingSub(take)
	}

	slashOutOf(&l.Active)

	drained := 0
	for i := range l.Unlocking {
		slashOutOf(&l.Unlocking[i].Value)
		if l.Unlocking[i].Value != 0 {
			break
		}
		drained++
	}
	l.Unlocking = l.Unlocking[drained:]

	return preTotal.SaturatingSub(l.Total)
}
