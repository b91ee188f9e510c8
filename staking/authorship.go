// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
)

// Points awarded for block production.
const (
	AuthorPoints      npos.RewardPoint = 20
	UncleBlockPoints  npos.RewardPoint = 2 // to the author of the block including an uncle
	UncleAuthorPoints npos.RewardPoint = 1
)

// RewardByIDs adds points to validators in the active era. Nothing is recorded
// before the first era starts.
func (s *Staking) RewardByIDs(points []npos.ValidatorPoints) error {
	active, found, err := s.eras.ActiveEra()
	if err != nil || !found {
		return err
	}
	return s.eras.AddRewardPoints(active.Index, points)
}

// NoteAuthor rewards the author of a block.
func (s *Staking) NoteAuthor(author npos.Address) error {
	return s.RewardByIDs([]npos.ValidatorPoints{{Validator: author, Points: AuthorPoints}})
}

// NoteUncle rewards the author of a block referencing an uncle and the uncle's author.
func (s *Staking) NoteUncle(blockAuthor, uncleAuthor npos.Address, _ uint64) error {
	return s.RewardByIDs([]npos.ValidatorPoints{
		{Validator: blockAuthor, Points: UncleBlockPoints},
		{Validator: uncleAuthor, Points: UncleAuthorPoints},
	})
}
