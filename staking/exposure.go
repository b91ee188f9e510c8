// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

// collectExposures converts the supports of an election into exposures. The backing of
// a winner by itself is its own stake.
func (s *Staking) collectExposures(supports election.Supports) ([]npos.ValidatorExposure, error) {
	issuance, err := s.currency.TotalIssuance()
	if err != nil {
		return nil, err
	}

	out := make([]npos.ValidatorExposure, 0, len(supports))
	for _, ws := range supports {
		exposure := npos.Exposure{Others: make([]npos.IndividualExposure, 0, len(ws.Support.Voters))}
		for _, backing := range ws.Support.Voters {
			stake := s.currencyToVote.ToCurrency(backing.Weight, issuance)
			if backing.Who == ws.Winner {
				exposure.Own = exposure.Own.SaturatingAdd(stake)
			} else {
				exposure.Others = append(exposure.Others, npos.IndividualExposure{Who: backing.Who, Value: stake})
			}
			exposure.Total = exposure.Total.SaturatingAdd(stake)
		}
		out = append(out, npos.ValidatorExposure{Validator: ws.Winner, Exposure: exposure})
	}
	return out, nil
}

// storeStakersInfo persists the exposures of the winners of era, returning the winners.
func (s *Staking) storeStakersInfo(exposures []npos.ValidatorExposure, era npos.EraIndex) ([]npos.Address, error) {
	maxRewarded := int(s.cfg.MaxNominatorRewardedPerValidator)

	elected := make([]npos.Address, 0, len(exposures))
	var total npos.Balance
	for _, e := range exposures {
		elected = append(elected, e.Validator)
		total = total.SaturatingAdd(e.Exposure.Total)

		clipped := e.Exposure
		if len(clipped.Others) > maxRewarded {
			clipped = clipped.Clipped(maxRewarded)
		}
		if err := s.eras.SetStakers(era, e.Validator, e.Exposure, clipped); err != nil {
			return nil, err
		}
	}
	if err := s.eras.SetTotalStake(era, total); err != nil {
		return nil, err
	}

	for _, stash := range elected {
		prefs, _, err := s.registry.Validator(stash)
		if err != nil {
			return nil, err
		}
		if err := s.eras.SetValidatorPrefs(era, stash, prefs); err != nil {
			return nil, err
		}
	}
	if era > 0 {
		logger.Info("new validator set processed", "era", era, "size", len(elected), "stake", total)
	}
	return elected, nil
}
