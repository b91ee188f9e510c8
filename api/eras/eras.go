// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eras

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

// Eras serves the era schedule and the per-era records.
type Eras struct {
	view func() *staking.Staking
}

// New creates the handler. view opens a read view over the committed state.
func New(view func() *staking.Staking) *Eras {
	return &Eras{view: view}
}

func (e *Eras) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	st := e.view()
	var status Status

	active, found, err := st.ActiveEra()
	if err != nil {
		return err
	}
	if found {
		status.ActiveEra = &active
	}
	current, found, err := st.CurrentEra()
	if err != nil {
		return err
	}
	if found {
		status.CurrentEra = &current
	}
	force, err := st.ForceEra()
	if err != nil {
		return err
	}
	status.ForceEra = force.String()
	if status.PlannedSession, err = st.Eras().CurrentPlannedSession(); err != nil {
		return err
	}
	if status.BondedEras, err = st.Eras().BondedEras(); err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func (e *Eras) handleGetEra(w http.ResponseWriter, req *http.Request) error {
	era, err := utils.EraVar(req, "era")
	if err != nil {
		return err
	}
	repo := e.view().Eras()

	out := Era{Index: era}
	start, found, err := repo.StartSessionIndex(era)
	if err != nil {
		return err
	}
	if !found {
		return utils.NotFound(errors.Errorf("era %d: not found", era))
	}
	out.StartSession = &start
	reward, found, err := repo.ValidatorReward(era)
	if err != nil {
		return err
	}
	if found {
		out.ValidatorReward = &reward
	}
	if out.TotalStake, err = repo.TotalStake(era); err != nil {
		return err
	}
	points, err := repo.RewardPoints(era)
	if err != nil {
		return err
	}
	out.RewardPoints = RewardPoints{Total: points.Total, Individual: points.Individual}
	return utils.WriteJSON(w, out)
}

func (e *Eras) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	era, err := utils.EraVar(req, "era")
	if err != nil {
		return err
	}
	repo := e.view().Eras()

	stakers := make([]Staker, 0)
	err = repo.IterateStakers(era, func(validator npos.Address, exposure npos.Exposure) error {
		clipped, err := repo.StakersClipped(era, validator)
		if err != nil {
			return err
		}
		prefs, err := repo.ValidatorPrefs(era, validator)
		if err != nil {
			return err
		}
		stakers = append(stakers, Staker{Validator: validator, Exposure: exposure, Clipped: clipped, Prefs: prefs})
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, stakers)
}

func (e *Eras) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	era, err := utils.EraVar(req, "era")
	if err != nil {
		return err
	}
	stash, err := utils.AddressVar(req, "stash")
	if err != nil {
		return err
	}
	repo := e.view().Eras()

	exposure, err := repo.Stakers(era, stash)
	if err != nil {
		return err
	}
	if exposure.Total == 0 && exposure.Own == 0 && len(exposure.Others) == 0 {
		return utils.NotFound(errors.Errorf("no exposure of %s in era %d", stash, era))
	}
	clipped, err := repo.StakersClipped(era, stash)
	if err != nil {
		return err
	}
	prefs, err := repo.ValidatorPrefs(era, stash)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Staker{Validator: stash, Exposure: exposure, Clipped: clipped, Prefs: prefs})
}

func (e *Eras) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/active").
		Methods(http.MethodGet).
		Name("GET /eras/active").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetStatus))
	sub.Path("/{era}").
		Methods(http.MethodGet).
		Name("GET /eras/{era}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetEra))
	sub.Path("/{era}/stakers").
		Methods(http.MethodGet).
		Name("GET /eras/{era}/stakers").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetStakers))
	sub.Path("/{era}/stakers/{stash}").
		Methods(http.MethodGet).
		Name("GET /eras/{era}/stakers/{stash}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetStaker))
}
