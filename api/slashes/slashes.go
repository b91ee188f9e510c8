// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/slashing"
)

// Pending is the slashing state of the current era.
type Pending struct {
	EarliestUnapplied *npos.EraIndex                `json:"earliestUnapplied"`
	Offenders         []slashing.OffendingValidator `json:"offenders"`
}

// InEra is what a stash was slashed in an era.
type InEra struct {
	Era         npos.EraIndex            `json:"era"`
	Stash       npos.Address             `json:"stash"`
	AsValidator *slashing.ValidatorSlash `json:"asValidator,omitempty"`
	AsNominator npos.Balance             `json:"asNominator"`
}

type Slashes struct {
	view func() *staking.Staking
}

func New(view func() *staking.Staking) *Slashes {
	return &Slashes{view: view}
}

func (s *Slashes) handleGetPending(w http.ResponseWriter, _ *http.Request) error {
	engine := s.view().Slashing()

	var out Pending
	earliest, found, err := engine.EarliestUnapplied()
	if err != nil {
		return err
	}
	if found {
		out.EarliestUnapplied = &earliest
	}
	if out.Offenders, err = engine.OffendingValidators(); err != nil {
		return err
	}
	if out.Offenders == nil {
		out.Offenders = []slashing.OffendingValidator{}
	}
	return utils.WriteJSON(w, out)
}

func (s *Slashes) handleGetUnapplied(w http.ResponseWriter, req *http.Request) error {
	era, err := utils.EraVar(req, "era")
	if err != nil {
		return err
	}
	queued, err := s.view().Slashing().Unapplied(era)
	if err != nil {
		return err
	}
	if queued == nil {
		queued = []slashing.UnappliedSlash{}
	}
	return utils.WriteJSON(w, queued)
}

func (s *Slashes) handleGetInEra(w http.ResponseWriter, req *http.Request) error {
	era, err := utils.EraVar(req, "era")
	if err != nil {
		return err
	}
	stash, err := utils.AddressVar(req, "stash")
	if err != nil {
		return err
	}
	engine := s.view().Slashing()

	out := InEra{Era: era, Stash: stash}
	slash, found, err := engine.ValidatorSlashInEra(era, stash)
	if err != nil {
		return err
	}
	if found {
		out.AsValidator = &slash
	}
	if out.AsNominator, err = engine.NominatorSlashInEra(era, stash); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (s *Slashes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("GET /slashes/pending").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPending))
	sub.Path("/unapplied/{era}").
		Methods(http.MethodGet).
		Name("GET /slashes/unapplied/{era}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetUnapplied))
	sub.Path("/{era}/{stash}").
		Methods(http.MethodGet).
		Name("GET /slashes/{era}/{stash}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetInEra))
}
