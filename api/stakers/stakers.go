// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/ledger"
)

type Stakers struct {
	view func() *staking.Staking
}

func New(view func() *staking.Staking) *Stakers {
	return &Stakers{view: view}
}

func (s *Stakers) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	stash, err := utils.AddressVar(req, "stash")
	if err != nil {
		return err
	}
	st := s.view()

	controller, l, err := st.Ledgers().LedgerOfStash(stash)
	if err != nil {
		if errors.Is(err, ledger.ErrNotStash) {
			return utils.NotFound(errors.Errorf("stash %s: not bonded", stash))
		}
		return err
	}
	payee, err := st.Ledgers().Payee(stash)
	if err != nil {
		return err
	}
	free, err := st.Currency().FreeBalance(stash)
	if err != nil {
		return err
	}
	out := Staker{
		Stash:      stash,
		Controller: controller,
		Free:       free,
		Ledger:     convertLedger(l),
		Payee:      convertPayee(payee),
	}

	prefs, found, err := st.Registry().Validator(stash)
	if err != nil {
		return err
	}
	if found {
		out.Validator = &prefs
	}
	nominations, found, err := st.Nominations(stash)
	if err != nil {
		return err
	}
	if found {
		out.Nominations = &nominations
	}
	spans, found, err := st.Slashing().Spans(stash)
	if err != nil {
		return err
	}
	if found {
		out.Spans = convertSpans(spans)
	}
	return utils.WriteJSON(w, out)
}

func (s *Stakers) handleGetVoters(w http.ResponseWriter, req *http.Request) error {
	st := s.view()
	voters := make([]Voter, 0)
	err := st.VoterList().Iterate(func(who npos.Address) (bool, error) {
		weight, err := st.WeightOf(who)
		if err != nil {
			return false, err
		}
		voters = append(voters, Voter{Who: who, Weight: weight})
		return true, nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, voters)
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/voters").
		Methods(http.MethodGet).
		Name("GET /stakers/voters").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetVoters))
	sub.Path("/{stash}").
		Methods(http.MethodGet).
		Name("GET /stakers/{stash}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStaker))
}
