// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sessions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/session"
)

// Current is the validator set of the current and the next session.
type Current struct {
	Index      npos.SessionIndex `json:"index"`
	Validators []npos.Address    `json:"validators"`
	Queued     []npos.Address    `json:"queued"`
	Disabled   []uint32          `json:"disabled"`
}

// Historical is the digest of the set planned for a session.
type Historical struct {
	Index npos.SessionIndex `json:"index"`
	Root  npos.Bytes32      `json:"root"`
	Count uint32            `json:"count"`
}

type Sessions struct {
	view func() *session.Session
}

func New(view func() *session.Session) *Sessions {
	return &Sessions{view: view}
}

func (s *Sessions) handleGetCurrent(w http.ResponseWriter, _ *http.Request) error {
	sess := s.view()

	var (
		out Current
		err error
	)
	if out.Index, err = sess.CurrentIndex(); err != nil {
		return err
	}
	if out.Validators, err = sess.Validators(); err != nil {
		return err
	}
	if out.Queued, err = sess.QueuedValidators(); err != nil {
		return err
	}
	if out.Disabled, err = sess.DisabledValidators(); err != nil {
		return err
	}
	if out.Disabled == nil {
		out.Disabled = []uint32{}
	}
	return utils.WriteJSON(w, out)
}

func (s *Sessions) handleGetHistorical(w http.ResponseWriter, req *http.Request) error {
	index, err := utils.SessionVar(req, "session")
	if err != nil {
		return err
	}
	record, found, err := s.view().Historical(index)
	if err != nil {
		return err
	}
	if !found {
		return utils.NotFound(errors.Errorf("session %d: no record", index))
	}
	return utils.WriteJSON(w, Historical{Index: index, Root: record.Root, Count: record.Count})
}

func (s *Sessions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/current").
		Methods(http.MethodGet).
		Name("GET /sessions/current").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetCurrent))
	sub.Path("/{session}/historical").
		Methods(http.MethodGet).
		Name("GET /sessions/{session}/historical").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetHistorical))
}
