// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/npos/api/utils"
)

// delayBuffer is the lateness tolerated on top of one block interval.
const delayBuffer = 5 * time.Second

// HeadFunc reports the last applied block, or false before genesis.
type HeadFunc func() (number uint64, timestampMillis uint64, found bool, err error)

type Head struct {
	Number    uint64    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

type Status struct {
	Healthy     bool  `json:"healthy"`
	Initialized bool  `json:"initialized"`
	Head        *Head `json:"head"`
}

type Health struct {
	head          HeadFunc
	blockInterval time.Duration
	now           func() time.Time
}

func New(head HeadFunc, blockInterval time.Duration) *Health {
	return &Health{head: head, blockInterval: blockInterval, now: time.Now}
}

func (h *Health) status() (*Status, error) {
	number, ts, found, err := h.head()
	if err != nil {
		return nil, err
	}
	if !found {
		return &Status{}, nil
	}
	head := &Head{Number: number, Timestamp: time.UnixMilli(int64(ts)).UTC()}
	return &Status{
		Healthy:     h.now().Sub(head.Timestamp) <= h.blockInterval+delayBuffer,
		Initialized: true,
		Head:        head,
	}, nil
}

func (h *Health) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status, err := h.status()
	if err != nil {
		return err
	}
	if !status.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
