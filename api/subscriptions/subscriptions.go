// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams staking events to websocket clients.
package subscriptions

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/staking"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	queueSize  = 64
)

type Subscriptions struct {
	feed     *event.Feed
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the handler. Events sent on feed must be staking.Event values.
func New(feed *event.Feed, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		feed: feed,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, strings.ToLower(origin))
			},
		},
		done: make(chan struct{}),
	}
}

func parseKinds(raw string) map[staking.EventKind]bool {
	if raw == "" {
		return nil
	}
	kinds := make(map[staking.EventKind]bool)
	for _, k := range strings.Split(raw, ",") {
		kinds[staking.EventKind(strings.TrimSpace(k))] = true
	}
	return kinds
}

func (s *Subscriptions) handleSubscribeStaking(w http.ResponseWriter, req *http.Request) error {
	kinds := parseKinds(req.URL.Query().Get("kind"))

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has responded already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	ch := make(chan staking.Event, queueSize)
	sub := s.feed.Subscribe(ch)
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-ch:
			if kinds != nil && !kinds[ev.Kind] {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("write failed", "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-sub.Err():
			return nil
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		}
	}
}

// Close disconnects every subscriber and waits for their handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/staking").
		Methods(http.MethodGet).
		Name("WS /subscriptions/staking").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeStaking))
}
