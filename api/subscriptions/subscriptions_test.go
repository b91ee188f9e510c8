// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/staking"
)

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/staking" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// sendUntilDelivered retries until the subscriber registered its channel.
func sendUntilDelivered(t *testing.T, feed *event.Feed, ev staking.Event) {
	require.Eventually(t, func() bool {
		return feed.Send(ev) > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubscribeStaking(t *testing.T) {
	var feed event.Feed
	subs := New(&feed, []string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	conn := dial(t, ts, "?kind=eraStarted")

	// filtered out
	sendUntilDelivered(t, &feed, staking.Event{Kind: staking.EventEraPlanned, Era: 1, Session: 3})
	feed.Send(staking.Event{Kind: staking.EventEraStarted, Era: 1, Session: 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var got staking.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, staking.Event{Kind: staking.EventEraStarted, Era: 1, Session: 3}, got)

	subs.Close()
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

func TestSubscribeRejectsOrigin(t *testing.T) {
	var feed event.Feed
	subs := New(&feed, []string{"https://allowed.example"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/staking"
	header := map[string][]string{"Origin": {"https://other.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
