// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the staking state over HTTP.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/npos/api/eras"
	"github.com/vechain/npos/api/middleware"
	"github.com/vechain/npos/api/sessions"
	"github.com/vechain/npos/api/slashes"
	"github.com/vechain/npos/api/stakers"
	"github.com/vechain/npos/api/subscriptions"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/session"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins   string
	EnableMetrics    bool
	EnableReqLogger  *atomic.Bool
	SlowQueriesLimit time.Duration
	PprofOn          bool
}

// Backend gives the handlers read views over the committed state and the event feed.
type Backend struct {
	Staking func() *staking.Staking
	Session func() *session.Session
	Events  *event.Feed
}

// New returns the api handler and a function closing the open subscriptions.
func New(backend Backend, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	eras.New(backend.Staking).
		Mount(router, "/eras")
	stakers.New(backend.Staking).
		Mount(router, "/stakers")
	slashes.New(backend.Staking).
		Mount(router, "/slashes")
	sessions.New(backend.Session).
		Mount(router, "/sessions")
	subs := subscriptions.New(backend.Events, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLogger(logger, enabled, opts.SlowQueriesLimit)(handler)

	return handler.ServeHTTP, subs.Close
}
