// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vechain/npos/log"
)

// RequestLogger logs every request while enabled is set, and requests slower than
// slowThreshold regardless. A zero threshold disables slow request logging.
func RequestLogger(logger log.Logger, enabled *atomic.Bool, slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled.Load() && slowThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			next.ServeHTTP(w, r)
			duration := time.Since(start)

			switch {
			case enabled.Load():
				logger.Info("api request", "method", r.Method, "uri", r.URL.String(), "durationMs", duration.Milliseconds())
			case duration > slowThreshold:
				logger.Warn("slow api request", "method", r.Method, "uri", r.URL.String(), "durationMs", duration.Milliseconds())
			}
		})
	}
}
