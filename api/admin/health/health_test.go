// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Health) (int, Status) {
	router := mux.NewRouter()
	h.Mount(router, "/admin/health")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health", nil))

	var status Status
	if rr.Code != http.StatusInternalServerError {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	}
	return rr.Code, status
}

func TestHealth(t *testing.T) {
	now := time.UnixMilli(100_000)
	var (
		number uint64 = 7
		ts     uint64 = 95_000
		found         = true
		err    error
	)
	h := New(func() (uint64, uint64, bool, error) { return number, ts, found, err }, 6*time.Second)
	h.now = func() time.Time { return now }

	code, status := serve(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.Head)
	assert.Equal(t, uint64(7), status.Head.Number)

	// 11s is exactly one interval plus the buffer
	ts = 89_000
	code, status = serve(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)

	ts = 88_999
	code, status = serve(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.True(t, status.Initialized)

	found = false
	code, status = serve(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Initialized)
	assert.Nil(t, status.Head)

	err = errors.New("closed")
	code, _ = serve(t, h)
	assert.Equal(t, http.StatusInternalServerError, code)
}
