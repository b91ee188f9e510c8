// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/api/eras"
	"github.com/vechain/npos/api/sessions"
	"github.com/vechain/npos/api/slashes"
	"github.com/vechain/npos/api/stakers"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/rewards"
	"github.com/vechain/npos/staking/session"
	"github.com/vechain/npos/storage"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

var (
	v1 = npos.Address{0x01}
	v2 = npos.Address{0x02}
	v3 = npos.Address{0x03}
	n1 = npos.Address{0x11}
)

// initServer runs genesis and one full era: era 1 is active, era 0 is paid.
func initServer(t *testing.T) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := uint64(1_000)
	sctx := storage.NewContext(db, nil)
	sess := session.New(sctx)
	st := staking.New(sctx, npos.Config{
		SessionsPerEra:        3,
		BondingDuration:       3,
		ValidatorCount:        3,
		MinimumValidatorCount: 1,
		SessionLength:         10,
	},
		staking.WithSession(sess),
		staking.WithUnixTime(staking.UnixTimeFunc(func() uint64 { return now })),
		staking.WithEraPayout(rewards.Fixed(3000)),
	)
	sess.SetManager(st)

	require.NoError(t, st.InitGenesis(npos.NotForcing, []staking.GenesisStaker{
		{Stash: v1, Controller: v1, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: v2, Controller: v2, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: v3, Controller: v3, Balance: 2000, Bonded: 1000, Validator: true},
		{Stash: n1, Controller: n1, Balance: 2000, Bonded: 500, Targets: []npos.Address{v1}},
	}))
	require.NoError(t, sess.Genesis(nil))
	require.NoError(t, st.OnFinalize())
	for i := 0; i < 3; i++ {
		now += 6_000
		require.NoError(t, sess.Rotate())
		require.NoError(t, st.OnFinalize())
	}

	handler, closeSubs := New(Backend{
		Staking: func() *staking.Staking { return st },
		Session: func() *session.Session { return sess },
		Events:  &event.Feed{},
	}, Options{AllowedOrigins: "*", EnableMetrics: true})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
	})
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func getJSON(t *testing.T, url string, v any) {
	body, code := httpGet(t, url)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func TestEras(t *testing.T) {
	ts := initServer(t)

	var status eras.Status
	getJSON(t, ts.URL+"/eras/active", &status)
	require.NotNil(t, status.ActiveEra)
	assert.Equal(t, npos.EraIndex(1), status.ActiveEra.Index)
	assert.True(t, status.ActiveEra.Started)
	require.NotNil(t, status.CurrentEra)
	assert.Equal(t, npos.EraIndex(1), *status.CurrentEra)
	assert.Equal(t, "NotForcing", status.ForceEra)
	assert.Equal(t, []npos.BondedEra{{Era: 0, StartSession: 0}, {Era: 1, StartSession: 3}}, status.BondedEras)

	var era eras.Era
	getJSON(t, ts.URL+"/eras/0", &era)
	require.NotNil(t, era.ValidatorReward)
	assert.Equal(t, npos.Balance(3000), *era.ValidatorReward)
	assert.Equal(t, npos.Balance(3500), era.TotalStake)

	getJSON(t, ts.URL+"/eras/1", &era)
	assert.Nil(t, era.ValidatorReward)
	require.NotNil(t, era.StartSession)
	assert.Equal(t, npos.SessionIndex(3), *era.StartSession)

	var staker eras.Staker
	getJSON(t, ts.URL+"/eras/1/stakers/"+v1.String(), &staker)
	assert.Equal(t, npos.Balance(1500), staker.Exposure.Total)
	assert.Equal(t, []npos.IndividualExposure{{Who: n1, Value: 500}}, staker.Clipped.Others)

	var all []eras.Staker
	getJSON(t, ts.URL+"/eras/1/stakers", &all)
	assert.Len(t, all, 3)

	_, code := httpGet(t, ts.URL+"/eras/9")
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/eras/x")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/eras/1/stakers/"+n1.String())
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStakers(t *testing.T) {
	ts := initServer(t)

	var staker stakers.Staker
	getJSON(t, ts.URL+"/stakers/"+n1.String(), &staker)
	assert.Equal(t, n1, staker.Controller)
	assert.Equal(t, npos.Balance(500), staker.Ledger.Active)
	assert.Equal(t, "Staked", staker.Payee.Kind)
	require.NotNil(t, staker.Nominations)
	assert.Equal(t, []npos.Address{v1}, staker.Nominations.Targets)
	assert.Nil(t, staker.Validator)

	var voters []stakers.Voter
	getJSON(t, ts.URL+"/stakers/voters", &voters)
	assert.Equal(t, []stakers.Voter{{Who: n1, Weight: 500}}, voters)

	_, code := httpGet(t, ts.URL+"/stakers/"+npos.Address{0x77}.String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/stakers/0x12")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionsAndSlashes(t *testing.T) {
	ts := initServer(t)

	var current sessions.Current
	getJSON(t, ts.URL+"/sessions/current", &current)
	assert.Equal(t, npos.SessionIndex(3), current.Index)
	assert.Equal(t, []npos.Address{v1, v2, v3}, current.Validators)
	assert.Empty(t, current.Disabled)

	var record sessions.Historical
	getJSON(t, ts.URL+"/sessions/0/historical", &record)
	assert.Equal(t, uint32(3), record.Count)
	assert.False(t, record.Root.IsZero())

	var pending slashes.Pending
	getJSON(t, ts.URL+"/slashes/pending", &pending)
	assert.Nil(t, pending.EarliestUnapplied)
	assert.Empty(t, pending.Offenders)

	var unapplied []map[string]any
	getJSON(t, ts.URL+"/slashes/unapplied/1", &unapplied)
	assert.Empty(t, unapplied)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := initServer(t)

	httpGet(t, ts.URL+"/eras/active")
	body, code := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `npos_api_request_count{code="200",method="GET",name="GET /eras/active"}`)
}
