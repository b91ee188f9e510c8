// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, m *prometheusMetrics) map[string]*dto.MetricFamily {
	families, err := m.registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	prom := newPrometheusMetrics()

	prom.GetOrCreateCountMeter("eras_triggered_count").Add(1)
	for i := 0; i < 3; i++ {
		prom.GetOrCreateCountMeter("slashes_applied_count").Add(1)
	}
	vec := prom.GetOrCreateCountVecMeter("election_failed_count", []string{"reason"})
	vec.AddWithLabel(2, map[string]string{"reason": "provider"})
	vec.AddWithLabel(1, map[string]string{"reason": "too_few"})

	gauge := prom.GetOrCreateGaugeMeter("active_era")
	gauge.Set(7)
	gauge.Add(1)

	hist := prom.GetOrCreateHistogramMeter("snapshot_bytes", BucketSnapshotSize)
	hist.Observe(100)
	hist.Observe(2000)

	families := gather(t, prom)
	assert.Equal(t, float64(1), families["npos_eras_triggered_count"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(3), families["npos_slashes_applied_count"].Metric[0].GetCounter().GetValue())

	sumVec := families["npos_election_failed_count"].Metric[0].GetCounter().GetValue() +
		families["npos_election_failed_count"].Metric[1].GetCounter().GetValue()
	assert.Equal(t, float64(3), sumVec)

	assert.Equal(t, float64(8), families["npos_active_era"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(2100), families["npos_snapshot_bytes"].Metric[0].GetHistogram().GetSampleSum())
}

func TestPromHandler(t *testing.T) {
	prom := newPrometheusMetrics()
	prom.GetOrCreateCountMeter("payouts_count").Add(4)

	srv := httptest.NewServer(prom.GetOrCreateHandler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "npos_payouts_count 4"))
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics() // make sure it starts in the default state of noopMeter

	for _, a := range []any{
		Gauge("noopGauge"),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
}
