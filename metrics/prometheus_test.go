// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestPromMeters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newPrometheusMetrics(reg, reg)

	m.GetOrCreateCountMeter("slashes_count").Add(2)
	m.GetOrCreateCountMeter("slashes_count").Add(3)
	m.GetOrCreateCountVecMeter("subnet_removals_count", []string{"reason"}).
		AddWithLabel(1, map[string]string{"reason": "max_penalties"})
	m.GetOrCreateGaugeMeter("active_subnets").Set(7)
	m.GetOrCreateGaugeVecMeter("pool_size", []string{"scope"}).SetWithLabel(9, map[string]string{"scope": "subnet"})
	gas := m.GetOrCreateHistogramVecMeter("call_gas", []string{"op"}, BucketGas)
	gas.ObserveWithLabels(4_000, map[string]string{"op": "attest"})
	gas.ObserveWithLabels(30_000, map[string]string{"op": "attest"})

	families := gather(t, reg)
	assert.Equal(t, 5.0, families["axon_slashes_count"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["axon_subnet_removals_count"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 7.0, families["axon_active_subnets"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 9.0, families["axon_pool_size"].GetMetric()[0].GetGauge().GetValue())

	hist := families["axon_call_gas"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.Equal(t, 34_000.0, hist.GetSampleSum())
}

func TestPromKindClash(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newPrometheusMetrics(reg, reg)

	m.GetOrCreateCountMeter("dup")
	assert.Nil(t, m.GetOrCreateGaugeMeter("dup"))
}

func TestPromHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newPrometheusMetrics(reg, reg)
	m.GetOrCreateCountMeter("calls_count").Add(1)

	server := httptest.NewServer(m.GetOrCreateHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInitializePrometheusMetrics(t *testing.T) {
	prev := metrics
	t.Cleanup(func() { metrics = prev })

	InitializePrometheusMetrics()
	first := metrics
	InitializePrometheusMetrics()
	assert.Same(t, first, metrics)

	counter := LazyLoadCounterVec("init_calls_count", []string{"op"})
	counter().AddWithLabel(1, map[string]string{"op": "attest"})
	gauge := LazyLoadGaugeVec("init_subnets", []string{"status"})
	gauge().SetWithLabel(3, map[string]string{"status": "active"})

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
