// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"math"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.NotPanics(t, func() {
		m.GetOrCreateCountMeter("c").Add(1)
		m.GetOrCreateCountVecMeter("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "x"})
		m.GetOrCreateGaugeMeter("g").Set(1)
		m.GetOrCreateGaugeVecMeter("gv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "x"})
		m.GetOrCreateHistogramVecMeter("h", []string{"l"}, BucketGas).ObserveWithLabels(1, map[string]string{"l": "x"})
	})

	server := httptest.NewServer(m.GetOrCreateHandler())
	t.Cleanup(server.Close)
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	get := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, calls)
}

func TestSaturate(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	assert.Equal(t, int64(0), Saturate(nil))
	assert.Equal(t, int64(42), Saturate(big.NewInt(42)))
	assert.Equal(t, int64(math.MaxInt64), Saturate(huge))
	assert.Equal(t, int64(math.MinInt64), Saturate(new(big.Int).Neg(huge)))
	assert.Equal(t, int64(math.MaxInt64), Saturate(new(big.Int).SetUint64(math.MaxUint64)))
}
