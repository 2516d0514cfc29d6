// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axon-labs/axon/log"
)

const namespace = "axon"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the process to Prometheus backed
// meters registered on the default registry. Calling it again is a no-op.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	}
}

type prometheusMetrics struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	meters     sync.Map // name => meter
}

func newPrometheusMetrics(r prometheus.Registerer, g prometheus.Gatherer) *prometheusMetrics {
	return &prometheusMetrics{registerer: r, gatherer: g}
}

// getOrCreate returns the meter stored under name, creating and registering
// it on first use. A name reused with another meter kind yields the zero T.
func getOrCreate[T any](o *prometheusMetrics, name string, create func() (prometheus.Collector, T)) T {
	if m, ok := o.meters.Load(name); ok {
		meter, _ := m.(T)
		return meter
	}
	collector, meter := create()
	actual, loaded := o.meters.LoadOrStore(name, meter)
	if loaded {
		meter, _ = actual.(T)
		return meter
	}
	if err := o.registerer.Register(collector); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
	return meter
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, &promCountMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, &promCountVecMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, &promGaugeMeter{g}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, GaugeVecMeter) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, &promGaugeVecMeter{g}
	})
}

func (o *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, HistogramVecMeter) {
		floats := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			floats = append(floats, float64(b))
		}
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Buckets: floats}, labels)
		return h, &promHistogramVecMeter{h}
	})
}

type promCountMeter struct{ counter prometheus.Counter }

func (c *promCountMeter) Add(i int64) { c.counter.Add(float64(i)) }

type promCountVecMeter struct{ counter *prometheus.CounterVec }

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct{ gauge prometheus.Gauge }

func (g *promGaugeMeter) Add(i int64) { g.gauge.Add(float64(i)) }
func (g *promGaugeMeter) Set(i int64) { g.gauge.Set(float64(i)) }

type promGaugeVecMeter struct{ gauge *prometheus.GaugeVec }

func (g *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Add(float64(i))
}

func (g *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Set(float64(i))
}

type promHistogramVecMeter struct{ histogram *prometheus.HistogramVec }

func (h *promHistogramVecMeter) ObserveWithLabels(i int64, labels map[string]string) {
	h.histogram.With(labels).Observe(float64(i))
}
