// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

import "github.com/axon-labs/axon/metrics"

var (
	metricCalls      = metrics.LazyLoadCounterVec("network_calls_count", []string{"op", "result"})
	metricFeesBurned = metrics.LazyLoadCounter("network_fees_burned")
	metricEpoch      = metrics.LazyLoadGauge("network_epoch")
	metricCallGas    = metrics.LazyLoadHistogramVec("network_call_gas", []string{"op"}, metrics.BucketGas)
)
