// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import "github.com/axon-labs/axon/metrics"

var (
	metricSubnetEvents   = metrics.LazyLoadCounterVec("subnet_events_count", []string{"event"})
	metricSubnetRemovals = metrics.LazyLoadCounterVec("subnet_removals_count", []string{"reason"})
	metricSubnets        = metrics.LazyLoadGaugeVec("subnets", []string{"status"})
	metricTotalNodes     = metrics.LazyLoadGauge("subnet_nodes")
)
