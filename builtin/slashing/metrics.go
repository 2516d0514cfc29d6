// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashing

import "github.com/axon-labs/axon/metrics"

var (
	metricSlashes = metrics.LazyLoadCounter("slashes_count")
	metricSlashed = metrics.LazyLoadCounter("slashed_amount")
)
