// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import "github.com/axon-labs/axon/metrics"

var (
	metricMinted   = metrics.LazyLoadCounter("emission_minted_amount")
	metricForfeit  = metrics.LazyLoadCounter("emission_forfeited_amount")
	metricOutcomes = metrics.LazyLoadCounterVec("emission_subnets_count", []string{"outcome"})
)
