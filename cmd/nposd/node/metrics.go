// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/npos/metrics"
)

var (
	metricHead        = metrics.LazyLoadGauge("node_head_number")
	metricBlockWeight = metrics.LazyLoadHistogram("node_block_weight", []int64{1e8, 1e9, 1e10, 1e11, 1e12})
	metricEvents      = metrics.LazyLoadCounterVec("node_events_count", []string{"kind"})
)
