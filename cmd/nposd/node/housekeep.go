// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

var ntpServer = "pool.ntp.org"

// checkClockOffset warns when the local clock drifts by more than half a block interval, since
// era durations and payouts are timed with it.
func checkClockOffset(blockInterval time.Duration) {
	resp, err := ntp.Query(ntpServer)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset.Abs() > blockInterval/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
