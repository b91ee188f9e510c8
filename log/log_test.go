// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsHandler(t *testing.T) {
	logger := WithContext("pkg", "staking")

	buf := &bytes.Buffer{}
	SetHandler(JSONHandler(buf, LevelInfo))
	defer SetHandler(ethlog.DiscardHandler())

	logger.Info("new era", "era", 3)
	logger.Debug("filtered")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "new era", rec["msg"])
	assert.Equal(t, "staking", rec["pkg"])
	assert.Equal(t, float64(3), rec["era"])
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelInfo, LevelFromVerbosity(3))
	assert.Equal(t, LevelWarn, LevelFromVerbosity(2))
}
