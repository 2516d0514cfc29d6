// Copyright (c) 2025 The Axon developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-labs/axon/axon"
)

func TestContextLoggerFollowsDefault(t *testing.T) {
	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	h, err := NewHandler(&buf, axon.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	SetDefault(h)
	defer SetDefault(DiscardHandler())

	logger.With("subnet", 7).Info("subnet removed", "reason", "MaxPenalties")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test", record["pkg"])
	assert.Equal(t, float64(7), record["subnet"])
	assert.Equal(t, "MaxPenalties", record["reason"])
	assert.Equal(t, "subnet removed", record["msg"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, axon.LogConfig{Level: "warn", Format: "logfmt"})
	require.NoError(t, err)
	SetDefault(h)
	defer SetDefault(DiscardHandler())

	logger := WithContext("pkg", "test")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn("shown", "k", 1)
	assert.Contains(t, buf.String(), "shown")
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		level   string
		emitted []string
	}{
		{"trace", []string{"trace", "debug", "info"}},
		{"debug", []string{"debug", "info"}},
		{"", []string{"info"}},
		{"INFO", []string{"info"}},
		{"error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			h, err := NewHandler(&buf, axon.LogConfig{Level: tt.level, Format: "json"})
			require.NoError(t, err)
			SetDefault(h)
			defer SetDefault(DiscardHandler())

			logger := WithContext("pkg", "test")
			logger.Trace("trace")
			logger.Debug("debug")
			logger.Info("info")

			var got []string
			dec := json.NewDecoder(&buf)
			for dec.More() {
				var record map[string]any
				require.NoError(t, dec.Decode(&record))
				got = append(got, record["msg"].(string))
			}
			assert.Equal(t, tt.emitted, got)
		})
	}
}

func TestNewHandlerErrors(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, axon.LogConfig{Format: "xml"})
	assert.Error(t, err)
	_, err = NewHandler(&bytes.Buffer{}, axon.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
