package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteapi-travel/room-matcher-async/internal/harness"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"ROOM_SOURCE", "ROOMS_FILE", "INVENTORY_CACHE_TTL", "HARNESS_MODE", "TEST_BASE_URL", "LOG_FORMAT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "Small", "room", "for", "2", "at", "9am")
	require.NoError(t, err)

	var c model.Constraints
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	require.NotNil(t, c.Capacity)
	assert.Equal(t, 2, *c.Capacity)
	assert.Equal(t, "09:00", c.Time)
}

func TestParseCommand_BlankText(t *testing.T) {
	_, err := execute(t, "parse", "   ")
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	out, err := execute(t, "--log-level", "error", "--rooms", filepath.Join("..", "..", "testdata", "rooms.json"),
		"match", "room for 6 with wheelchair access at 5pm")
	require.NoError(t, err)

	var r model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.NotNil(t, r.Room)
	assert.Equal(t, model.MatchExact, r.MatchType)
	assert.Equal(t, "Room F (Access)", r.Room.Name)
}

func TestFeaturesCommand(t *testing.T) {
	out, err := execute(t, "features")
	require.NoError(t, err)

	assert.Contains(t, out, "projector")
	assert.Contains(t, out, "hearing_loop")
}

func TestHarnessCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")

	out, err := execute(t, "--log-level", "error", "harness", "--generated", "10", "--seed", "3", "--base-queries", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Results saved to "+path)

	var stats harness.Stats
	dec := json.NewDecoder(bytes.NewBufferString(out))
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 6+20+10, stats.TotalTests)
	assert.Zero(t, stats.Failures)
}

func TestHarnessCommand_UnknownMode(t *testing.T) {
	_, err := execute(t, "--log-level", "error", "harness", "--mode", "carrier-pigeon", "--out", "")
	assert.ErrorContains(t, err, "unknown harness mode")
}
