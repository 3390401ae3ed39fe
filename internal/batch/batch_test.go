package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
	"github.com/liteapi-travel/room-matcher-async/internal/store/storetest"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type erroringSource struct{}

func (erroringSource) Rooms(ctx context.Context) ([]model.Room, error) {
	return nil, errors.New("inventory offline")
}

func newProcessor(kv *storetest.Memory, src inventory.Source) *Processor {
	matcher := service.New(src, nil, zap.NewNop())
	p := New(kv, matcher, src, Options{Concurrency: 3, RateLimit: 1000, RateBurst: 10, ResultTTL: time.Hour}, nil, zap.NewNop())
	p.now = func() time.Time { return fixedNow }
	return p
}

func putBatch(t *testing.T, kv *storetest.Memory, key string, requests []Request) {
	t.Helper()
	payload, err := json.Marshal(requests)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), key, string(payload), 0))
}

func readOutcome(t *testing.T, kv *storetest.Memory, requestID string) Outcome {
	t.Helper()
	raw, err := kv.Get(context.Background(), ResultKey(requestID))
	require.NoError(t, err)
	var out Outcome
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestProcess_StoresResults(t *testing.T) {
	kv := storetest.NewMemory()
	putBatch(t, kv, "batch-1", []Request{
		{RequestID: "r1", Text: "I need a room for 6 people with a projector at 14:00"},
		{RequestID: "r2", Text: "room for 8 with hearing loop"},
		{RequestID: "r3", Text: "  "},
	})
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	require.NoError(t, p.Process(context.Background(), "batch-1", "p-1"))

	r1 := readOutcome(t, kv, "r1")
	require.NotNil(t, r1.Result)
	assert.Equal(t, model.MatchExact, r1.Result.MatchType)
	assert.Equal(t, "Room B (Medium)", r1.Result.Room.Name)
	assert.Equal(t, fixedNow, r1.ProcessedAt)

	r2 := readOutcome(t, kv, "r2")
	require.NotNil(t, r2.Result)
	assert.Equal(t, model.MatchNone, r2.Result.MatchType)
	assert.Contains(t, r2.Result.Explanation, "hearing loop")

	r3 := readOutcome(t, kv, "r3")
	assert.Nil(t, r3.Result)
	assert.Equal(t, service.ErrEmptyText.Error(), r3.Error)

	assert.False(t, kv.Has("batch-1"), "batch key is removed after success")
	assert.True(t, kv.Has("batch-1:p-1:processed"))
}

func TestProcess_IsIdempotent(t *testing.T) {
	kv := storetest.NewMemory()
	requests := []Request{{RequestID: "r1", Text: "room for 2 at 9am"}}
	putBatch(t, kv, "batch-1", requests)
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	require.NoError(t, p.Process(context.Background(), "batch-1", "p-1"))
	require.NoError(t, kv.Del(context.Background(), ResultKey("r1")))

	putBatch(t, kv, "batch-1", requests)
	require.NoError(t, p.Process(context.Background(), "batch-1", "p-1"))

	assert.False(t, kv.Has(ResultKey("r1")), "redelivered message must not be reprocessed")
	assert.True(t, kv.Has("batch-1"))
}

func TestProcess_AssignsMissingRequestIDs(t *testing.T) {
	kv := storetest.NewMemory()
	putBatch(t, kv, DefaultBatchKey, []Request{{Text: "room for 4 with wifi"}})
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	require.NoError(t, p.Process(context.Background(), "", "p-9"))

	var results []string
	for _, k := range kv.Keys() {
		if strings.HasPrefix(k, "room_match:") {
			results = append(results, k)
		}
	}
	require.Len(t, results, 1)
	assert.Len(t, strings.TrimPrefix(results[0], "room_match:"), 36)
}

func TestProcess_MissingAndEmptyBatches(t *testing.T) {
	kv := storetest.NewMemory()
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	require.NoError(t, p.Process(context.Background(), "nothing-here", "p-1"))

	putBatch(t, kv, "empty", []Request{})
	require.NoError(t, p.Process(context.Background(), "empty", "p-1"))
	assert.False(t, kv.Has("empty"))
}

func TestProcess_FailuresReleaseIdempotencyKey(t *testing.T) {
	kv := storetest.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "broken", "{not json", 0))
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	err := p.Process(context.Background(), "broken", "p-1")
	assert.ErrorContains(t, err, "decode batch")
	assert.False(t, kv.Has("broken:p-1:processed"))

	putBatch(t, kv, "batch-2", []Request{{RequestID: "r1", Text: "room for 2"}})
	p = newProcessor(kv, erroringSource{})

	err = p.Process(context.Background(), "batch-2", "p-1")
	assert.ErrorContains(t, err, "load rooms")
	assert.False(t, kv.Has("batch-2:p-1:processed"))
	assert.True(t, kv.Has("batch-2"), "batch is kept for a retry")
}

func TestProcess_ContextCancelled(t *testing.T) {
	kv := storetest.NewMemory()
	putBatch(t, kv, "batch-1", []Request{{RequestID: "r1", Text: "room for 2"}, {RequestID: "r2", Text: "room for 3"}})
	p := newProcessor(kv, inventory.Static(inventory.DefaultRooms()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Process(ctx, "batch-1", "p-1")

	assert.Error(t, err)
	assert.True(t, kv.Has("batch-1"))
}
