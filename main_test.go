package roomMatching

import (
	"context"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteapi-travel/room-matcher-async/internal/batch"
)

func pubSubEvent(t *testing.T, attributes map[string]string) event.Event {
	t.Helper()
	e := event.New()
	e.SetID("evt-1")
	e.SetSource("//pubsub.googleapis.com/projects/demo/topics/room-requests")
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")
	require.NoError(t, e.SetData(event.ApplicationJSON, MessagePublishedData{
		Message: PubSubMessage{Data: []byte("go"), Attributes: attributes},
	}))
	return e
}

func TestBatchRef(t *testing.T) {
	key, id, err := batchRef(pubSubEvent(t, map[string]string{"batchKey": "requests:42", "processingId": "p-7"}))

	require.NoError(t, err)
	assert.Equal(t, "requests:42", key)
	assert.Equal(t, "p-7", id)
}

func TestBatchRef_DefaultsBatchKey(t *testing.T) {
	key, id, err := batchRef(pubSubEvent(t, nil))

	require.NoError(t, err)
	assert.Equal(t, batch.DefaultBatchKey, key)
	assert.Empty(t, id)
}

func TestBatchRef_BadPayload(t *testing.T) {
	e := event.New()
	require.NoError(t, e.SetData(event.ApplicationJSON, []byte(`"not an object"`)))

	_, _, err := batchRef(e)

	assert.ErrorContains(t, err, "event.DataAs")
}

func TestFunctionsInitialised(t *testing.T) {
	require.NotNil(t, deps)

	result, err := deps.Matcher.Match(context.Background(), "room for 2 at 9am")

	require.NoError(t, err)
	assert.NotEmpty(t, result.MatchType)
}
