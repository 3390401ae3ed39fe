// Package roomMatching registers the Cloud Functions of the room matcher: a
// Pub/Sub triggered batch processor and two HTTP endpoints.
package roomMatching

import (
	"context"
	"fmt"
	"log"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/app"
	"github.com/liteapi-travel/room-matcher-async/internal/batch"
	"github.com/liteapi-travel/room-matcher-async/internal/config"
	"github.com/liteapi-travel/room-matcher-async/internal/logging"
	"github.com/liteapi-travel/room-matcher-async/internal/server"
)

var deps *app.App

func init() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	deps, err = app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise", zap.Error(err))
	}

	functions.CloudEvent("room-matching", roomMatching)
	functions.HTTP("match", deps.Metrics.WrapHandler("/match", server.MatchHandler(deps.Matcher, logger)).ServeHTTP)
	functions.HTTP("parse", deps.Metrics.WrapHandler("/parse", server.ParseHandler(deps.Matcher, logger)).ServeHTTP)
}

// MessagePublishedData is the CloudEvent payload of a Pub/Sub push.
type MessagePublishedData struct {
	Message PubSubMessage `json:"message"`
}

type PubSubMessage struct {
	Data       []byte            `json:"data"`
	Attributes map[string]string `json:"attributes"`
}

func roomMatching(ctx context.Context, e event.Event) error {
	batchKey, processingID, err := batchRef(e)
	if err != nil {
		return err
	}
	return deps.Batch.Process(ctx, batchKey, processingID)
}

// batchRef reads the batch key and processing id from the message
// attributes.
func batchRef(e event.Event) (string, string, error) {
	var msg MessagePublishedData
	if err := e.DataAs(&msg); err != nil {
		return "", "", fmt.Errorf("event.DataAs: %w", err)
	}

	batchKey := msg.Message.Attributes["batchKey"]
	if batchKey == "" {
		batchKey = batch.DefaultBatchKey
	}
	return batchKey, msg.Message.Attributes["processingId"], nil
}
