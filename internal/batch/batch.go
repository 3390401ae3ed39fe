// Package batch processes queued room requests: a batch of texts stored under
// one key is matched by a bounded, rate-limited worker pool and each result is
// written back under its own key.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/metrics"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
	"github.com/liteapi-travel/room-matcher-async/internal/store"
)

// DefaultBatchKey is used when a message names no batch.
const DefaultBatchKey = "room_requests"

// Request is one queued room request.
type Request struct {
	RequestID string `json:"requestId"`
	Text      string `json:"text"`
}

// Outcome is what gets stored for a request.
type Outcome struct {
	RequestID   string             `json:"requestId"`
	Constraints *model.Constraints `json:"constraints,omitempty"`
	Result      *model.Result      `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	ProcessedAt time.Time          `json:"processedAt"`
}

// ResultKey is where the outcome of requestID is stored.
func ResultKey(requestID string) string {
	return fmt.Sprintf("room_match:%s", requestID)
}

// Options tune the worker pool.
type Options struct {
	Concurrency int
	RateLimit   float64 // requests per second
	RateBurst   int
	ResultTTL   time.Duration
}

type Processor struct {
	kv      store.KV
	matcher *service.Matcher
	rooms   inventory.Source
	opts    Options
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New builds a Processor. rooms supplies the inventory snapshot shared by a
// whole batch; m may be nil.
func New(kv store.KV, matcher *service.Matcher, rooms inventory.Source, opts Options, m *metrics.Metrics, logger *zap.Logger) *Processor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = float64(rate.Inf)
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}
	return &Processor{
		kv:      kv,
		matcher: matcher,
		rooms:   rooms,
		opts:    opts,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Process handles the batch stored under batchKey. A (batchKey, processingID)
// pair is processed at most once; redelivered messages are skipped.
func (p *Processor) Process(ctx context.Context, batchKey, processingID string) error {
	if batchKey == "" {
		batchKey = DefaultBatchKey
	}
	logger := p.logger.With(zap.String("batch_key", batchKey), zap.String("processing_id", processingID))

	idempotencyKey := fmt.Sprintf("%s:%s:processed", batchKey, processingID)
	fresh, err := p.kv.SetNX(ctx, idempotencyKey, "1", 0)
	if err != nil {
		logger.Warn("error checking idempotency key", zap.Error(err))
	} else if !fresh {
		logger.Info("batch already processed, skipping")
		return nil
	}

	data, err := p.kv.Get(ctx, batchKey)
	if errors.Is(err, store.ErrNotFound) || (err == nil && data == "") {
		logger.Info("no data found for batch")
		return nil
	}
	if err != nil {
		return p.release(ctx, idempotencyKey, fmt.Errorf("read batch: %w", err))
	}

	var requests []Request
	if err := json.Unmarshal([]byte(data), &requests); err != nil {
		return p.release(ctx, idempotencyKey, fmt.Errorf("decode batch: %w", err))
	}
	logger.Info("processing batch", zap.Int("requests", len(requests)))

	if len(requests) == 0 {
		logger.Info("empty batch, removing batch key")
		return p.kv.Del(ctx, batchKey)
	}

	rooms, err := p.rooms.Rooms(ctx)
	if err != nil {
		p.metrics.InventoryError()
		return p.release(ctx, idempotencyKey, fmt.Errorf("load rooms: %w", err))
	}

	limiter := rate.NewLimiter(rate.Limit(p.opts.RateLimit), p.opts.RateBurst)
	sem := make(chan struct{}, p.opts.Concurrency)
	errCh := make(chan error, len(requests))
	durations := make(chan time.Duration, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(idx int, r Request) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				errCh <- err
				return
			}

			start := time.Now()
			if err := p.handle(ctx, r, rooms); err != nil {
				logger.Warn("request failed", zap.Int("index", idx), zap.String("request_id", r.RequestID), zap.Error(err))
				p.metrics.BatchRequest("error")
				errCh <- err
				return
			}
			p.metrics.BatchRequest("ok")
			durations <- time.Since(start)
		}(i, req)
	}

	wg.Wait()
	close(errCh)
	close(durations)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	var (
		successCount int
		total        time.Duration
	)
	for d := range durations {
		successCount++
		total += d
	}

	if len(errs) > 0 {
		logger.Error("batch finished with errors", zap.Int("errors", len(errs)), zap.Int("succeeded", successCount))
		return p.release(ctx, idempotencyKey, fmt.Errorf("encountered %d errors during processing: %w", len(errs), errors.Join(errs...)))
	}

	logger.Info("batch processed",
		zap.Int("requests", len(requests)),
		zap.Duration("avg_duration", total/time.Duration(successCount)),
	)
	return p.kv.Del(ctx, batchKey)
}

// handle matches one request and stores its outcome. Blank texts are
// recorded as failed outcomes rather than failing the batch.
func (p *Processor) handle(ctx context.Context, r Request, rooms []model.Room) error {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	out := Outcome{RequestID: r.RequestID, ProcessedAt: p.now().UTC()}

	constraints, err := p.matcher.Parse(r.Text)
	if err != nil {
		out.Error = err.Error()
	} else {
		result := p.matcher.MatchConstraints(constraints, rooms)
		out.Constraints = &constraints
		out.Result = &result
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := p.kv.Set(ctx, ResultKey(r.RequestID), string(payload), p.opts.ResultTTL); err != nil {
		return fmt.Errorf("store outcome %s: %w", r.RequestID, err)
	}
	return nil
}

// release clears the idempotency marker so a redelivery can retry the batch.
func (p *Processor) release(ctx context.Context, idempotencyKey string, cause error) error {
	if err := p.kv.Del(ctx, idempotencyKey); err != nil {
		p.logger.Warn("failed to clear idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
	}
	return cause
}
