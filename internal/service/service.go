// Package service runs the extraction and matching pipeline for one request
// text against the configured room inventory.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/extract"
	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/match"
	"github.com/liteapi-travel/room-matcher-async/internal/metrics"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// ErrEmptyText rejects blank requests before they reach the extractor.
var ErrEmptyText = errors.New("no text provided")

// Matcher is safe for concurrent use as long as its Source is.
type Matcher struct {
	rooms   inventory.Source
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds a Matcher. m may be nil.
func New(rooms inventory.Source, m *metrics.Metrics, logger *zap.Logger) *Matcher {
	return &Matcher{rooms: rooms, metrics: m, logger: logger}
}

// Parse extracts constraints from text without matching.
func (s *Matcher) Parse(text string) (model.Constraints, error) {
	if strings.TrimSpace(text) == "" {
		return model.Constraints{}, ErrEmptyText
	}
	return extract.Extract(text), nil
}

// Match extracts constraints from text and matches them against a fresh
// inventory snapshot.
func (s *Matcher) Match(ctx context.Context, text string) (model.Result, error) {
	constraints, err := s.Parse(text)
	if err != nil {
		return model.Result{}, err
	}
	rooms, err := s.rooms.Rooms(ctx)
	if err != nil {
		s.metrics.InventoryError()
		return model.Result{}, fmt.Errorf("load rooms: %w", err)
	}
	return s.MatchConstraints(constraints, rooms), nil
}

// MatchConstraints matches already extracted constraints against rooms.
// The request text is deliberately absent from the logs.
func (s *Matcher) MatchConstraints(c model.Constraints, rooms []model.Room) model.Result {
	result := match.Find(c, rooms)
	s.metrics.ObserveMatch(result)

	fields := []zap.Field{
		zap.String("match_type", string(result.MatchType)),
		zap.Strings("requirements", c.Requirements),
		zap.Int("rooms", len(rooms)),
	}
	if c.Capacity != nil {
		fields = append(fields, zap.Int("capacity", *c.Capacity))
	}
	if c.Time != "" {
		fields = append(fields, zap.String("time", c.Time))
	}
	if result.Score != nil {
		fields = append(fields, zap.Int("score", *result.Score))
	}
	if result.Room != nil {
		fields = append(fields, zap.String("room_id", result.Room.ID))
	}
	s.logger.Debug("matched request", fields...)
	return result
}
