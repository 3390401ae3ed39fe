// Package server exposes the matcher over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/metrics"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
)

// maxBodyBytes caps request bodies; room requests are a sentence or two.
const maxBodyBytes = 64 << 10

type textRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ParseHandler answers POST {"text": ...} with the extracted constraints.
func ParseHandler(svc *service.Matcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := readText(w, r)
		if !ok {
			return
		}
		constraints, err := svc.Parse(text)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, constraints)
	}
}

// MatchHandler answers POST {"text": ...} with a match result.
func MatchHandler(svc *service.Matcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := readText(w, r)
		if !ok {
			return
		}
		result, err := svc.Match(r.Context(), text)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewRouter wires the API routes. m may be nil, which disables /metrics.
func NewRouter(svc *service.Matcher, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.Handle("/parse", m.WrapHandler("/parse", ParseHandler(svc, logger))).Methods(http.MethodPost)
	r.Handle("/match", m.WrapHandler("/match", MatchHandler(svc, logger))).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(r)
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(zap.NewStdLog(logger).Writer(), handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return "", false
	}
	return req.Text, true
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if errors.Is(err, service.ErrEmptyText) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No text provided"})
		return
	}
	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
