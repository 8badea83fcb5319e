package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/crossing/internal/domain/relay"
	"github.com/okian/crossing/pkg/logger"
	"github.com/okian/crossing/pkg/metrics"
)

// StreamHandler pushes controller commands to the game client as server-sent
// events.
type StreamHandler struct {
	relay   relay.Relay
	log     logger.Logger
	metrics *metrics.Manager
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(r relay.Relay, log logger.Logger, m *metrics.Manager) *StreamHandler {
	return &StreamHandler{relay: r, log: log, metrics: m}
}

// HandleStream handles GET /controller-stream requests. It writes one frame per
// consumed command and returns when the client goes away.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rc := http.NewResponseController(w)
	// Streams are open-ended; not every writer supports deadlines.
	_ = rc.SetWriteDeadline(time.Time{})

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.log.Warn(ctx, "stream does not support flushing", logger.Error(err))
		return
	}

	subscriber := uuid.NewString()
	h.metrics.StreamSubscribed(1)
	defer h.metrics.StreamSubscribed(-1)
	h.log.Debug(ctx, "stream subscribed", logger.String("subscriber", subscriber))
	defer h.log.Debug(ctx, "stream closed", logger.String("subscriber", subscriber))

	for cmd := range h.relay.Stream(ctx) {
		if err := writeFrame(w, cmd.Direction); err != nil {
			h.log.Debug(ctx, "stream write failed",
				logger.String("subscriber", subscriber), logger.Error(err))
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
		h.metrics.RecordStreamFrame()
	}
}

// writeFrame writes `data: {"direction": "<d>"}` followed by a blank line.
func writeFrame(w http.ResponseWriter, direction string) error {
	quoted, err := json.Marshal(direction)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: {\"direction\": %s}\n\n", quoted); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
