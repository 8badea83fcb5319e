package api

import (
	"fmt"
	"net/http"

	"github.com/okian/crossing/internal/domain/difficulty"
	"github.com/okian/crossing/pkg/logger"
	"github.com/okian/crossing/pkg/metrics"
)

// PredictHandler scores gameplay statistics.
type PredictHandler struct {
	scorer  difficulty.Scorer
	log     logger.Logger
	metrics *metrics.Manager
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(s difficulty.Scorer, log logger.Logger, m *metrics.Manager) *PredictHandler {
	return &PredictHandler{scorer: s, log: log, metrics: m}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var payload difficulty.Payload
	if err := decodeBody(w, r, &payload); err != nil {
		err = fmt.Errorf("%w: %w", difficulty.ErrInput, err)
		h.metrics.RecordPredictionError(difficulty.KindInput)
		if rec, ok := h.scorer.(RejectionRecorder); ok {
			rec.RecordRejectedPrediction(r.Context(), err)
		}
		h.log.Warn(r.Context(), "rejected predict request", logger.Error(err))
		writeFailure(w, err)
		return
	}

	score, err := h.scorer.Score(r.Context(), payload)
	if err != nil {
		h.log.Warn(r.Context(), "prediction failed",
			logger.String("kind", difficulty.ErrorKind(err)),
			logger.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, difficultyResponse{Success: true, Difficulty: score})
}
