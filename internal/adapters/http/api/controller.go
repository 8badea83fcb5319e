package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/crossing/internal/domain/relay"
	"github.com/okian/crossing/pkg/logger"
)

// controllerRequest mirrors the body of POST /controller. A pointer keeps an
// absent direction apart from a present one; a JSON null body leaves it nil too.
type controllerRequest struct {
	Direction *string `json:"direction"`
}

func (c controllerRequest) validate() error {
	if c.Direction == nil {
		return fmt.Errorf("%w: missing key: direction", ErrBadRequest)
	}
	return nil
}

// ControllerHandler handles writes from the controller device and polls from
// the game client.
type ControllerHandler struct {
	relay relay.Relay
	log   logger.Logger
}

// NewControllerHandler creates a new controller handler.
func NewControllerHandler(r relay.Relay, log logger.Logger) *ControllerHandler {
	return &ControllerHandler{relay: r, log: log}
}

// HandleSet handles POST /controller requests.
func (h *ControllerHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req controllerRequest
	err := decodeBody(w, r, &req)
	if err == nil {
		err = req.validate()
	}
	if err != nil {
		h.log.Warn(r.Context(), "rejected controller command",
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		writeFailure(w, err)
		return
	}

	accepted := h.relay.Set(r.Context(), *req.Direction)
	h.log.Debug(r.Context(), "controller command stored", logger.String("direction", accepted))
	writeJSON(w, http.StatusOK, directionResponse{Success: true, Direction: accepted})
}

// HandlePoll handles GET /controller requests. Reading consumes the command.
func (h *ControllerHandler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	direction := h.relay.PollAndClear(r.Context())
	writeJSON(w, http.StatusOK, directionResponse{Success: true, Direction: direction})
}
