package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/internal/metrics"
	"github.com/teilomillet/edgerunner/internal/session"
	"github.com/teilomillet/edgerunner/pkg/models"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	ctx        context.Context
	defaults   calculator.Defaults
	metrics    *metrics.Registry
	sessions   *session.Registry
	dispatcher *session.Dispatcher
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

// NewHandler creates a new handler. Sessions live for ctx, not for the
// request that upgraded them.
func NewHandler(ctx context.Context, defaults calculator.Defaults, m *metrics.Registry, sessions *session.Registry, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		ctx:        ctx,
		defaults:   defaults,
		metrics:    m,
		sessions:   sessions,
		dispatcher: session.NewDispatcher(defaults, m),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"service":         "edgerunner",
		"active_sessions": h.sessions.Count(),
	})
}

// ConvertOdds renders a price in every notation
func (h *Handler) ConvertOdds(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	timer := h.metrics.StartTimer(metrics.KindConvert, metrics.TransportHTTP)
	resp, err := calculator.ConvertOdds(req)
	timer.Stop(err)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// CalculateSingle sizes a single wager
func (h *Handler) CalculateSingle(w http.ResponseWriter, r *http.Request) {
	var req models.SingleBetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	timer := h.metrics.StartTimer(metrics.KindSingle, metrics.TransportHTTP)
	resp, err := calculator.CalculateSingleBet(req, h.defaults)
	timer.Stop(err)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("calculation error: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// FlipSingle returns the request with the other side backed
func (h *Handler) FlipSingle(w http.ResponseWriter, r *http.Request) {
	var req models.SingleBetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	timer := h.metrics.StartTimer(metrics.KindFlip, metrics.TransportHTTP)
	resp, err := calculator.FlipSingleBet(req)
	timer.Stop(err)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// AllocateIndependent sizes every outcome on its own and scales to the cap
func (h *Handler) AllocateIndependent(w http.ResponseWriter, r *http.Request) {
	var req models.IndependentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	timer := h.metrics.StartTimer(metrics.KindIndependent, metrics.TransportHTTP)
	resp, err := calculator.CalculateIndependent(req, h.defaults)
	timer.Stop(err)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("calculation error: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// AllocateExact maximizes expected log growth over mutually exclusive outcomes
func (h *Handler) AllocateExact(w http.ResponseWriter, r *http.Request) {
	var req models.ExactRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	timer := h.metrics.StartTimer(metrics.KindExact, metrics.TransportHTTP)
	resp, err := calculator.CalculateExact(req, h.defaults)
	timer.Stop(err)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("calculation error: %v", err))
		return
	}
	h.metrics.RecordIterations(resp.Iterations)

	respondJSON(w, http.StatusOK, resp)
}

// HandleWebSocket upgrades the connection to a live calculator session
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := session.New(uuid.New().String(), conn, h.sessions, h.dispatcher, h.metrics, h.log)
	if !h.sessions.Register(s) {
		conn.Close()
		return
	}

	go s.WritePump(h.ctx)
	go s.ReadPump(h.ctx)
}

// decodeRequest reads a JSON body into v, answering 400 when it cannot
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// originChecker allows requests without an Origin header and those from an
// allowed origin; "*" allows everything.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
