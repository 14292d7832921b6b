package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/mselser95/polymarket-arb/internal/circuitbreaker"
	"github.com/mselser95/polymarket-arb/internal/ledger"
	"github.com/mselser95/polymarket-arb/internal/priceboard"
	"go.uber.org/zap"
)

// StatusHandler serves a point-in-time snapshot of price table coverage,
// ledger P&L, and circuit breaker state.
type StatusHandler struct {
	table   *priceboard.Table
	ledger  *ledger.Ledger
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
}

// NewStatusHandler creates a StatusHandler. ledger and breaker may be nil.
func NewStatusHandler(table *priceboard.Table, l *ledger.Ledger, b *circuitbreaker.Breaker, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{table: table, ledger: l, breaker: b, logger: logger}
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	MarketsQuoted int               `json:"markets_quoted"`
	MarketsTotal  int               `json:"markets_total"`
	Ledger        *ledger.Summary   `json:"ledger,omitempty"`
	Breaker       *circuitbreaker.Status `json:"breaker,omitempty"`
}

// HandleStatus handles GET /api/status.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoted, total := h.table.Coverage()
	resp := StatusResponse{MarketsQuoted: quoted, MarketsTotal: total}

	if h.ledger != nil {
		s := h.ledger.Summary()
		resp.Ledger = &s
	}
	if h.breaker != nil {
		s := h.breaker.Status()
		resp.Breaker = &s
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed-to-encode-status-response", zap.Error(err))
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *StatusHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
