package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	applog "ledgerfetch/internal/log"
)

// handleIndex renders the HTML ledger. A failed collection renders the error
// banner with 502 and no table.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	var buf bytes.Buffer
	status := http.StatusOK

	ledger, err := s.collector.Collect(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Ledger collection failed",
			applog.FieldOperation, applog.OpCollect,
			applog.FieldError, err.Error())
		status = http.StatusBadGateway
		err = s.html.RenderError(&buf, err)
	} else {
		err = s.html.Render(&buf, ledger)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render ledger page",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleTransactions serves the ledger as JSON, or {"error": ...} with 502.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	ledger, err := s.collector.Collect(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Ledger collection failed",
			applog.FieldOperation, applog.OpCollect,
			applog.FieldError, err.Error())
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := s.json.Render(&buf, ledger); err != nil {
		logger.ErrorContext(ctx, "Failed to encode ledger",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", s.json.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"uptime":          time.Since(s.started).Round(time.Second).String(),
		"total_requests":  metrics.TotalRequests,
		"failed_requests": metrics.FailedRequests,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
