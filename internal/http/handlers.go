package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"finestra/internal/analytics"
	"finestra/internal/core"
	"finestra/internal/csvimport"
	"finestra/internal/dashboard"
	"finestra/internal/log"
	"finestra/internal/persist"
)

// Import payloads are capped; a bank export is never this large.
const maxImportBytes = 5 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondDomainError maps domain errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persist.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrZeroAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrZeroDate):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Transactions())
}

type addTransactionRequest struct {
	Date     core.Date  `json:"date"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category := req.Category
	if category == "" {
		category = core.CategoryOther
	}

	tx, err := s.store.AddTransaction(r.Context(), core.Transaction{
		Date:     req.Date,
		Name:     req.Name,
		Category: category,
		Amount:   req.Amount,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	s.store.RemoveTransaction(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	s.store.ClearAllTransactions(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type importResponse struct {
	SuccessCount int                `json:"successCount"`
	ErrorCount   int                `json:"errorCount"`
	Transactions []core.Transaction `json:"transactions"`
}

// handleImportCSV parses the raw CSV request body and prepends the parsed
// batch. Per-row failures are reported in the counts; a batch with no
// valid rows is rejected wholesale.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	res, err := s.parser.Parse(string(raw), s.store.Transactions())
	if err != nil {
		var missing *csvimport.MissingColumnsError
		switch {
		case errors.As(err, &missing),
			errors.Is(err, csvimport.ErrEmptyFile),
			errors.Is(err, csvimport.ErrNoValidRows):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.store.ImportTransactions(r.Context(), res.Transactions)
	s.logger.InfoContext(r.Context(), "csv import completed",
		log.FieldCount, res.SuccessCount,
		"errors", res.ErrorCount)

	respondJSON(w, http.StatusOK, importResponse{
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Transactions: res.Transactions,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, analytics.Compute(s.store.Transactions()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	timeframe := dashboard.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = dashboard.TimeframeMonthly
	}
	if !timeframe.IsValid() {
		respondError(w, http.StatusBadRequest, "timeframe must be daily, weekly, or monthly")
		return
	}

	summary := s.aggregator.Summarize(
		s.store.Transactions(),
		s.store.Settings().MonthlyBudget,
		timeframe,
	)
	respondJSON(w, http.StatusOK, summary)
}
