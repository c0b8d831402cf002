package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"cents/internal/core"
)

type createExpenseRequest struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
	Amount      string `json:"amount"` // decimal string, e.g. "97.18"
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	ScanID      string `json:"scan_id"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Merchant    string `json:"merchant,omitempty"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	ScanID      string `json:"scan_id,omitempty"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date.ISO(),
		Description: e.Description,
		Merchant:    e.Merchant,
		Amount:      e.Amount.Decimal().StringFixed(2),
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		ScanID:      e.ScanID,
	}
}

// handleCreateExpense records a reviewed expense, optionally linked to the
// scan it came from.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	exp := core.Expense{
		Date:        date,
		Description: sanitizeInput(req.Description),
		Merchant:    sanitizeInput(req.Merchant),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(req.Category),
		Subcategory: sanitizeInput(req.Subcategory),
		ScanID:      sanitizeInput(req.ScanID),
	}
	if err := exp.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.expenses.CreateExpense(r.Context(), exp)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"expense_description", exp.Description,
			"amount_cents", exp.Amount.Cents,
			"category", exp.Category)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}
	exp.ID = id

	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", id,
		"amount_cents", exp.Amount.Cents,
		"category", exp.Category,
		"scan_id", exp.ScanID)

	writeJSON(w, http.StatusCreated, newExpenseResponse(exp))
}

// handleListExpenses returns all expenses for a month.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses",
			"error", err, "year", year, "month", month)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, newExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrExpenseNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type categoryAmountResponse struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryResponse struct {
	Year       int                      `json:"year"`
	Month      int                      `json:"month"`
	Total      string                   `json:"total"`
	TotalCents int64                    `json:"total_cents"`
	ByCategory []categoryAmountResponse `json:"by_category"`
}

// handleSummary returns the month total and per-category totals.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	summary, err := s.expenses.MonthSummary(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary error",
			"error", err, "year", year, "month", month)
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	resp := summaryResponse{
		Year:       summary.Year,
		Month:      summary.Month,
		Total:      summary.Total.Decimal().StringFixed(2),
		TotalCents: summary.Total.Cents,
		ByCategory: make([]categoryAmountResponse, 0, len(summary.ByCategory)),
	}
	for _, c := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryAmountResponse{
			Name:        c.Name,
			Amount:      c.Amount.Decimal().StringFixed(2),
			AmountCents: c.Amount.Cents,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
