package services

import (
	"context"
	"fmt"
	"time"

	"cents/internal/cache"
	"cents/internal/core"
	"cents/internal/store"
)

const (
	summaryCacheSize = 64
	summaryCacheTTL  = 5 * time.Minute
)

// ExpenseService wraps the expense store with month-summary caching.
type ExpenseService struct {
	expenses store.ExpenseStore
	summary  *cache.LRUCache[core.MonthSummary]
}

func NewExpenseService(expenses store.ExpenseStore) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		summary:  cache.NewLRUCache[core.MonthSummary](summaryCacheSize, summaryCacheTTL),
	}
}

// SummaryCache exposes the cache for cleanup registration.
func (s *ExpenseService) SummaryCache() *cache.LRUCache[core.MonthSummary] {
	return s.summary
}

// CreateExpense validates and stores an expense, invalidating the affected
// month's summary.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.summary.Delete(summaryKey(e.Date.Year(), e.Date.Month()))
	return id, nil
}

// ListExpenses returns all expenses for a month.
func (s *ExpenseService) ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error) {
	return s.expenses.ListExpenses(ctx, year, month)
}

// DeleteExpense removes an expense and invalidates its month's summary.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	e, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.summary.Delete(summaryKey(e.Date.Year(), e.Date.Month()))
	return nil
}

// MonthSummary returns the cached spending summary for a month.
func (s *ExpenseService) MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	key := summaryKey(year, month)
	if cached, ok := s.summary.Get(key); ok {
		return cached, nil
	}
	summary, err := s.expenses.MonthSummary(ctx, year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	s.summary.Set(key, summary)
	return summary, nil
}

func summaryKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
