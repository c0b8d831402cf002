// Package memory provides in-memory store implementations used by tests and
// the zero-configuration development backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cents/internal/core"
	"cents/internal/receipt"
)

// Store implements the scan, expense and image ports with plain maps. Safe
// for concurrent use.
type Store struct {
	mu       sync.Mutex
	scans    map[string]core.Scan
	expenses map[int64]core.Expense
	images   map[string]image
	nextID   int64
	now      func() time.Time
}

type image struct {
	contentType string
	data        []byte
}

func New() *Store {
	return &Store{
		scans:    map[string]core.Scan{},
		expenses: map[int64]core.Expense{},
		images:   map[string]image{},
		now:      time.Now,
	}
}

func (s *Store) CreateScan(_ context.Context, scan core.Scan) error {
	if err := scan.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = now
	}
	scan.UpdatedAt = now
	s.scans[scan.ID] = scan
	return nil
}

func (s *Store) GetScan(_ context.Context, id string) (core.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return core.Scan{}, core.ErrScanNotFound
	}
	return scan, nil
}

func (s *Store) CompleteScan(_ context.Context, id string, result receipt.ParsedReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return core.ErrScanNotFound
	}
	scan.Status = core.ScanCompleted
	scan.Result = &result
	scan.Error = ""
	scan.UpdatedAt = s.now()
	s.scans[id] = scan
	return nil
}

func (s *Store) FailScan(_ context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return core.ErrScanNotFound
	}
	scan.Status = core.ScanFailed
	scan.Error = reason
	scan.UpdatedAt = s.now()
	s.scans[id] = scan
	return nil
}

func (s *Store) ListPendingScans(_ context.Context, limit int) ([]core.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []core.Scan
	for _, scan := range s.scans {
		if scan.Status == core.ScanPending {
			pending = append(pending, scan)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.expenses[e.ID] = e
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, year int, month int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return core.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) MonthSummary(_ context.Context, year int, month int) (core.MonthSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := core.MonthSummary{Year: year, Month: month}
	byCategory := map[string]int64{}
	for _, e := range s.expenses {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		summary.Total.Cents += e.Amount.Cents
		byCategory[e.Category] += e.Amount.Cents
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.ByCategory = append(summary.ByCategory, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: byCategory[name]},
		})
	}
	return summary, nil
}

func (s *Store) Put(_ context.Context, key string, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = image{contentType: contentType, data: append([]byte(nil), data...)}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[key]
	if !ok {
		return nil, "", core.ErrScanNotFound
	}
	return append([]byte(nil), img.data...), img.contentType, nil
}
