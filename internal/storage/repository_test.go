package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cents/internal/core"
	"cents/internal/receipt"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "cents.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestScanRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	scan := core.Scan{
		ID:          "11111111-2222-3333-4444-555555555555",
		Status:      core.ScanPending,
		ImageKey:    "receipts/x.jpg",
		ContentType: "image/jpeg",
	}
	if err := repo.CreateScan(ctx, scan); err != nil {
		t.Fatalf("create scan: %v", err)
	}

	got, err := repo.GetScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != core.ScanPending || got.ImageKey != scan.ImageKey || got.Result != nil {
		t.Fatalf("unexpected scan: %+v", got)
	}

	result := receipt.Parse("COSTCO WHOLESALE\nTOTAL $97.18\n12/25/2023")
	if err := repo.CompleteScan(ctx, scan.ID, result); err != nil {
		t.Fatalf("complete scan: %v", err)
	}
	got, err = repo.GetScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if got.Status != core.ScanCompleted || got.Result == nil {
		t.Fatalf("expected completed scan with result, got %+v", got)
	}
	if got.Result.Merchant != "Costco" {
		t.Fatalf("result lost in round trip: %+v", got.Result)
	}

	if err := repo.FailScan(ctx, scan.ID, "unreadable image"); err != nil {
		t.Fatalf("fail scan: %v", err)
	}
	got, _ = repo.GetScan(ctx, scan.ID)
	if got.Status != core.ScanFailed || got.Error != "unreadable image" {
		t.Fatalf("expected failed scan, got %+v", got)
	}
}

func TestScanNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetScan(ctx, "nope"); !errors.Is(err, core.ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound, got %v", err)
	}
	if err := repo.CompleteScan(ctx, "nope", receipt.ParsedReceipt{}); !errors.Is(err, core.ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound, got %v", err)
	}
	if err := repo.FailScan(ctx, "nope", "x"); !errors.Is(err, core.ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound, got %v", err)
	}
}

func TestListPendingScans(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"scan-a", "scan-b", "scan-c"} {
		if err := repo.CreateScan(ctx, core.Scan{ID: id, Status: core.ScanPending}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.CompleteScan(ctx, "scan-b", receipt.ParsedReceipt{Currency: "USD"}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	pending, err := repo.ListPendingScans(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	for _, s := range pending {
		if s.ID == "scan-b" {
			t.Fatalf("completed scan still listed as pending")
		}
	}
}

func TestExpenseRoundTripAndSummary(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mk := func(day int, cents int64, category string) core.Expense {
		return core.Expense{
			Date:        core.NewDate(2025, 3, day),
			Description: "purchase",
			Merchant:    "Costco",
			Amount:      core.Money{Cents: cents},
			Category:    category,
			Subcategory: "Groceries",
		}
	}

	id, err := repo.CreateExpense(ctx, mk(7, 9718, "Food"))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, mk(2, 500, "Food")); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, mk(9, 1200, "Transport")); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	got, err := repo.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.Date.ISO() != "2025-03-07" || got.Amount.Cents != 9718 || got.Merchant != "Costco" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	list, err := repo.ListExpenses(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Date.Day() != 2 {
		t.Fatalf("unexpected listing: %+v", list)
	}
	if other, _ := repo.ListExpenses(ctx, 2025, 4); len(other) != 0 {
		t.Fatalf("month filter leaked: %+v", other)
	}

	summary, err := repo.MonthSummary(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total.Cents != 11418 {
		t.Fatalf("total = %d, want 11418", summary.Total.Cents)
	}
	if len(summary.ByCategory) != 2 || summary.ByCategory[0].Name != "Food" || summary.ByCategory[0].Amount.Cents != 10218 {
		t.Fatalf("by category = %+v", summary.ByCategory)
	}

	if err := repo.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if _, err := repo.GetExpense(ctx, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestCreateExpenseValidates(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.CreateExpense(context.Background(), core.Expense{}); err == nil {
		t.Fatalf("expected validation error")
	}
}
