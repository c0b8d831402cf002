package store

import (
	"context"

	"cents/internal/core"
	"cents/internal/receipt"
)

// Ports for outbound adapters.
type (
	// ScanStore persists receipt scans through their pipeline lifecycle.
	ScanStore interface {
		// CreateScan records a new pending scan.
		CreateScan(ctx context.Context, s core.Scan) error

		// GetScan returns a scan by ID, or core.ErrScanNotFound.
		GetScan(ctx context.Context, id string) (core.Scan, error)

		// CompleteScan transitions a scan to completed with its parse result.
		CompleteScan(ctx context.Context, id string, result receipt.ParsedReceipt) error

		// FailScan transitions a scan to failed with a reason.
		FailScan(ctx context.Context, id string, reason string) error

		// ListPendingScans returns up to limit scans still awaiting processing,
		// oldest first.
		ListPendingScans(ctx context.Context, limit int) ([]core.Scan, error)
	}

	// ExpenseStore persists confirmed expenses.
	ExpenseStore interface {
		// CreateExpense stores the expense and returns its ID.
		CreateExpense(ctx context.Context, e core.Expense) (int64, error)

		// GetExpense returns an expense by ID, or core.ErrExpenseNotFound.
		GetExpense(ctx context.Context, id int64) (core.Expense, error)

		// ListExpenses returns all expenses for the specified year and month.
		ListExpenses(ctx context.Context, year int, month int) ([]core.Expense, error)

		// DeleteExpense removes an expense, or returns core.ErrExpenseNotFound.
		DeleteExpense(ctx context.Context, id int64) error

		// MonthSummary returns spending totals for a specific year and month.
		MonthSummary(ctx context.Context, year int, month int) (core.MonthSummary, error)
	}

	// ImageStore holds the uploaded receipt images the worker reads back.
	ImageStore interface {
		Put(ctx context.Context, key string, contentType string, data []byte) error
		Get(ctx context.Context, key string) (data []byte, contentType string, err error)
	}
)
