package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cents/internal/core"
	"cents/internal/receipt"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the scan and expense store ports on a single
// sqlite file. Receipt parse results are stored as JSON alongside the scan
// row; confirmed expenses live in their own table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateScan implements store.ScanStore.
func (r *SQLiteRepository) CreateScan(ctx context.Context, s core.Scan) error {
	if err := s.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scans (id, status, image_key, content_type, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, string(s.Status), s.ImageKey, s.ContentType, s.Error, s.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("create scan: %w", err)
	}

	slog.InfoContext(ctx, "Scan saved to SQLite",
		"id", s.ID,
		"status", s.Status,
		"image_key", s.ImageKey)
	return nil
}

// GetScan implements store.ScanStore.
func (r *SQLiteRepository) GetScan(ctx context.Context, id string) (core.Scan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, image_key, content_type, result_json, error, created_at, updated_at
		FROM scans WHERE id = ?`, id)
	return scanRow(row)
}

// CompleteScan implements store.ScanStore.
func (r *SQLiteRepository) CompleteScan(ctx context.Context, id string, result receipt.ParsedReceipt) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode parse result: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE scans SET status = ?, result_json = ?, error = '', updated_at = ?
		WHERE id = ?`,
		string(core.ScanCompleted), string(payload), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}
	return affectedOr(res, core.ErrScanNotFound)
}

// FailScan implements store.ScanStore.
func (r *SQLiteRepository) FailScan(ctx context.Context, id string, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scans SET status = ?, error = ?, updated_at = ?
		WHERE id = ?`,
		string(core.ScanFailed), reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("fail scan: %w", err)
	}
	return affectedOr(res, core.ErrScanNotFound)
}

// ListPendingScans implements store.ScanStore.
func (r *SQLiteRepository) ListPendingScans(ctx context.Context, limit int) ([]core.Scan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, image_key, content_type, result_json, error, created_at, updated_at
		FROM scans WHERE status = ? ORDER BY created_at ASC LIMIT ?`,
		string(core.ScanPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending scans: %w", err)
	}
	defer rows.Close()

	var scans []core.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (core.Scan, error) {
	var (
		s          core.Scan
		status     string
		resultJSON sql.NullString
	)
	err := row.Scan(&s.ID, &status, &s.ImageKey, &s.ContentType, &resultJSON, &s.Error, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Scan{}, core.ErrScanNotFound
	}
	if err != nil {
		return core.Scan{}, fmt.Errorf("scan row: %w", err)
	}
	s.Status = core.ScanStatus(status)
	if resultJSON.Valid && resultJSON.String != "" {
		var result receipt.ParsedReceipt
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return core.Scan{}, fmt.Errorf("decode parse result: %w", err)
		}
		s.Result = &result
	}
	return s, nil
}

// CreateExpense implements store.ExpenseStore.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (date, description, merchant, amount_cents, category, subcategory, scan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Date.ISO(), e.Description, e.Merchant, e.Amount.Cents, e.Category, e.Subcategory, e.ScanID)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.ISO())
	return id, nil
}

// GetExpense implements store.ExpenseStore.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, description, merchant, amount_cents, category, subcategory, scan_id
		FROM expenses WHERE id = ?`, id)
	e, err := expenseRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return e, err
}

// ListExpenses implements store.ExpenseStore.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, year int, month int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, merchant, amount_cents, category, subcategory, scan_id
		FROM expenses WHERE substr(date, 1, 7) = ? ORDER BY date ASC, id ASC`,
		yearMonth(year, month))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := expenseRow(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense implements store.ExpenseStore.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affectedOr(res, core.ErrExpenseNotFound)
}

// MonthSummary implements store.ExpenseStore.
func (r *SQLiteRepository) MonthSummary(ctx context.Context, year int, month int) (core.MonthSummary, error) {
	summary := core.MonthSummary{Year: year, Month: month}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses WHERE substr(date, 1, 7) = ?`,
		yearMonth(year, month)).Scan(&summary.Total.Cents)
	if err != nil {
		return summary, fmt.Errorf("month total: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM expenses WHERE substr(date, 1, 7) = ?
		GROUP BY category ORDER BY category ASC`,
		yearMonth(year, month))
	if err != nil {
		return summary, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return summary, fmt.Errorf("category row: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, ca)
	}
	return summary, rows.Err()
}

func expenseRow(row rowScanner) (core.Expense, error) {
	var (
		e    core.Expense
		date string
	)
	err := row.Scan(&e.ID, &date, &e.Description, &e.Merchant, &e.Amount.Cents, &e.Category, &e.Subcategory, &e.ScanID)
	if err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.Date = d
	return e, nil
}

func yearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func affectedOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
