package core

import (
	"errors"
	"strings"
	"time"

	"cents/internal/receipt"
)

const (
	ScanPending   ScanStatus = "pending"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

type (
	// ScanStatus is the lifecycle state of a receipt scan.
	ScanStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Scan is one uploaded receipt image moving through the OCR pipeline.
	// Result is populated only once Status is completed; Error only once
	// failed.
	Scan struct {
		ID          string
		Status      ScanStatus
		ImageKey    string // object storage key of the uploaded image
		ContentType string
		Result      *receipt.ParsedReceipt
		Error       string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Expense struct {
		ID          int64
		Date        Date
		Description string
		Merchant    string
		Amount      Money
		Category    string
		Subcategory string
		ScanID      string // originating scan, empty for manual entries
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrScanNotFound     = errors.New("scan not found")
	ErrExpenseNotFound  = errors.New("expense not found")
)

func (s ScanStatus) Valid() bool {
	switch s {
	case ScanPending, ScanCompleted, ScanFailed:
		return true
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	// Check basic ranges
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (s Scan) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("empty scan id")
	}
	if !s.Status.Valid() {
		return errors.New("invalid scan status")
	}
	if s.Status == ScanCompleted && s.Result == nil {
		return errors.New("completed scan without result")
	}
	return nil
}
