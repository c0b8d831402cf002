// Package receipt turns raw, noisy OCR text from a photographed receipt into
// a structured record: merchant, total, date, currency and line items, plus a
// heuristic confidence score.
//
// Parsing is pure pattern matching over a single string. There is no network
// call, no I/O and no shared mutable state beyond read-only pattern tables, so
// a Parser is safe for concurrent use. Every extraction stage degrades to its
// zero value on failure; Parse never fails and never logs.
package receipt

import (
	"github.com/shopspring/decimal"
)

// LineItem is a single purchased item recovered from the receipt body.
type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ParsedReceipt is the immutable result of one Parse call. Pointer and empty
// values mean "not found": the caller must treat every field as a suggestion
// to be reviewed, never as a fact.
type ParsedReceipt struct {
	Merchant   string           `json:"merchant,omitempty"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Subtotal   *decimal.Decimal `json:"subtotal,omitempty"`
	Date       string           `json:"date,omitempty"` // YYYY-MM-DD
	Currency   string           `json:"currency"`       // ISO 4217, defaults to USD
	Items      []LineItem       `json:"items"`
	RawText    string           `json:"rawText"`
	Confidence float64          `json:"confidence"` // [0, 1]
}

// LowConfidenceThreshold is the confidence below which a parse result should
// be flagged for manual review.
const LowConfidenceThreshold = 0.3

// Validation messages surfaced to the reviewing user.
const (
	MsgMissingTotal    = "Could not extract total amount"
	MsgMissingMerchant = "Could not identify merchant"
	MsgMissingDate     = "Could not extract date"
	MsgLowConfidence   = "Low confidence - please verify extracted data"
)

// Validate reports advisory problems with a parse result. An empty slice
// means the result looks complete. Problems never block use of the record;
// they flag it for human review before it becomes an expense.
func Validate(r ParsedReceipt) []string {
	var problems []string
	if r.Total == nil || !r.Total.IsPositive() {
		problems = append(problems, MsgMissingTotal)
	}
	if r.Merchant == "" {
		problems = append(problems, MsgMissingMerchant)
	}
	if r.Date == "" {
		problems = append(problems, MsgMissingDate)
	}
	if r.Confidence < LowConfidenceThreshold {
		problems = append(problems, MsgLowConfidence)
	}
	return problems
}
