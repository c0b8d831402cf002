package receipt

import (
	"sort"
	"strings"
	"time"
)

// Per-stage confidence contributions. Summed by Parse and clamped to [0, 1].
const (
	merchantStrongConfidence   = 0.35 // pattern priority >= 90
	merchantKnownConfidence    = 0.25 // pattern priority 70-89
	merchantWeakConfidence     = 0.15 // pattern priority < 70
	merchantFallbackConfidence = 0.10 // header line scan
	totalPatternConfidence     = 0.35 // keyword-anchored total match
	totalFallbackConfidence    = 0.15 // largest-amount fallback
	dateConfidence             = 0.15
	itemConfidence             = 0.02 // per accepted line item
)

// Parser extracts structured receipt data from OCR text. The zero-argument
// New gives the built-in pattern tables; options can extend them. All tables
// are fixed after construction, so one Parser can serve concurrent callers.
type Parser struct {
	merchants []MerchantPattern
	now       func() time.Time
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithMerchantPatterns appends operator-supplied merchant patterns to the
// built-in table. They compete on priority like any built-in entry.
func WithMerchantPatterns(patterns ...MerchantPattern) Option {
	return func(p *Parser) {
		p.merchants = append(p.merchants, patterns...)
	}
}

// WithClock overrides the time source used for date recency validation.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// New builds a Parser. The merchant table is sorted by descending priority
// once, here, so matching is a plain first-hit scan.
func New(opts ...Option) *Parser {
	p := &Parser{
		merchants: append([]MerchantPattern(nil), defaultMerchantPatterns...),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	sort.SliceStable(p.merchants, func(i, j int) bool {
		return p.merchants[i].Priority > p.merchants[j].Priority
	})
	return p
}

var defaultParser = New()

// Parse runs the default Parser. See (*Parser).Parse.
func Parse(text string) ParsedReceipt {
	return defaultParser.Parse(text)
}

// Parse extracts merchant, total, subtotal, date, currency and line items
// from raw OCR text. The stages are independent: each contributes its own
// confidence, summed and clamped at the end. Malformed or empty input yields
// a result with zero confidence and default fields, never an error.
func (p *Parser) Parse(text string) ParsedReceipt {
	lines := splitLines(text)

	result := ParsedReceipt{
		Currency: defaultCurrency,
		Items:    []LineItem{},
		RawText:  text,
	}

	var confidence float64

	merchant, merchantConf := p.resolveMerchant(text, lines)
	result.Merchant = merchant
	confidence += merchantConf

	total, totalConf := extractTotal(text)
	result.Total = total
	confidence += totalConf

	result.Subtotal = extractSubtotal(text)

	date, dateConf := extractDate(text, p.now())
	result.Date = date
	confidence += dateConf

	result.Currency = detectCurrency(text)

	items, itemsConf := extractItems(lines)
	result.Items = items
	confidence += itemsConf

	result.Confidence = clamp01(confidence)
	return result
}

// splitLines breaks OCR text into trimmed, non-empty lines. This is the only
// normalization the parser performs.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
