package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Sanity bounds for monetary candidates. Anything outside is discarded and
// the next strategy gets a chance.
var (
	minTotal         = decimal.NewFromInt(1)
	maxTotal         = decimal.NewFromInt(10000)
	minFallbackTotal = decimal.NewFromInt(5)
	maxItemPrice     = decimal.NewFromInt(1000)
)

// totalStrategy is one ordered attempt at finding the receipt total. The
// first strategy whose captured amount survives the [1, 10000] bound wins.
type totalStrategy struct {
	re   *regexp.Regexp
	conf float64
}

// totalStrategies run most-specific first: explicit TOTAL keywords (including
// Costco's "**TOTAL" banner), AMOUNT/BALANCE labels, the amount a card was
// charged, then looser TOTAL-line shapes and a dollar amount closing the
// text.
var totalStrategies = []totalStrategy{
	{regexp.MustCompile(`(?i)\*{2,4}\s*TOTAL\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\bGRAND\s*TOTAL\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\bTOTAL\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\bAMOUNT\s*(?:DUE)?\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\bBALANCE\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\bVISA\s+([\d,]+\.\d{2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?im)TOTAL.*?([\d,]+\.\d{2})\s*$`), totalPatternConfidence},
	{regexp.MustCompile(`(?im)TOTAL[^\d\n]*?(\d{1,2}\.\d{2})\b`), totalPatternConfidence},
	{regexp.MustCompile(`(?i)\$\s*([\d,]+\.\d{2})\s*$`), totalPatternConfidence},
}

// fallbackAmountRe collects every 1-4 digit two-decimal token for the
// largest-amount fallback.
var fallbackAmountRe = regexp.MustCompile(`\b\d{1,4}\.\d{2}\b`)

// extractTotal finds the receipt total. Keyword-anchored strategies
// contribute more confidence than the largest-plausible-amount fallback,
// which leans on totals usually being the biggest figure on the slip.
func extractTotal(text string) (*decimal.Decimal, float64) {
	for _, strat := range totalStrategies {
		m := strat.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		if inRange(value, minTotal, maxTotal) {
			return &value, strat.conf
		}
	}

	var largest *decimal.Decimal
	for _, token := range fallbackAmountRe.FindAllString(text, -1) {
		value, err := parseAmount(token)
		if err != nil {
			continue
		}
		if !inRange(value, minFallbackTotal, maxTotal) {
			continue
		}
		if largest == nil || value.GreaterThan(*largest) {
			v := value
			largest = &v
		}
	}
	if largest != nil {
		return largest, totalFallbackConfidence
	}

	return nil, 0
}

var subtotalRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSUBTOTAL\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`),
	regexp.MustCompile(`(?i)\bSUB\s+TOTAL\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})\b`),
}

// extractSubtotal finds the pre-tax subtotal. It carries no confidence
// weight; it only enriches the pre-filled form.
func extractSubtotal(text string) *decimal.Decimal {
	for _, re := range subtotalRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		if inRange(value, minTotal, maxTotal) {
			return &value
		}
	}
	return nil
}

// parseAmount converts a captured numeric token to a decimal, stripping
// comma thousands separators.
func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
}

func inRange(v, min, max decimal.Decimal) bool {
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}
