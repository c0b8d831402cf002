package receipt

import (
	"regexp"
	"strings"
)

var (
	// summaryLineRe screens out subtotal/tax/tender lines so they are not
	// double-counted as purchases.
	summaryLineRe = regexp.MustCompile(`(?i)(total|subtotal|tax|change|cash|card|payment|balance|visa|amount)`)

	// lineItemRe: a 3-30 character non-greedy name, whitespace, a price under
	// 1000 at line end, optionally followed by a single-letter tax flag.
	lineItemRe = regexp.MustCompile(`^(.{3,30}?)\s+\$?(\d{1,3}\.\d{2})\s*[A-Z]?$`)
)

// extractItems recovers name/price line items from the receipt body. Each
// accepted item adds a small confidence contribution, uncapped; the final
// clamp in Parse bounds the sum.
func extractItems(lines []string) ([]LineItem, float64) {
	items := []LineItem{}
	for _, line := range lines {
		if summaryLineRe.MatchString(line) {
			continue
		}
		m := lineItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len([]rune(name)) < 2 {
			continue
		}
		price, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		if !price.IsPositive() || !price.LessThan(maxItemPrice) {
			continue
		}
		items = append(items, LineItem{Name: name, Price: price})
	}
	return items, float64(len(items)) * itemConfidence
}
