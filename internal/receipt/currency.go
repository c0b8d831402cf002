package receipt

import "strings"

// defaultCurrency is assumed when no symbol appears on the slip.
const defaultCurrency = "USD"

// currencySymbols maps symbols to ISO 4217 codes. Declaration order is the
// scan order: the first symbol present anywhere in the text decides.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

// detectCurrency always succeeds and carries no confidence weight.
func detectCurrency(text string) string {
	for _, cs := range currencySymbols {
		if strings.Contains(text, cs.symbol) {
			return cs.code
		}
	}
	return defaultCurrency
}
