package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestExtractTotal_KeywordStrategies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain total", "TOTAL 45.99", "45.99"},
		{"total with colon and symbol", "TOTAL: $45.99", "45.99"},
		{"starred banner", "** TOTAL 97.18", "97.18"},
		{"grand total", "GRAND TOTAL 123.45", "123.45"},
		{"amount due", "AMOUNT DUE $12.00", "12.00"},
		{"amount alone", "AMOUNT 12.00", "12.00"},
		{"balance", "BALANCE 33.10", "33.10"},
		{"card charge", "VISA 21.87", "21.87"},
		{"thousands separator", "TOTAL $1,234.56", "1234.56"},
		{"total at line end", "TOTAL DUE ....... 88.40", "88.40"},
		{"lowercase", "total 7.25", "7.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := extractTotal(tt.text)
			if got == nil {
				t.Fatalf("total = nil, want %s", tt.want)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("total = %s, want %s", got, tt.want)
			}
			if conf != totalPatternConfidence {
				t.Errorf("confidence = %v, want %v", conf, totalPatternConfidence)
			}
		})
	}
}

func TestExtractTotal_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"below one dollar", "TOTAL $0.50"},
		{"above ten thousand", "TOTAL $15000.00"},
		{"no amounts at all", "thank you for your visit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := extractTotal(tt.text)
			if got != nil {
				t.Errorf("total = %s, want nil", got)
			}
			if conf != 0 {
				t.Errorf("confidence = %v, want 0", conf)
			}
		})
	}
}

func TestExtractTotal_LargestAmountFallback(t *testing.T) {
	got, conf := extractTotal("COFFEE 4.50\nBAGEL 9.99\nPASTRY 19.99\nno totals printed")
	if got == nil || !got.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("total = %v, want 19.99", got)
	}
	if conf != totalFallbackConfidence {
		t.Errorf("confidence = %v, want %v", conf, totalFallbackConfidence)
	}
}

func TestExtractTotal_FallbackIgnoresSmallAmounts(t *testing.T) {
	// Everything under the five dollar fallback floor is treated as noise.
	got, conf := extractTotal("GUM 1.25\nMINTS 2.10")
	if got != nil {
		t.Errorf("total = %s, want nil", got)
	}
	if conf != 0 {
		t.Errorf("confidence = %v, want 0", conf)
	}
}

func TestExtractTotal_KeywordBeatsLargerAmount(t *testing.T) {
	// A keyword-anchored match wins even when a bigger figure appears
	// elsewhere (a membership number fragment, a rewards balance).
	got, conf := extractTotal("REWARDS BAL PTS\nTOTAL 23.10\nYOU SAVED 9999.99")
	if got == nil || !got.Equal(decimal.RequireFromString("23.10")) {
		t.Fatalf("total = %v, want 23.10", got)
	}
	if conf != totalPatternConfidence {
		t.Errorf("confidence = %v, want %v", conf, totalPatternConfidence)
	}
}

func TestExtractSubtotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string // empty means nil expected
	}{
		{"subtotal", "SUBTOTAL 41.50\nTOTAL 45.00", "41.50"},
		{"spaced form", "SUB TOTAL $18.20", "18.20"},
		{"absent", "TOTAL 45.00", ""},
		{"out of range", "SUBTOTAL 0.10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractSubtotal(tt.text)
			if tt.want == "" {
				if got != nil {
					t.Errorf("subtotal = %s, want nil", got)
				}
				return
			}
			if got == nil || !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("subtotal = %v, want %s", got, tt.want)
			}
		})
	}
}
