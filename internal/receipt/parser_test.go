package receipt

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// testClock pins "now" so date recency checks are reproducible.
func testClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	return New(append([]Option{WithClock(testClock)}, opts...)...)
}

func TestParse_CleanReceipt(t *testing.T) {
	p := newTestParser(t)

	text := "COSTCO WHOLESALE #123\nMILK 2% GAL 3.49\nEGGS LARGE 5.99\nTOTAL $97.18\n12/25/2023"
	got := p.Parse(text)

	if got.Merchant != "Costco" {
		t.Errorf("Merchant = %q, want %q", got.Merchant, "Costco")
	}
	if got.Total == nil || !got.Total.Equal(decimal.RequireFromString("97.18")) {
		t.Errorf("Total = %v, want 97.18", got.Total)
	}
	if got.Date != "2023-12-25" {
		t.Errorf("Date = %q, want %q", got.Date, "2023-12-25")
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", got.Currency)
	}
	if got.Confidence <= 0.7 {
		t.Errorf("Confidence = %v, want > 0.7", got.Confidence)
	}
	if got.RawText != text {
		t.Errorf("RawText not preserved verbatim")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	p := newTestParser(t)

	got := p.Parse("")

	if got.Merchant != "" {
		t.Errorf("Merchant = %q, want empty", got.Merchant)
	}
	if got.Total != nil {
		t.Errorf("Total = %v, want nil", got.Total)
	}
	if got.Date != "" {
		t.Errorf("Date = %q, want empty", got.Date)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want USD default", got.Currency)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", got.Items)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestParse_FallbackTotalUsesLargestAmount(t *testing.T) {
	p := newTestParser(t)

	// No TOTAL keyword anywhere; amounts only appear as item prices.
	text := "CORNER DELI\nSODA 3.99\nSANDWICH 12.50\nPLATTER 45.00\nthank you"
	got := p.Parse(text)

	if got.Total == nil || !got.Total.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("Total = %v, want 45.00", got.Total)
	}

	// The fallback path must contribute less confidence than a keyword match:
	// merchant fallback 0.10 + total fallback 0.15 + items 3*0.02 = 0.31.
	keyword := p.Parse("CORNER DELI\nTOTAL $45.00")
	if got.Confidence >= keyword.Confidence {
		t.Errorf("fallback confidence %v should be below keyword confidence %v", got.Confidence, keyword.Confidence)
	}
}

func TestParse_Idempotent(t *testing.T) {
	p := newTestParser(t)

	text := "TRADER JOE'S\nBANANAS 1.99\nTOTAL 14.23\n01/02/2024"
	first := p.Parse(text)
	second := p.Parse(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParse_BoundsInvariant(t *testing.T) {
	p := newTestParser(t)

	inputs := []string{
		"",
		"TOTAL $0.50",       // below minimum total
		"TOTAL $99,999.00",  // above maximum total
		"TOTAL $97.18",
		"WIDGET 999.99",
		"WIDGET 0.00",
		"garbage \x00\x01 noise 12.34 more",
		"TOTAL\nTOTAL\nTOTAL 5.00\n13/45/9999",
	}

	for _, text := range inputs {
		got := p.Parse(text)
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Parse(%q).Confidence = %v, want within [0,1]", text, got.Confidence)
		}
		if got.Total != nil {
			if got.Total.LessThan(minTotal) || got.Total.GreaterThan(maxTotal) {
				t.Errorf("Parse(%q).Total = %v, out of [1,10000]", text, got.Total)
			}
		}
		for _, item := range got.Items {
			if !item.Price.IsPositive() || !item.Price.LessThan(maxItemPrice) {
				t.Errorf("Parse(%q) item price %v out of (0,1000)", text, item.Price)
			}
			if len(item.Name) < 2 {
				t.Errorf("Parse(%q) item name %q too short", text, item.Name)
			}
		}
	}
}

func TestParse_SubtotalSupplement(t *testing.T) {
	p := newTestParser(t)

	got := p.Parse("SAFEWAY\nSUBTOTAL 41.50\nTAX 3.50\nTOTAL 45.00")

	if got.Subtotal == nil || !got.Subtotal.Equal(decimal.RequireFromString("41.50")) {
		t.Errorf("Subtotal = %v, want 41.50", got.Subtotal)
	}
	if got.Total == nil || !got.Total.Equal(decimal.RequireFromString("45.00")) {
		t.Errorf("Total = %v, want 45.00", got.Total)
	}
}

func TestParse_WithMerchantPatternsOption(t *testing.T) {
	extra := MerchantPattern{
		Pattern:       mustPattern(t, `(?i)\bmom\s*&\s*pop\b`),
		CanonicalName: "Mom & Pop",
		Priority:      100,
	}
	p := newTestParser(t, WithMerchantPatterns(extra))

	got := p.Parse("MOM & POP GROCERY\nTOTAL 9.99")
	if got.Merchant != "Mom & Pop" {
		t.Errorf("Merchant = %q, want custom pattern to win", got.Merchant)
	}
}

func TestParse_ConcurrentUse(t *testing.T) {
	p := newTestParser(t)
	text := "WALMART\nTOTAL $23.45\n05/01/2024"
	want := p.Parse(text)

	done := make(chan ParsedReceipt, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- p.Parse(text) }()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; !reflect.DeepEqual(got, want) {
			t.Fatalf("concurrent Parse diverged: %+v != %+v", got, want)
		}
	}
}
