package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestExtractItems(t *testing.T) {
	lines := []string{
		"WHOLE FOODS MARKET",
		"ORG BANANAS 1.49",
		"ALMOND MILK 32OZ 3.99 F",
		"SPARKLING WATER $2.50",
		"SUBTOTAL 7.98",
		"TAX 0.64",
		"TOTAL 8.62",
		"VISA 8.62",
		"12/25/2023",
	}

	items, conf := extractItems(lines)

	want := []LineItem{
		{Name: "ORG BANANAS", Price: decimal.RequireFromString("1.49")},
		{Name: "ALMOND MILK 32OZ", Price: decimal.RequireFromString("3.99")},
		{Name: "SPARKLING WATER", Price: decimal.RequireFromString("2.50")},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items %v, want %d", len(items), items, len(want))
	}
	for i := range want {
		if items[i].Name != want[i].Name || !items[i].Price.Equal(want[i].Price) {
			t.Errorf("item %d = %v, want %v", i, items[i], want[i])
		}
	}
	if got, wantConf := conf, 3*itemConfidence; got != wantConf {
		t.Errorf("confidence = %v, want %v", got, wantConf)
	}
}

func TestExtractItems_Rejections(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"summary keyword", "TAX 0.64"},
		{"payment keyword", "CASH TEND 20.00"},
		{"name too short", "X 4.99"},
		{"price too high", "GIFT CARD RELOAD 1500.00"},
		{"zero price", "COUPON 0.00"},
		{"no price", "THANK YOU FOR SHOPPING"},
		{"bare amount", "4.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, conf := extractItems([]string{tt.line})
			if len(items) != 0 {
				t.Errorf("items = %v, want none", items)
			}
			if conf != 0 {
				t.Errorf("confidence = %v, want 0", conf)
			}
		})
	}
}

func TestExtractItems_EmptySliceNotNil(t *testing.T) {
	items, _ := extractItems(nil)
	if items == nil {
		t.Fatal("items = nil, want empty slice")
	}
}
