package receipt

import (
	"testing"
	"time"
)

func TestExtractDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want string // empty means no date expected
	}{
		{"slash mdy", "COSTCO\n12/25/2023\nTOTAL 5.00", "2023-12-25"},
		{"dash mdy", "12-25-2023", "2023-12-25"},
		{"dot mdy", "12.25.2023", "2023-12-25"},
		{"two digit year", "01/02/24", "2024-01-02"},
		{"iso ymd", "2023-12-25 14:03", "2023-12-25"},
		{"month name short", "Dec 25, 2023", "2023-12-25"},
		{"month name long", "December 25 2023", "2023-12-25"},
		{"month name with period", "Jan. 2, 2024", "2024-01-02"},
		{"single digit fields", "3/7/2024", "2024-03-07"},
		{"future date rejected", "12/25/2025", ""},
		{"stale date rejected", "01/15/2021", ""},
		{"impossible day rejected", "02/30/2024", ""},
		{"impossible month rejected", "13/45/2023", ""},
		{"no date", "TOTAL 5.00\nthanks", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := extractDate(tt.text, now)
			if got != tt.want {
				t.Errorf("date = %q, want %q", got, tt.want)
			}
			wantConf := dateConfidence
			if tt.want == "" {
				wantConf = 0
			}
			if conf != wantConf {
				t.Errorf("confidence = %v, want %v", conf, wantConf)
			}
		})
	}
}

func TestExtractDate_RejectedMatchFallsThrough(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	// The short MM/DD/YY pattern reads "23-12-25" out of the ISO date as
	// month 23; range validation must reject it and let the ISO pattern
	// recover the real date.
	got, _ := extractDate("printed 2023-12-25", now)
	if got != "2023-12-25" {
		t.Errorf("date = %q, want %q", got, "2023-12-25")
	}

	// A stale first match must not shadow a valid later format.
	got, _ = extractDate("reprint of 01/15/2019\nvisit date Dec 25, 2023", now)
	if got != "2023-12-25" {
		t.Errorf("date = %q, want %q", got, "2023-12-25")
	}
}

func TestMakeDate_NoNormalization(t *testing.T) {
	tests := []struct {
		year, month, day int
		ok               bool
	}{
		{2024, 2, 29, true},  // leap day
		{2023, 2, 29, false}, // not a leap year
		{2024, 4, 31, false},
		{2024, 12, 31, true},
		{2024, 0, 10, false},
		{2024, 6, 0, false},
	}

	for _, tt := range tests {
		_, ok := makeDate(tt.year, tt.month, tt.day)
		if ok != tt.ok {
			t.Errorf("makeDate(%d, %d, %d) ok = %v, want %v", tt.year, tt.month, tt.day, ok, tt.ok)
		}
	}
}
