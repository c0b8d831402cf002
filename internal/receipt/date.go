package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoDate is the output layout for extracted dates.
const isoDate = "2006-01-02"

// recencyWindow guards against OCR misreads: a receipt date older than two
// years or in the future is treated as noise.
const recencyWindowYears = 2

type dateForm int

const (
	formMDY dateForm = iota // MM/DD/YYYY with / - . separators
	formMDYShort            // MM/DD/YY, two-digit year read as 20YY
	formYMD                 // ISO YYYY-MM-DD
	formMonthName           // Mon DD, YYYY
)

// datePatterns are tried in order; the first match that survives range and
// recency validation wins. A rejected match falls through to the next
// pattern, so an implausible MM/DD/YY read does not shadow a valid ISO date
// further down the slip.
var datePatterns = []struct {
	re   *regexp.Regexp
	form dateForm
}{
	{regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`), formMDY},
	{regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})\b`), formMDYShort},
	{regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`), formYMD},
	{regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})`), formMonthName},
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// extractDate finds the transaction date and returns it as YYYY-MM-DD. The
// second return value is the confidence contribution.
func extractDate(text string, now time.Time) (string, float64) {
	for _, dp := range datePatterns {
		m := dp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var year, month, day int
		switch dp.form {
		case formMDY:
			month, day, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
		case formMDYShort:
			month, day, year = atoi(m[1]), atoi(m[2]), 2000+atoi(m[3])
		case formYMD:
			year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
		case formMonthName:
			month = int(monthsByPrefix[strings.ToLower(m[1])])
			day, year = atoi(m[2]), atoi(m[3])
		}

		candidate, ok := makeDate(year, month, day)
		if !ok {
			continue
		}
		if !withinRecencyWindow(candidate, now) {
			continue
		}
		return candidate.Format(isoDate), dateConfidence
	}

	return "", 0
}

// makeDate builds a calendar date with explicit range checks. time.Date
// silently normalizes out-of-range components (month 23 becomes November of
// the next year), so validate before and verify the round trip after.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func withinRecencyWindow(candidate, now time.Time) bool {
	earliest := now.AddDate(-recencyWindowYears, 0, 0)
	return !candidate.Before(earliest) && !candidate.After(now)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
