package receipt

import (
	"regexp"
	"strings"
	"unicode"
)

// MerchantPattern is one entry of the known-retailer table. Patterns must use
// word-boundary anchoring so a short token is never matched inside a longer
// unrelated word ("target" inside "targeted", "bp" inside "BPO").
type MerchantPattern struct {
	Pattern       *regexp.Regexp
	CanonicalName string
	Priority      int
}

// defaultMerchantPatterns is the built-in retailer table, grouped into
// priority tiers. Higher tiers are less likely to false-positive: multi-word
// brand phrases and loyalty-program indicators (100) beat unique single-word
// brands (90), which beat common English words (80) and short ambiguous
// tokens (70, 50). The tier boundaries are tuned heuristics, not a contract.
var defaultMerchantPatterns = []MerchantPattern{
	// 100: multi-word names and brand-only indicator phrases.
	{regexp.MustCompile(`(?i)\bwhole\s*foods\b`), "Whole Foods", 100},
	{regexp.MustCompile(`(?i)\btrader\s*joe'?s?\b`), "Trader Joe's", 100},
	{regexp.MustCompile(`(?i)\bhome\s*depot\b`), "Home Depot", 100},
	{regexp.MustCompile(`(?i)\bbest\s*buy\b`), "Best Buy", 100},
	{regexp.MustCompile(`(?i)\bburger\s*king\b`), "Burger King", 100},
	{regexp.MustCompile(`(?i)\btaco\s*bell\b`), "Taco Bell", 100},
	{regexp.MustCompile(`(?i)\bpanera\s*bread\b`), "Panera Bread", 100},
	{regexp.MustCompile(`(?i)\bchick[-\s]?fil[-\s]?a\b`), "Chick-fil-A", 100},
	{regexp.MustCompile(`(?i)\bdollar\s*(?:tree|general)\b`), "Dollar Store", 100},
	{regexp.MustCompile(`(?i)\bcostco\s*wholesale\b`), "Costco", 100},
	{regexp.MustCompile(`(?i)\btarget\s*circle\b`), "Target", 100},
	{regexp.MustCompile(`(?i)\bstarbucks\s*rewards\b`), "Starbucks", 100},
	{regexp.MustCompile(`(?i)\bkroger\s*plus\b`), "Kroger", 100},
	{regexp.MustCompile(`(?i)\bcvs\s*extracare\b`), "CVS", 100},
	{regexp.MustCompile(`(?i)\bwalgreens\s*balance\s*rewards\b`), "Walgreens", 100},

	// 90: unique single-word brands.
	{regexp.MustCompile(`(?i)\bcostco\b`), "Costco", 90},
	{regexp.MustCompile(`(?i)\bwalmart\b`), "Walmart", 90},
	{regexp.MustCompile(`(?i)\bmcdonald'?s?\b`), "McDonald's", 90},
	{regexp.MustCompile(`(?i)\bchipotle\b`), "Chipotle", 90},
	{regexp.MustCompile(`(?i)\bwalgreens?\b`), "Walgreens", 90},
	{regexp.MustCompile(`(?i)\bnordstrom\b`), "Nordstrom", 90},
	{regexp.MustCompile(`(?i)\bsafeway\b`), "Safeway", 90},
	{regexp.MustCompile(`(?i)\bkroger\b`), "Kroger", 90},
	{regexp.MustCompile(`(?i)\bpublix\b`), "Publix", 90},
	{regexp.MustCompile(`(?i)\bdunkin'?\b`), "Dunkin'", 90},
	{regexp.MustCompile(`(?i)\bikea\b`), "IKEA", 90},
	{regexp.MustCompile(`(?i)\bstarbucks\b`), "Starbucks", 90},

	// 80: common words, strict word boundaries.
	{regexp.MustCompile(`(?i)\btarget\b`), "Target", 80},
	{regexp.MustCompile(`(?i)\bamazon\b`), "Amazon", 80},
	{regexp.MustCompile(`(?i)\baldi\b`), "Aldi", 80},
	{regexp.MustCompile(`(?i)\bsubway\b`), "Subway", 80},

	// 70: short tokens.
	{regexp.MustCompile(`(?i)\bcvs\b`), "CVS", 70},
	{regexp.MustCompile(`(?i)\b7[-\s]?eleven\b`), "7-Eleven", 70},

	// 50: shortest, most ambiguous tokens. "76" is additionally anchored to
	// whitespace so it cannot match inside an amount like "76.00".
	{regexp.MustCompile(`(?i)\bbp\b`), "BP", 50},
	{regexp.MustCompile(`(?i)\bshell\b`), "Shell", 50},
	{regexp.MustCompile(`(?m)(?:^|\s)76(?:\s|$)`), "76", 50},
}

const (
	merchantFallbackLines  = 5  // header lines considered by the fallback scan
	merchantFallbackMaxLen = 30 // truncation length for a fallback name
)

var (
	// Lines of nothing but digits and receipt punctuation cannot be a name.
	numericLineRe = regexp.MustCompile(`^[\d\s\-/.:#*]+$`)
	// Header lines starting with a receipt keyword are metadata, not a name.
	headerKeywordRe = regexp.MustCompile(`(?i)^(?:total|subtotal|tax|cash|card|change|date|time|member)`)
)

// resolveMerchant matches the known-retailer table against the full text,
// highest priority first, then falls back to scanning the receipt header for
// a line that plausibly names the store. The second return value is the
// confidence contribution.
func (p *Parser) resolveMerchant(text string, lines []string) (string, float64) {
	for _, mp := range p.merchants {
		if mp.Pattern.MatchString(text) {
			return mp.CanonicalName, merchantTierConfidence(mp.Priority)
		}
	}

	limit := merchantFallbackLines
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if len(line) < 3 {
			continue
		}
		if numericLineRe.MatchString(line) {
			continue
		}
		if headerKeywordRe.MatchString(line) {
			continue
		}
		if countLetters(line) < 3 {
			continue
		}
		return truncate(line, merchantFallbackMaxLen), merchantFallbackConfidence
	}

	return "", 0
}

func merchantTierConfidence(priority int) float64 {
	switch {
	case priority >= 90:
		return merchantStrongConfidence
	case priority >= 70:
		return merchantKnownConfidence
	default:
		return merchantWeakConfidence
	}
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
