package decision

import (
	"regexp"
	"strconv"
	"strings"
)

// RuleMatcher extracts constraints from retrieved rule snippets.
// The matching algorithm is pluggable; the default TextMatcher does an
// exact numeric parse, but an implementation could defer fuzzy
// judgment to the reasoning service instead.
type RuleMatcher interface {
	// Ceiling returns the lowest applicable budget ceiling found in
	// rules for the given currency, with the snippet that stated it.
	Ceiling(rules []string, currency string) (limit float64, snippet string, ok bool)

	// Exclusion returns the snippet excluding vendor, if any.
	Exclusion(rules []string, vendor string) (snippet string, ok bool)
}

// TextMatcher is the default RuleMatcher: keyword scan plus numeric
// parse. It understands plain integers, thousands separators and the
// shorthand amounts site managers actually type ("50k", "1.5 lakh").
type TextMatcher struct{}

var ceilingKeywords = []string{"limit", "budget", "ceiling", "cap", "maximum", "max", "under", "below", "not exceed"}

var exclusionKeywords = []string{"do not use", "don't use", "never use", "banned", "ban", "avoid", "not allowed", "excluded", "exclude", "blacklist"}

var amountPattern = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(k|lakh|lakhs|lac|crore|crores)?`)

// Ceiling scans rules for a budget ceiling. When several rules state
// ceilings, the lowest wins (the conservative reading). A rule naming
// a different currency than the order's is skipped; no conversion is
// performed.
func (TextMatcher) Ceiling(rules []string, currency string) (float64, string, bool) {
	var (
		best    float64
		snippet string
		found   bool
	)

	for _, rule := range rules {
		lower := strings.ToLower(rule)
		if !containsAny(lower, ceilingKeywords) {
			continue
		}
		if other, ok := statedCurrency(lower); ok && currency != "" && !strings.EqualFold(other, currency) {
			continue
		}
		amount, ok := parseAmount(rule)
		if !ok {
			continue
		}
		if !found || amount < best {
			best = amount
			snippet = rule
			found = true
		}
	}

	return best, snippet, found
}

// Exclusion scans rules for a vendor exclusion matching vendor.
func (TextMatcher) Exclusion(rules []string, vendor string) (string, bool) {
	if vendor == "" {
		return "", false
	}
	target := strings.ToLower(vendor)

	for _, rule := range rules {
		lower := strings.ToLower(rule)
		if !containsAny(lower, exclusionKeywords) {
			continue
		}
		if strings.Contains(lower, target) {
			return rule, true
		}
	}
	return "", false
}

// parseAmount extracts the largest monetary amount in text, applying
// shorthand multipliers. The largest is taken so incidental small
// numbers ("site 2") don't shadow the actual ceiling.
func parseAmount(text string) (float64, bool) {
	var (
		best  float64
		found bool
	)

	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			value *= 1_000
		case "lakh", "lakhs", "lac":
			value *= 100_000
		case "crore", "crores":
			value *= 10_000_000
		}
		if value > best {
			best = value
			found = true
		}
	}

	return best, found
}

// statedCurrency reports a currency code mentioned in the rule text.
func statedCurrency(lower string) (string, bool) {
	for _, code := range []string{"inr", "usd", "eur", "gbp", "aed", "rs"} {
		if containsWord(lower, code) {
			if code == "rs" {
				return "INR", true
			}
			return strings.ToUpper(code), true
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isAlnum(s[start-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
