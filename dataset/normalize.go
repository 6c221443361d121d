// ABOUTME: Field normalization helpers for snapshot rows
// ABOUTME: Handles US phone normalization, email collection, money and date parsing
package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitsRe    = regexp.MustCompile(`\d+`)
	delimiterRe = regexp.MustCompile(`[;,\s]+`)
)

// phoneColumns is the fixed scan order for phone candidates; first usable
// token becomes the primary phone.
var phoneColumns = []string{
	"Leads_Cell_E164", "Customers_Cell_E164", "Leads_Cell", "Customers_Cell",
	"Quotes_mobile_no", "Orders_Cell", "Leads_All_NormPhones", "Customers_All_NormPhones",
}

// emailColumns is the fixed scan order for email candidates.
var emailColumns = []string{
	"Leads_Email_1", "Leads_Email_2", "Quotes_email", "Quotes_email_2",
	"Customers_Email_1", "Customers_Email_2", "Orders_Customer_Email", "Invoices_Email",
}

func digits(s string) string {
	return strings.Join(digitsRe.FindAllString(s, -1), "")
}

// NormalizePhone normalizes a candidate token to +1 followed by ten digits.
// Returns "" for anything that is not a US number. Idempotent on its own
// output.
func NormalizePhone(s string) string {
	if s == "" {
		return ""
	}
	ds := digits(s)
	if len(ds) == 10 {
		return "+1" + ds
	}
	if len(ds) == 11 && strings.HasPrefix(ds, "1") {
		return "+" + ds
	}
	// Already-normalized values pass through unchanged
	if strings.HasPrefix(s, "+1") && len(ds) == 11 {
		return s
	}
	return ""
}

// CollectPhones scans the candidate columns in order, splitting multi-value
// cells, and returns the first-seen-wins primary plus the deduplicated list.
func CollectPhones(fields map[string]string) (string, []string) {
	seen := map[string]bool{}
	var all []string
	for _, col := range phoneColumns {
		val := fields[col]
		if val == "" {
			continue
		}
		for _, part := range delimiterRe.Split(val, -1) {
			p := NormalizePhone(part)
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			all = append(all, p)
		}
	}
	if len(all) == 0 {
		return "", nil
	}
	return all[0], all
}

// CollectEmails scans the candidate columns in order, lowercasing and keeping
// only tokens containing "@", deduplicated preserving first-seen order.
func CollectEmails(fields map[string]string) (string, []string) {
	seen := map[string]bool{}
	var all []string
	for _, col := range emailColumns {
		val := fields[col]
		if val == "" {
			continue
		}
		for _, part := range delimiterRe.Split(val, -1) {
			e := strings.ToLower(strings.TrimSpace(part))
			if e == "" || !strings.Contains(e, "@") || seen[e] {
				continue
			}
			seen[e] = true
			all = append(all, e)
		}
	}
	if len(all) == 0 {
		return "", nil
	}
	return all[0], all
}

// ParseMoney parses a currency cell. Multi-value cells keep only the text
// before the first comma; "$" and grouping commas are stripped. Any failure
// yields 0.
func ParseMoney(s string) float64 {
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseDate parses a snapshot date cell. Unparseable or empty input yields
// nil, never an error.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// firstNonEmpty returns the first non-empty value among the named columns.
func firstNonEmpty(fields map[string]string, cols ...string) string {
	for _, col := range cols {
		if v := fields[col]; v != "" {
			return v
		}
	}
	return ""
}
