// Package csvimport parses heterogeneous bank CSV exports into normalized
// transactions. Column positions are discovered from the header row by
// case-insensitive substring match, so exports from different banks import
// without configuration.
package csvimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finestra/internal/core"
)

var (
	// ErrEmptyFile means the input had no data rows beyond the header.
	ErrEmptyFile = errors.New("csv import: file is empty or has no data rows")
	// ErrNoValidRows means every data row failed to parse.
	ErrNoValidRows = errors.New("csv import: no valid rows found")
)

// MissingColumnsError reports that a required column could not be located.
// It carries the discovered header tokens for diagnostics.
type MissingColumnsError struct {
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("csv import: missing required columns (date, name/description, amount); found headers: %s",
		strings.Join(e.Headers, ", "))
}

// Result is the outcome of one import batch. Transactions appear in input
// line order; the caller prepends them ahead of the existing collection.
type Result struct {
	Transactions []core.Transaction
	SuccessCount int
	ErrorCount   int
}

// Parser turns raw CSV text into transactions. The zero value is not
// usable; construct with New.
type Parser struct {
	now func() time.Time
}

// New returns a parser using the wall clock for date anchoring.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewAt returns a parser with a fixed clock, for tests.
func NewAt(now func() time.Time) *Parser {
	return &Parser{now: now}
}

const fallbackName = "Unknown Transaction"

// Parse parses raw CSV text. Ids continue from the maximum id present in
// existing, so an import never collides with transactions already in the
// session. Per-row failures increment ErrorCount and do not abort the
// batch; a batch where every row fails returns ErrNoValidRows.
func (p *Parser) Parse(raw string, existing []core.Transaction) (Result, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return Result{}, ErrEmptyFile
	}

	headers := splitFields(strings.ToLower(lines[0]))
	dateIdx := findColumn(headers, "date")
	nameIdx := findColumn(headers, "name", "description", "merchant")
	amountIdx := findColumn(headers, "amount", "price", "total")
	categoryIdx := findColumn(headers, "category", "type")
	if dateIdx < 0 || nameIdx < 0 || amountIdx < 0 {
		return Result{}, &MissingColumnsError{Headers: headers}
	}

	nextID := int64(1)
	for _, tx := range existing {
		if tx.ID >= nextID {
			nextID = tx.ID + 1
		}
	}

	var res Result
	for _, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) < 3 {
			res.ErrorCount++
			continue
		}
		amount, err := parseAmountField(field(fields, amountIdx))
		if err != nil {
			res.ErrorCount++
			continue
		}

		category := core.CategoryOther
		if categoryIdx >= 0 {
			if v := field(fields, categoryIdx); v != "" {
				category = v
			}
		}

		name := field(fields, nameIdx)
		if name == "" {
			name = fallbackName
		}

		res.Transactions = append(res.Transactions, core.Transaction{
			ID:       nextID,
			Date:     p.normalizeDate(field(fields, dateIdx)),
			Name:     name,
			Category: category,
			Amount:   amount,
			Icon:     core.IconFor(category),
		})
		nextID++
		res.SuccessCount++
	}

	if res.SuccessCount == 0 {
		return res, ErrNoValidRows
	}
	return res, nil
}

// splitFields splits a CSV line on commas and strips surrounding double
// quotes and whitespace from each field. Embedded commas and escaped
// quotes are not supported.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	out := make([]string, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"`)
		out[i] = strings.TrimSpace(part)
	}
	return out
}

// findColumn returns the index of the first header containing any of the
// given substrings, or -1.
func findColumn(headers []string, substrings ...string) int {
	for i, h := range headers {
		for _, sub := range substrings {
			if strings.Contains(h, sub) {
				return i
			}
		}
	}
	return -1
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// parseAmountField strips everything except digits, '.', and '-' before
// parsing, so currency symbols and grouping separators in exports don't
// break the import.
func parseAmountField(s string) (core.Money, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return core.ParseSignedAmount(b.String())
}

// normalizeDate resolves a raw date field, anchoring slash- or dash-
// delimited day/month forms into the current month: only the day-of-month
// survives, the imported month and year are discarded so the rows land in
// the current dashboard window. Fields that don't fit that shape go
// through generic date parsing and keep their full date; anything
// unparseable falls back to today.
func (p *Parser) normalizeDate(raw string) core.Date {
	now := p.now()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return core.DateOf(now)
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) == 3 {
		first, err1 := atoi(parts[0])
		second, err2 := atoi(parts[1])
		if err1 == nil && err2 == nil {
			day := second // MM/DD order
			if first > 12 {
				day = first // DD/MM order
			}
			if day >= 1 && day <= 31 {
				return core.NewDate(now.Year(), int(now.Month()), day)
			}
		}
	}

	for _, layout := range []string{"2006-01-02", "2006/01/02", "01/02/2006", "02 Jan 2006", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return core.DateOf(t)
		}
	}
	return core.DateOf(now)
}

func atoi(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errors.New("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
