package csvimport

import (
	"errors"
	"testing"
	"time"

	"finestra/internal/core"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func TestParseRoundTrip(t *testing.T) {
	p := NewAt(fixedClock)
	raw := "date,name,amount\n2024-01-05,Coffee,-150\n2024-01-06,Salary,50000"

	res, err := p.Parse(raw, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.SuccessCount != 2 || res.ErrorCount != 0 {
		t.Fatalf("counts = %d/%d, want 2/0", res.SuccessCount, res.ErrorCount)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("got %d transactions", len(res.Transactions))
	}

	coffee := res.Transactions[0]
	if coffee.Amount.Paise != -15000 {
		t.Errorf("coffee amount = %d paise, want -15000", coffee.Amount.Paise)
	}
	if coffee.Category != core.CategoryOther {
		t.Errorf("coffee category = %q, want Other", coffee.Category)
	}
	if coffee.Icon != core.IconFor(core.CategoryOther) {
		t.Errorf("coffee icon = %q, want %q", coffee.Icon, core.IconFor(core.CategoryOther))
	}

	salary := res.Transactions[1]
	if salary.Amount.Paise != 5000000 {
		t.Errorf("salary amount = %d paise, want 5000000", salary.Amount.Paise)
	}
}

func TestParseMissingColumns(t *testing.T) {
	p := NewAt(fixedClock)
	_, err := p.Parse("foo,bar,baz\n1,2,3", nil)

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingColumnsError", err)
	}
	if len(missing.Headers) != 3 || missing.Headers[0] != "foo" {
		t.Fatalf("headers = %v", missing.Headers)
	}
}

func TestParseEmptyFile(t *testing.T) {
	p := NewAt(fixedClock)
	for _, raw := range []string{"", "date,name,amount", "\n\n  \n"} {
		if _, err := p.Parse(raw, nil); !errors.Is(err, ErrEmptyFile) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyFile", raw, err)
		}
	}
}

func TestParseSkipsBadRows(t *testing.T) {
	p := NewAt(fixedClock)
	raw := "date,name,amount\n2024-01-05,Dinner,notanumber\n2024-01-06,Lunch,-250"

	res, err := p.Parse(raw, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.SuccessCount != 1 || res.ErrorCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", res.SuccessCount, res.ErrorCount)
	}
	if res.Transactions[0].Name != "Lunch" {
		t.Fatalf("kept row = %q", res.Transactions[0].Name)
	}
}

func TestParseNoValidRows(t *testing.T) {
	p := NewAt(fixedClock)
	raw := "date,name,amount\n2024-01-05,Dinner,notanumber"
	if _, err := p.Parse(raw, nil); !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("error = %v, want ErrNoValidRows", err)
	}
}

func TestParseIDContinuation(t *testing.T) {
	p := NewAt(fixedClock)
	existing := []core.Transaction{{ID: 7}, {ID: 3}}
	raw := "date,name,amount\n2024-01-05,Coffee,-150\n2024-01-06,Tea,-80"

	res, err := p.Parse(raw, existing)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Transactions[0].ID != 8 || res.Transactions[1].ID != 9 {
		t.Fatalf("ids = %d,%d, want 8,9", res.Transactions[0].ID, res.Transactions[1].ID)
	}
}

func TestParseColumnDetection(t *testing.T) {
	p := NewAt(fixedClock)
	cases := []struct {
		name   string
		header string
	}{
		{"merchant and total", "transaction date,merchant,total"},
		{"description and price", "Date,Description,Price"},
		{"category column", "date,name,amount,category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.header + "\n2024-01-05,Shop,-100,Food"
			res, err := p.Parse(raw, nil)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if res.SuccessCount != 1 {
				t.Fatalf("success = %d", res.SuccessCount)
			}
		})
	}
}

func TestParseCategoryKeptVerbatim(t *testing.T) {
	p := NewAt(fixedClock)
	raw := "date,name,amount,category\n2024-01-05,Ledger,-100,Cryptocurrency"
	res, err := p.Parse(raw, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tx := res.Transactions[0]
	if tx.Category != "Cryptocurrency" {
		t.Fatalf("category = %q, want kept verbatim", tx.Category)
	}
	if tx.Icon != core.DefaultIcon {
		t.Fatalf("icon = %q, want default", tx.Icon)
	}
}

func TestParseQuotedFieldsAndDefaults(t *testing.T) {
	p := NewAt(fixedClock)
	raw := "date,name,amount\n\"2024-01-05\",\"\",\"₹-1500.00\""
	res, err := p.Parse(raw, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tx := res.Transactions[0]
	if tx.Name != fallbackName {
		t.Fatalf("name = %q, want %q", tx.Name, fallbackName)
	}
	if tx.Amount.Paise != -150000 {
		t.Fatalf("amount = %d paise, want -150000", tx.Amount.Paise)
	}
}

func TestNormalizeDateAnchorsIntoCurrentMonth(t *testing.T) {
	p := NewAt(fixedClock) // 2024-06-15
	cases := []struct {
		raw  string
		want core.Date
	}{
		{"01/22/2023", core.NewDate(2024, 6, 22)},  // MM/DD: day kept, month/year discarded
		{"22/01/2023", core.NewDate(2024, 6, 22)},  // DD/MM detected via first > 12
		{"2024-01-05", core.NewDate(2024, 1, 5)},   // year-first forms keep their real date
		{"garbage", core.NewDate(2024, 6, 15)},     // unparseable falls back to today
		{"", core.NewDate(2024, 6, 15)},
	}
	for _, tc := range cases {
		got := p.normalizeDate(tc.raw)
		if !got.Equal(tc.want.Time) {
			t.Errorf("normalizeDate(%q) = %s, want %s", tc.raw, got.ISO(), tc.want.ISO())
		}
	}
}
