package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date without a time-of-day component.
	Date struct {
		time.Time
	}

	// Transaction is a single dated, signed monetary event. Negative
	// amounts are expenses, positive amounts are income. Transactions are
	// never mutated after creation.
	Transaction struct {
		ID       int64  `json:"id"`
		Date     Date   `json:"date"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
		Icon     string `json:"icon"`
	}

	// Subscription is a recurring monthly charge.
	Subscription struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Amount      Money  `json:"amount"`
		RenewalDate Date   `json:"renewalDate"`
		Icon        string `json:"icon"`
	}

	// Goal is a savings target. Current may exceed Target; progress is
	// unbounded above 100%.
	Goal struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Target   Money  `json:"target"`
		Current  Money  `json:"current"`
		Deadline Date   `json:"deadline"`
		Emoji    string `json:"emoji"`
	}

	// Settings holds the per-session singleton configuration. It is
	// overwritten wholesale on change, never partially merged.
	Settings struct {
		MonthlyBudget Money  `json:"monthlyBudget"`
		UserName      string `json:"userName"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrZeroAmount    = errors.New("amount cannot be zero")
	ErrEmptyName     = errors.New("empty name")
	ErrZeroDate      = errors.New("date cannot be zero")
)

const isoDate = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(isoDate)
}

// MarshalJSON encodes the date as an ISO YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON decodes an ISO YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// SameMonth reports whether d falls in the same calendar month and year as t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == t.Month()
}

// Validate checks a transaction for structural validity. A zero amount is
// allowed here because CSV imports may legitimately produce one; manual
// entry paths reject zero amounts separately.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Amount.Paise < 0
}

// IsIncome reports whether the transaction is income.
func (t Transaction) IsIncome() bool {
	return t.Amount.Paise > 0
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	return s.RenewalDate.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Paise <= 0 {
		return ErrInvalidAmount
	}
	if g.Current.Paise < 0 {
		return ErrInvalidAmount
	}
	return g.Deadline.Validate()
}

// Progress returns the goal completion ratio as a percentage. It is not
// capped at 100.
func (g Goal) Progress() float64 {
	if g.Target.Paise == 0 {
		return 0
	}
	return float64(g.Current.Paise) / float64(g.Target.Paise) * 100
}

func (s Settings) Validate() error {
	if s.MonthlyBudget.Paise < 0 {
		return ErrInvalidAmount
	}
	return nil
}
