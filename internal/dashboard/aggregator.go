// Package dashboard condenses the transaction collection into the
// figures the home view renders: budget windows, category distribution,
// a trailing weekly trend, and the most recent activity. Everything is
// recomputed from the snapshot on each call.
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"finestra/internal/core"
)

// Timeframe selects the budget window.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// IsValid reports whether the timeframe is one of the supported windows.
func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	default:
		return false
	}
}

// palette is the fixed rotating color set for the category distribution,
// assigned by rank.
var palette = []string{
	"#4F46E5", "#06B6D4", "#F59E0B", "#EF4444", "#10B981", "#8B5CF6",
}

type (
	// Budget is one timeframe's budget window. Remaining may be negative
	// when spending exceeds the window total.
	Budget struct {
		Timeframe Timeframe  `json:"timeframe"`
		Total     core.Money `json:"total"`
		Spent     core.Money `json:"spent"`
		Remaining core.Money `json:"remaining"`
	}

	// CategorySlice is one wedge of the distribution view.
	CategorySlice struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
		Color    string     `json:"color"`
	}

	// WeekPoint is one bucket of the trailing weekly trend.
	WeekPoint struct {
		Label string     `json:"label"`
		Spent core.Money `json:"spent"`
	}

	// RecentTransaction annotates a transaction with a human-relative
	// time label.
	RecentTransaction struct {
		core.Transaction
		RelativeLabel string `json:"relativeLabel"`
	}

	// Summary is the full dashboard payload.
	Summary struct {
		Budget       Budget              `json:"budget"`
		Distribution []CategorySlice     `json:"distribution"`
		WeeklyTrend  []WeekPoint         `json:"weeklyTrend"`
		Recent       []RecentTransaction `json:"recent"`
	}
)

// Aggregator computes dashboard summaries against an injectable clock.
type Aggregator struct {
	now func() time.Time
}

// New returns an aggregator on the wall clock.
func New() *Aggregator {
	return &Aggregator{now: time.Now}
}

// NewAt returns an aggregator with a fixed clock, for tests.
func NewAt(now func() time.Time) *Aggregator {
	return &Aggregator{now: now}
}

// Summarize computes the dashboard for the requested timeframe from the
// given transactions and monthly budget.
func (a *Aggregator) Summarize(transactions []core.Transaction, monthlyBudget core.Money, timeframe Timeframe) Summary {
	now := a.now()
	return Summary{
		Budget:       a.budget(transactions, monthlyBudget, timeframe, now),
		Distribution: a.distribution(transactions, now),
		WeeklyTrend:  a.weeklyTrend(transactions, now),
		Recent:       a.recent(transactions, now),
	}
}

// budget derives the window total from the monthly figure and sums
// expenses inside the window: last 1 day, last 7 days, or the current
// calendar month.
func (a *Aggregator) budget(transactions []core.Transaction, monthlyBudget core.Money, timeframe Timeframe, now time.Time) Budget {
	var total core.Money
	var cutoff time.Time
	today := core.DateOf(now).Time

	switch timeframe {
	case TimeframeDaily:
		total = core.Money{Paise: int64(math.Round(float64(monthlyBudget.Paise) / 30))}
		cutoff = today
	case TimeframeWeekly:
		total = core.Money{Paise: int64(math.Round(float64(monthlyBudget.Paise) / 4.33))}
		cutoff = today.AddDate(0, 0, -6)
	default:
		total = monthlyBudget
		cutoff = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	var spent core.Money
	for _, tx := range transactions {
		if !tx.IsExpense() {
			continue
		}
		if tx.Date.Before(cutoff) || tx.Date.After(today) {
			continue
		}
		spent = spent.Add(tx.Amount.Abs())
	}

	return Budget{
		Timeframe: timeframe,
		Total:     total,
		Spent:     spent,
		Remaining: core.Money{Paise: total.Paise - spent.Paise},
	}
}

// distribution groups current-month expenses by category, excluding
// Income, sorted descending with palette colors assigned by rank.
func (a *Aggregator) distribution(transactions []core.Transaction, now time.Time) []CategorySlice {
	byCategory := make(map[string]int64)
	for _, tx := range transactions {
		if !tx.IsExpense() || tx.Category == core.CategoryIncome {
			continue
		}
		if !tx.Date.SameMonth(now) {
			continue
		}
		byCategory[tx.Category] += -tx.Amount.Paise
	}

	slices := make([]CategorySlice, 0, len(byCategory))
	for category, paise := range byCategory {
		slices = append(slices, CategorySlice{Category: category, Amount: core.Money{Paise: paise}})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Amount.Paise != slices[j].Amount.Paise {
			return slices[i].Amount.Paise > slices[j].Amount.Paise
		}
		return slices[i].Category < slices[j].Category
	})
	for i := range slices {
		slices[i].Color = palette[i%len(palette)]
	}
	return slices
}

// weeklyTrend buckets expense totals into the trailing four 7-day
// windows, oldest first.
func (a *Aggregator) weeklyTrend(transactions []core.Transaction, now time.Time) []WeekPoint {
	labels := [4]string{"3 weeks ago", "2 weeks ago", "Last week", "This week"}
	today := core.DateOf(now).Time

	points := make([]WeekPoint, 4)
	for i := range points {
		points[i].Label = labels[i]
	}
	for _, tx := range transactions {
		if !tx.IsExpense() {
			continue
		}
		age := int(today.Sub(tx.Date.Time).Hours() / 24)
		if age < 0 || age > 27 {
			continue
		}
		// age 0..6 is this week, 7..13 last week, and so on.
		points[3-age/7].Spent = points[3-age/7].Spent.Add(tx.Amount.Abs())
	}
	return points
}

// recent returns the 4 most recent current-month transactions by date
// descending, each with a relative time label.
func (a *Aggregator) recent(transactions []core.Transaction, now time.Time) []RecentTransaction {
	var currentMonth []core.Transaction
	for _, tx := range transactions {
		if tx.Date.SameMonth(now) {
			currentMonth = append(currentMonth, tx)
		}
	}
	sort.SliceStable(currentMonth, func(i, j int) bool {
		return currentMonth[i].Date.After(currentMonth[j].Date.Time)
	})
	if len(currentMonth) > 4 {
		currentMonth = currentMonth[:4]
	}

	recent := make([]RecentTransaction, len(currentMonth))
	for i, tx := range currentMonth {
		recent[i] = RecentTransaction{
			Transaction:   tx,
			RelativeLabel: relativeLabel(tx.Date, now),
		}
	}
	return recent
}

// relativeLabel renders the age of a date in calendar days.
func relativeLabel(d core.Date, now time.Time) string {
	days := int(core.DateOf(now).Sub(d.Time).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 14:
		return "1 week ago"
	default:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
}
