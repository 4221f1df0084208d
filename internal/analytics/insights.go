// Package analytics computes aggregate spending statistics over a
// transaction snapshot. Everything here is pure recomputation: no state is
// kept between calls, so the results are always consistent with the
// snapshot passed in.
package analytics

import (
	"math"
	"sort"

	"finestra/internal/core"
)

// Trend classifies how expense magnitude moved across the observed range.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type (
	// CategorySpend is one row of the category breakdown. Percentage is
	// relative to total spending and only meaningful when total spending
	// is non-zero.
	CategorySpend struct {
		Category   string     `json:"category"`
		Amount     core.Money `json:"amount"`
		Percentage float64    `json:"percentage"`
	}

	// ExpenseRef points at a single expense. Valid is false when the
	// snapshot held no expenses.
	ExpenseRef struct {
		Name   string     `json:"name"`
		Amount core.Money `json:"amount"`
		Valid  bool       `json:"valid"`
	}

	// Insights is the aggregate statistics summary.
	Insights struct {
		TotalSpent        core.Money      `json:"totalSpent"`
		TotalIncome       core.Money      `json:"totalIncome"`
		CategoryBreakdown []CategorySpend `json:"categoryBreakdown"`
		TopCategory       CategorySpend   `json:"topCategory"`
		LargestExpense    ExpenseRef      `json:"largestExpense"`
		AverageDaily      float64         `json:"averageDaily"`
		Trend             Trend           `json:"trend"`
		SavingsRate       float64         `json:"savingsRate"`
	}
)

// Compute derives an Insights summary from a transaction collection.
func Compute(transactions []core.Transaction) Insights {
	ins := Insights{Trend: TrendStable}

	byCategory := make(map[string]int64)
	var expenses []core.Transaction
	for _, tx := range transactions {
		switch {
		case tx.IsExpense():
			abs := -tx.Amount.Paise
			ins.TotalSpent.Paise += abs
			byCategory[tx.Category] += abs
			expenses = append(expenses, tx)
			if abs > ins.LargestExpense.Amount.Paise || !ins.LargestExpense.Valid {
				ins.LargestExpense = ExpenseRef{Name: tx.Name, Amount: core.Money{Paise: abs}, Valid: true}
			}
		case tx.IsIncome():
			ins.TotalIncome.Paise += tx.Amount.Paise
		}
	}

	for category, paise := range byCategory {
		row := CategorySpend{Category: category, Amount: core.Money{Paise: paise}}
		if ins.TotalSpent.Paise > 0 {
			row.Percentage = float64(paise) / float64(ins.TotalSpent.Paise) * 100
		}
		ins.CategoryBreakdown = append(ins.CategoryBreakdown, row)
	}
	sort.Slice(ins.CategoryBreakdown, func(i, j int) bool {
		if ins.CategoryBreakdown[i].Amount.Paise != ins.CategoryBreakdown[j].Amount.Paise {
			return ins.CategoryBreakdown[i].Amount.Paise > ins.CategoryBreakdown[j].Amount.Paise
		}
		return ins.CategoryBreakdown[i].Category < ins.CategoryBreakdown[j].Category
	})
	if len(ins.CategoryBreakdown) > 0 {
		ins.TopCategory = ins.CategoryBreakdown[0]
	}

	ins.AverageDaily = ins.TotalSpent.Rupees() / float64(daysSpanned(transactions))
	ins.Trend = classifyTrend(expenses)

	if ins.TotalIncome.Paise > 0 {
		ins.SavingsRate = float64(ins.TotalIncome.Paise-ins.TotalSpent.Paise) /
			float64(ins.TotalIncome.Paise) * 100
	}

	return ins
}

// daysSpanned is the ceiling of the range between the earliest and latest
// transaction dates, across all transactions, with a floor of one day.
func daysSpanned(transactions []core.Transaction) int {
	if len(transactions) == 0 {
		return 1
	}
	earliest := transactions[0].Date.Time
	latest := transactions[0].Date.Time
	for _, tx := range transactions[1:] {
		if tx.Date.Before(earliest) {
			earliest = tx.Date.Time
		}
		if tx.Date.After(latest) {
			latest = tx.Date.Time
		}
	}
	days := int(math.Ceil(latest.Sub(earliest).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// classifyTrend splits expenses chronologically in half and compares mean
// magnitudes: more than a 10% rise is increasing, more than a 10% drop is
// decreasing, anything between is stable.
func classifyTrend(expenses []core.Transaction) Trend {
	if len(expenses) < 2 {
		return TrendStable
	}
	sorted := make([]core.Transaction, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	mid := len(sorted) / 2
	first := meanAbs(sorted[:mid])
	second := meanAbs(sorted[mid:])

	switch {
	case second > first*1.1:
		return TrendIncreasing
	case second < first*0.9:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func meanAbs(expenses []core.Transaction) float64 {
	if len(expenses) == 0 {
		return 0
	}
	var sum int64
	for _, tx := range expenses {
		sum += -tx.Amount.Paise
	}
	return float64(sum) / float64(len(expenses))
}
