// Package advisor hands the session's financial picture to an external
// language model and streams the reply back. The model only ever sees the
// reduced context assembled here; it has no access to the store itself.
package advisor

import (
	"fmt"
	"sort"
	"strings"

	"finestra/internal/core"
)

const recentContextLimit = 5

// BuildContext reduces store state into the system prompt for the chat
// model: display name, monthly budget, total spent, per-category totals,
// up to five most recent transactions, and goal progress. All amounts go
// through the shared currency formatter.
func BuildContext(settings core.Settings, transactions []core.Transaction, goals []core.Goal) string {
	var b strings.Builder

	name := strings.TrimSpace(settings.UserName)
	if name == "" {
		name = "the user"
	}
	b.WriteString("You are a personal finance advisor for " + name + ".\n")
	b.WriteString("Monthly budget: " + core.FormatMoney(settings.MonthlyBudget) + "\n")

	var totalSpent core.Money
	byCategory := make(map[string]int64)
	for _, tx := range transactions {
		if tx.IsExpense() {
			totalSpent = totalSpent.Add(tx.Amount.Abs())
			byCategory[tx.Category] += -tx.Amount.Paise
		}
	}
	b.WriteString("Total spent: " + core.FormatMoney(totalSpent) + "\n")

	if len(byCategory) > 0 {
		b.WriteString("Spending by category:\n")
		categories := make([]string, 0, len(byCategory))
		for category := range byCategory {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			if byCategory[categories[i]] != byCategory[categories[j]] {
				return byCategory[categories[i]] > byCategory[categories[j]]
			}
			return categories[i] < categories[j]
		})
		for _, category := range categories {
			b.WriteString(fmt.Sprintf("- %s: %s\n", category, core.FormatMoney(core.Money{Paise: byCategory[category]})))
		}
	}

	if len(transactions) > 0 {
		recent := make([]core.Transaction, len(transactions))
		copy(recent, transactions)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].Date.After(recent[j].Date.Time)
		})
		if len(recent) > recentContextLimit {
			recent = recent[:recentContextLimit]
		}
		b.WriteString("Recent transactions:\n")
		for _, tx := range recent {
			b.WriteString(fmt.Sprintf("- %s %s (%s): %s\n",
				tx.Date.ISO(), tx.Name, tx.Category, core.FormatMoney(tx.Amount)))
		}
	}

	if len(goals) > 0 {
		b.WriteString("Savings goals:\n")
		for _, goal := range goals {
			b.WriteString(fmt.Sprintf("- %s: %s of %s (%.0f%%)\n",
				goal.Name, core.FormatMoney(goal.Current), core.FormatMoney(goal.Target), goal.Progress()))
		}
	}

	b.WriteString("Give practical, specific advice grounded in these numbers. Keep answers short.")
	return b.String()
}
