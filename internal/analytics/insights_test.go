package analytics

import (
	"math"
	"testing"

	"finestra/internal/core"
)

func tx(id int64, date core.Date, name, category string, paise int64) core.Transaction {
	return core.Transaction{ID: id, Date: date, Name: name, Category: category, Amount: core.Money{Paise: paise}}
}

func TestComputeEmpty(t *testing.T) {
	ins := Compute(nil)
	if ins.TotalSpent.Paise != 0 || ins.TotalIncome.Paise != 0 {
		t.Fatalf("totals = %d/%d, want 0/0", ins.TotalSpent.Paise, ins.TotalIncome.Paise)
	}
	if ins.LargestExpense.Valid {
		t.Error("largest expense should be absent")
	}
	if ins.Trend != TrendStable {
		t.Errorf("trend = %q, want stable", ins.Trend)
	}
	if ins.SavingsRate != 0 {
		t.Errorf("savings rate = %f, want 0", ins.SavingsRate)
	}
}

func TestComputeSavingsRate(t *testing.T) {
	d := core.NewDate(2024, 6, 1)
	ins := Compute([]core.Transaction{
		tx(1, d, "Groceries", core.CategoryFood, -10000),
		tx(2, d, "Salary", core.CategoryIncome, 50000),
	})
	if ins.SavingsRate != 80 {
		t.Fatalf("savings rate = %f, want 80", ins.SavingsRate)
	}
	if ins.TotalSpent.Paise != 10000 {
		t.Errorf("total spent = %d, want 10000", ins.TotalSpent.Paise)
	}
	if ins.TotalIncome.Paise != 50000 {
		t.Errorf("total income = %d, want 50000", ins.TotalIncome.Paise)
	}
}

func TestComputeNegativeSavingsRate(t *testing.T) {
	d := core.NewDate(2024, 6, 1)
	ins := Compute([]core.Transaction{
		tx(1, d, "Rent", core.CategoryBills, -60000),
		tx(2, d, "Salary", core.CategoryIncome, 50000),
	})
	if ins.SavingsRate >= 0 {
		t.Fatalf("savings rate = %f, want negative", ins.SavingsRate)
	}
}

func TestComputeCategoryBreakdown(t *testing.T) {
	d := core.NewDate(2024, 6, 1)
	ins := Compute([]core.Transaction{
		tx(1, d, "Groceries", core.CategoryFood, -30000),
		tx(2, d, "Cab", core.CategoryTransport, -10000),
		tx(3, d, "Dinner", core.CategoryFood, -20000),
		tx(4, d, "Salary", core.CategoryIncome, 100000),
	})

	if len(ins.CategoryBreakdown) != 2 {
		t.Fatalf("breakdown rows = %d, want 2 (income excluded)", len(ins.CategoryBreakdown))
	}
	if ins.TopCategory.Category != core.CategoryFood {
		t.Errorf("top category = %q, want Food", ins.TopCategory.Category)
	}
	if ins.TopCategory.Amount.Paise != 50000 {
		t.Errorf("top amount = %d, want 50000", ins.TopCategory.Amount.Paise)
	}

	var pct float64
	for _, row := range ins.CategoryBreakdown {
		pct += row.Percentage
	}
	if math.Abs(pct-100) > 1e-9 {
		t.Errorf("percentages sum to %f, want 100", pct)
	}

	if ins.LargestExpense.Name != "Groceries" || ins.LargestExpense.Amount.Paise != 30000 {
		t.Errorf("largest = %q/%d, want Groceries/30000", ins.LargestExpense.Name, ins.LargestExpense.Amount.Paise)
	}
}

func TestComputeAverageDaily(t *testing.T) {
	// Ten days of range, 1000 rupees spent: 100 rupees a day.
	ins := Compute([]core.Transaction{
		tx(1, core.NewDate(2024, 6, 1), "A", core.CategoryFood, -50000),
		tx(2, core.NewDate(2024, 6, 11), "B", core.CategoryFood, -50000),
	})
	if math.Abs(ins.AverageDaily-100) > 1e-9 {
		t.Fatalf("average daily = %f, want 100", ins.AverageDaily)
	}
}

func TestComputeAverageDailySingleDay(t *testing.T) {
	ins := Compute([]core.Transaction{
		tx(1, core.NewDate(2024, 6, 1), "A", core.CategoryFood, -50000),
	})
	if math.Abs(ins.AverageDaily-500) > 1e-9 {
		t.Fatalf("average daily = %f, want 500 (span floors at one day)", ins.AverageDaily)
	}
}

func TestComputeTrend(t *testing.T) {
	cases := []struct {
		name       string
		secondHalf int64 // paise magnitude per expense in the later half
		want       Trend
	}{
		{"increasing", 11500, TrendIncreasing},
		{"decreasing", 8500, TrendDecreasing},
		{"stable slightly up", 10200, TrendStable},
		{"stable slightly down", 9500, TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ins := Compute([]core.Transaction{
				tx(1, core.NewDate(2024, 6, 1), "A", core.CategoryFood, -10000),
				tx(2, core.NewDate(2024, 6, 2), "B", core.CategoryFood, -10000),
				tx(3, core.NewDate(2024, 6, 10), "C", core.CategoryFood, -tc.secondHalf),
				tx(4, core.NewDate(2024, 6, 11), "D", core.CategoryFood, -tc.secondHalf),
			})
			if ins.Trend != tc.want {
				t.Fatalf("trend = %q, want %q", ins.Trend, tc.want)
			}
		})
	}
}

func TestComputeSingleExpenseTrendStable(t *testing.T) {
	ins := Compute([]core.Transaction{
		tx(1, core.NewDate(2024, 6, 1), "A", core.CategoryFood, -10000),
	})
	if ins.Trend != TrendStable {
		t.Fatalf("trend = %q, want stable with one expense", ins.Trend)
	}
}
