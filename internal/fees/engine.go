// Package fees computes overdue fees from a tiered fee schedule.
//
// Fees accrue day by day: every overdue open day contributes the amount of
// the first interval containing its 1-based index, or nothing when the index
// falls in a gap between intervals. The running total is clamped to the
// schedule maximum after every day, so once the cap is reached the total
// stays there.
package fees

import (
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"

	"github.com/shopspring/decimal"
)

// ComputeFee returns the total fee owed after overdueDays overdue open days.
func ComputeFee(overdueDays int, schedule domain.FeeSchedule) decimal.Decimal {
	total := decimal.Zero
	for day := 1; day <= overdueDays; day++ {
		total = accrueDay(total, day, schedule)
	}
	return total
}

// Accrue returns, for each open day in order, the amount added to the total
// on that day. The amounts sum to ComputeFee(len(openDays), schedule); days
// past the cap or inside a gap are reported with a zero amount.
func Accrue(openDays []time.Time, schedule domain.FeeSchedule) []domain.Accrual {
	accruals := make([]domain.Accrual, 0, len(openDays))
	total := decimal.Zero
	for i, date := range openDays {
		next := accrueDay(total, i+1, schedule)
		accruals = append(accruals, domain.Accrual{
			Date:   date,
			Amount: next.Sub(total),
		})
		total = next
	}
	return accruals
}

// Sum adds up accrual amounts.
func Sum(accruals []domain.Accrual) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accruals {
		total = total.Add(a.Amount)
	}
	return total
}

func accrueDay(total decimal.Decimal, day int, schedule domain.FeeSchedule) decimal.Decimal {
	if interval, ok := IntervalFor(day, schedule.Intervals); ok {
		total = total.Add(interval.FeeAmount)
	}
	if limit := schedule.MaximumTotalAmount; limit != nil && total.GreaterThan(*limit) {
		total = *limit
	}
	return total
}

// IntervalFor returns the first interval containing the 1-based day index.
func IntervalFor(day int, intervals []domain.FeeInterval) (domain.FeeInterval, bool) {
	for _, interval := range intervals {
		if interval.Contains(day) {
			return interval, true
		}
	}
	return domain.FeeInterval{}, false
}
