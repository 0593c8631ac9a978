// Package metric holds the pure derivations the alert engine and detail
// pages share: day deltas, rotation policy parsing, burn rate, runway,
// and budget utilization. Everything here is a function of its inputs
// and a caller-supplied reference instant.
package metric

import (
	"math"
	"strconv"
	"time"
	"unicode"
)

const day = 24 * time.Hour

// DaysUntil returns the number of whole days from now until t, rounded
// up. Positive means future, negative past. Ceiling keeps "renews
// tomorrow" at 1 rather than 0.
func DaysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// DaysSince returns the number of whole days from t until now, rounded
// down. The floor here is deliberately asymmetric with DaysUntil; it
// sets the off-by-one boundary behavior of the rotation and incident
// age rules.
func DaysSince(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// ParsePolicyDays extracts the first run of digits from a free-text
// rotation policy ("Every 90 days" -> 90). Nil means the text carries
// no day count and rotation-due evaluation must be skipped.
func ParsePolicyDays(policy string) *int {
	start := -1
	for i, r := range policy {
		if unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			return atoiPtr(policy[start:i])
		}
	}
	if start != -1 {
		return atoiPtr(policy[start:])
	}
	return nil
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// BurnRate derives average monthly spend from usage amounts ordered
// most-recent-first. Nil without data, the single amount with one
// month, otherwise the mean of the two most recent months. Never a
// longer trailing average.
func BurnRate(amountsCentsDesc []int64) *float64 {
	switch len(amountsCentsDesc) {
	case 0:
		return nil
	case 1:
		v := float64(amountsCentsDesc[0])
		return &v
	default:
		v := float64(amountsCentsDesc[0]+amountsCentsDesc[1]) / 2
		return &v
	}
}

// RunwayMonths estimates months until the balance runs out at the given
// burn rate. Nil unless the burn rate is positive. A negative balance
// yields a negative runway and is surfaced as-is.
func RunwayMonths(balanceCents int64, burnRateCents *float64) *float64 {
	if burnRateCents == nil || *burnRateCents <= 0 {
		return nil
	}
	v := float64(balanceCents) / *burnRateCents
	return &v
}

// BudgetUtilizationPct returns usage as a percentage of the budget
// limit, uncapped. Nil without a limit.
func BudgetUtilizationPct(usageCents int64, budgetLimitCents *int64) *float64 {
	if budgetLimitCents == nil || *budgetLimitCents == 0 {
		return nil
	}
	v := float64(usageCents) / float64(*budgetLimitCents) * 100
	return &v
}

// BudgetUtilizationPctCapped clamps the percentage at 100 for
// progress-bar style display.
func BudgetUtilizationPctCapped(usageCents int64, budgetLimitCents *int64) *float64 {
	pct := BudgetUtilizationPct(usageCents, budgetLimitCents)
	if pct == nil {
		return nil
	}
	if *pct > 100 {
		v := 100.0
		return &v
	}
	return pct
}
