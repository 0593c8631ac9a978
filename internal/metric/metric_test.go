package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDaysUntil_RoundsUp(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 1, DaysUntil(now, now.Add(1*time.Hour)))
	assert.Equal(t, 1, DaysUntil(now, now.Add(24*time.Hour)))
	assert.Equal(t, 2, DaysUntil(now, now.Add(25*time.Hour)))
	assert.Equal(t, -1, DaysUntil(now, now.Add(-25*time.Hour)))
	// A renewal earlier the same day still counts as not yet overdue.
	assert.Equal(t, 0, DaysUntil(now, now.Add(-6*time.Hour)))
}

func TestDaysSince_RoundsDown(t *testing.T) {
	assert.Equal(t, 0, DaysSince(now, now))
	assert.Equal(t, 0, DaysSince(now, now.Add(-23*time.Hour)))
	assert.Equal(t, 1, DaysSince(now, now.Add(-24*time.Hour)))
	assert.Equal(t, 1, DaysSince(now, now.Add(-47*time.Hour)))
	assert.Equal(t, -1, DaysSince(now, now.Add(6*time.Hour)))
}

func TestParsePolicyDays(t *testing.T) {
	tests := []struct {
		policy string
		want   *int
	}{
		{"Every 90 days", intPtr(90)},
		{"90", intPtr(90)},
		{"rotate every 30 days or sooner", intPtr(30)},
		{"rotate 2x per 10 days", intPtr(2)},
		{"ad hoc", nil},
		{"", nil},
	}
	for _, tc := range tests {
		got := ParsePolicyDays(tc.policy)
		if tc.want == nil {
			assert.Nil(t, got, tc.policy)
			continue
		}
		require.NotNil(t, got, tc.policy)
		assert.Equal(t, *tc.want, *got, tc.policy)
	}
}

func TestBurnRate(t *testing.T) {
	assert.Nil(t, BurnRate(nil))

	one := BurnRate([]int64{5_000})
	require.NotNil(t, one)
	assert.Equal(t, 5_000.0, *one)

	two := BurnRate([]int64{5_000, 3_000})
	require.NotNil(t, two)
	assert.Equal(t, 4_000.0, *two)

	// Only the two most recent months count, never a longer average.
	many := BurnRate([]int64{5_000, 3_000, 100_000, 100_000})
	require.NotNil(t, many)
	assert.Equal(t, 4_000.0, *many)
}

func TestRunwayMonths(t *testing.T) {
	assert.Nil(t, RunwayMonths(10_000, nil))

	zero := 0.0
	assert.Nil(t, RunwayMonths(10_000, &zero))

	negative := -5.0
	assert.Nil(t, RunwayMonths(10_000, &negative))

	burn := 4_000.0
	runway := RunwayMonths(10_000, &burn)
	require.NotNil(t, runway)
	assert.Equal(t, 2.5, *runway)

	// Negative balances surface as negative runway, not nil.
	underwater := RunwayMonths(-4_000, &burn)
	require.NotNil(t, underwater)
	assert.Equal(t, -1.0, *underwater)
}

func TestBudgetUtilizationPct(t *testing.T) {
	assert.Nil(t, BudgetUtilizationPct(5_000, nil))

	zero := int64(0)
	assert.Nil(t, BudgetUtilizationPct(5_000, &zero))

	limit := int64(10_000)
	pct := BudgetUtilizationPct(13_000, &limit)
	require.NotNil(t, pct)
	assert.Equal(t, 130.0, *pct)

	capped := BudgetUtilizationPctCapped(13_000, &limit)
	require.NotNil(t, capped)
	assert.Equal(t, 100.0, *capped)

	under := BudgetUtilizationPctCapped(4_000, &limit)
	require.NotNil(t, under)
	assert.Equal(t, 40.0, *under)
}

func intPtr(v int) *int { return &v }
