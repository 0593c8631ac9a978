package domain

// Rules carries the alert thresholds. Defaults reproduce the dashboard's
// long-standing behavior; deployments can override via alerts.yml.
type Rules struct {
	// RenewalWindowDays is the upcoming-renewal horizon (inclusive).
	RenewalWindowDays int `mapstructure:"renewalWindowDays"`
	// RenewalUrgentDays raises an upcoming renewal to high severity.
	RenewalUrgentDays int `mapstructure:"renewalUrgentDays"`
	// BudgetHighPct / BudgetCriticalPct are compared against the
	// rounded utilization percentage.
	BudgetHighPct     int `mapstructure:"budgetHighPct"`
	BudgetCriticalPct int `mapstructure:"budgetCriticalPct"`
	// LowBalanceHighFraction of the threshold marks high severity.
	LowBalanceHighFraction float64 `mapstructure:"lowBalanceHighFraction"`
	// RotationHighMultiplier of the policy days marks high severity.
	RotationHighMultiplier float64 `mapstructure:"rotationHighMultiplier"`
	// LowRunwayMonths is the floor under which a funded wallet with a
	// positive burn rate alerts.
	LowRunwayMonths float64 `mapstructure:"lowRunwayMonths"`
}

func DefaultRules() Rules {
	return Rules{
		RenewalWindowDays:      30,
		RenewalUrgentDays:      7,
		BudgetHighPct:          120,
		BudgetCriticalPct:      150,
		LowBalanceHighFraction: 0.5,
		RotationHighMultiplier: 1.5,
		LowRunwayMonths:        1,
	}
}
