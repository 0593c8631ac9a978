// Package domain defines the dashboard summary shapes. Everything here
// is derived per request; nothing is persisted.
package domain

import (
	"context"
	"time"
)

// Totals are nominal sums. Mixed currencies add up as-is; there is no
// conversion step.
type Totals struct {
	MonthlyFixedCostCents   int64 `json:"monthly_fixed_cost_cents"`
	MonthVariableSpendCents int64 `json:"month_variable_spend_cents"`
	WalletBalanceCents      int64 `json:"wallet_balance_cents"`
}

type Counts struct {
	ActiveTools           int64 `json:"active_tools"`
	CriticalTools         int64 `json:"critical_tools"`
	HighRiskTools         int64 `json:"high_risk_tools"`
	WalletsBelowThreshold int64 `json:"wallets_below_threshold"`
	OverBudget            int64 `json:"over_budget"`
	OpenIncidents         int64 `json:"open_incidents"`
	CriticalOpenIncidents int64 `json:"critical_open_incidents"`
	UpcomingRenewals      int64 `json:"upcoming_renewals"`
	OverdueRotations      int64 `json:"overdue_rotations"`
}

// TrendPoint is one month's total usage spend.
type TrendPoint struct {
	Month      time.Time `json:"month"`
	TotalCents int64     `json:"total_cents"`
}

type Summary struct {
	Totals Totals `json:"totals"`
	Counts Counts `json:"counts"`
	// UsageTrend covers the six most recent distinct months present in
	// the data, ascending.
	UsageTrend []TrendPoint `json:"usage_trend"`
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}
