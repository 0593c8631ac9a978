// Package domain defines the derived, non-persisted alert signals and
// the snapshot rows the rule engine evaluates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeLowBalance      Type = "low_balance"
	TypeBudgetExceeded  Type = "budget_exceeded"
	TypeUpcomingRenewal Type = "upcoming_renewal"
	TypeOverdueRenewal  Type = "overdue_renewal"
	TypeRotationDue     Type = "rotation_due"
	TypeLowRunway       Type = "low_runway"
	TypeOpenIncident    Type = "open_incident"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities most-severe-first for sorting.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Alert is computed fresh from current data on every evaluation. ID is
// deterministic (type + source row id) so the same condition maps to
// the same alert across runs.
type Alert struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Link     string   `json:"link"`
}

// Snapshot is everything the engine looks at, joined to tool names.
// Loading is the service's job; the engine itself is pure.
type Snapshot struct {
	Wallets       []WalletRow
	UsageLogs     []UsageRow
	Subscriptions []SubscriptionRow
	Credentials   []CredentialRow
	Incidents     []IncidentRow
}

type WalletRow struct {
	ID                  snowflake.ID
	ToolName            string
	CurrentBalanceCents int64
	LowThresholdCents   int64
	Currency            string
	// RecentUsageCentsDesc holds the wallet tool's usage amounts,
	// most recent month first, for the runway derivation.
	RecentUsageCentsDesc []int64
}

// UsageRow is a current-calendar-month usage log.
type UsageRow struct {
	ID               snowflake.ID
	ToolName         string
	Month            time.Time
	UsageAmountCents int64
	BudgetLimitCents *int64
}

type SubscriptionRow struct {
	ID          snowflake.ID
	ToolName    string
	RenewalDate *time.Time
}

type CredentialRow struct {
	ID             snowflake.ID
	ToolName       string
	LastRotated    *time.Time
	RotationPolicy string
}

// IncidentRow is an open or investigating incident; the status filter
// is applied by the loading query, not re-checked by the engine.
type IncidentRow struct {
	ID       snowflake.ID
	ToolName string
	Type     string
	Severity Severity
}
