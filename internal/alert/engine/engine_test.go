package engine

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/alert/domain"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func id(n int64) snowflake.ID { return snowflake.ID(n) }

func intPtr(v int64) *int64 { return &v }

func evaluate(snap domain.Snapshot) []domain.Alert {
	return Evaluate(domain.DefaultRules(), testNow, snap)
}

func TestLowBalance_SeverityTiers(t *testing.T) {
	wallet := func(n int64, balance int64) domain.WalletRow {
		return domain.WalletRow{
			ID:                  id(n),
			ToolName:            "Acme",
			CurrentBalanceCents: balance,
			LowThresholdCents:   10_000,
			Currency:            "USD",
		}
	}

	tests := []struct {
		name     string
		balance  int64
		severity domain.Severity
		fires    bool
	}{
		{"above threshold is quiet", 10_001, "", false},
		{"at threshold is medium", 10_000, domain.SeverityMedium, true},
		{"at half threshold is high", 5_000, domain.SeverityHigh, true},
		{"just below half is high", 4_000, domain.SeverityHigh, true},
		{"zero is critical", 0, domain.SeverityCritical, true},
		{"negative is critical", -500, domain.SeverityCritical, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := evaluate(domain.Snapshot{Wallets: []domain.WalletRow{wallet(1, tc.balance)}})
			if !tc.fires {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, domain.TypeLowBalance, alerts[0].Type)
			assert.Equal(t, tc.severity, alerts[0].Severity)
			assert.Equal(t, "low_balance:1", alerts[0].ID)
			assert.Equal(t, "/wallets/1", alerts[0].Link)
		})
	}
}

func TestBudgetExceeded_TruncatedTiers(t *testing.T) {
	row := func(usage int64) domain.UsageRow {
		return domain.UsageRow{
			ID:               id(7),
			ToolName:         "Acme",
			Month:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			UsageAmountCents: usage,
			BudgetLimitCents: intPtr(100_000),
		}
	}

	tests := []struct {
		name     string
		usage    int64
		severity domain.Severity
		fires    bool
	}{
		{"under budget is quiet", 99_999, "", false},
		{"at budget is quiet", 100_000, "", false},
		{"101% is medium", 101_000, domain.SeverityMedium, true},
		{"120% is high", 120_000, domain.SeverityHigh, true},
		{"149.6% truncates to high", 149_600, domain.SeverityHigh, true},
		{"149.9% truncates to high", 149_900, domain.SeverityHigh, true},
		{"150% is critical", 150_000, domain.SeverityCritical, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := evaluate(domain.Snapshot{UsageLogs: []domain.UsageRow{row(tc.usage)}})
			if !tc.fires {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, domain.TypeBudgetExceeded, alerts[0].Type)
			assert.Equal(t, tc.severity, alerts[0].Severity)
			assert.Equal(t, "budget_exceeded:7", alerts[0].ID)
		})
	}
}

func TestBudgetExceeded_SkipsOtherMonthsAndNoLimit(t *testing.T) {
	alerts := evaluate(domain.Snapshot{UsageLogs: []domain.UsageRow{
		{ID: id(1), ToolName: "Stale", Month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), UsageAmountCents: 900_000, BudgetLimitCents: intPtr(1)},
		{ID: id(2), ToolName: "NoLimit", Month: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), UsageAmountCents: 900_000},
	}})
	assert.Empty(t, alerts)
}

func TestRenewals_WindowAndOverdue(t *testing.T) {
	sub := func(n int64, renews time.Time) domain.SubscriptionRow {
		return domain.SubscriptionRow{ID: id(n), ToolName: "Acme", RenewalDate: &renews}
	}

	tests := []struct {
		name     string
		renews   time.Time
		alert    domain.Type
		severity domain.Severity
		fires    bool
	}{
		{"5 days out is urgent", testNow.AddDate(0, 0, 5), domain.TypeUpcomingRenewal, domain.SeverityHigh, true},
		{"7 days out is urgent", testNow.AddDate(0, 0, 7), domain.TypeUpcomingRenewal, domain.SeverityHigh, true},
		{"20 days out is low", testNow.AddDate(0, 0, 20), domain.TypeUpcomingRenewal, domain.SeverityLow, true},
		{"30 days out is low", testNow.AddDate(0, 0, 30), domain.TypeUpcomingRenewal, domain.SeverityLow, true},
		{"40 days out is quiet", testNow.AddDate(0, 0, 40), "", "", false},
		{"past due is overdue high", testNow.AddDate(0, 0, -3), domain.TypeOverdueRenewal, domain.SeverityHigh, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := evaluate(domain.Snapshot{Subscriptions: []domain.SubscriptionRow{sub(3, tc.renews)}})
			if !tc.fires {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.alert, alerts[0].Type)
			assert.Equal(t, tc.severity, alerts[0].Severity)
		})
	}
}

func TestRenewals_NeverBothOverdueAndUpcoming(t *testing.T) {
	for days := -40; days <= 40; days++ {
		renews := testNow.AddDate(0, 0, days)
		alerts := evaluate(domain.Snapshot{Subscriptions: []domain.SubscriptionRow{
			{ID: id(1), ToolName: "Acme", RenewalDate: &renews},
		}})
		assert.LessOrEqual(t, len(alerts), 1, "offset %d days", days)
	}
}

func TestRotationDue(t *testing.T) {
	cred := func(policy string, rotatedDaysAgo int) domain.CredentialRow {
		rotated := testNow.AddDate(0, 0, -rotatedDaysAgo)
		return domain.CredentialRow{ID: id(9), ToolName: "Acme", LastRotated: &rotated, RotationPolicy: policy}
	}

	t.Run("within policy is quiet", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Credentials: []domain.CredentialRow{cred("Every 90 days", 90)}})
		assert.Empty(t, alerts)
	})

	t.Run("past policy is medium", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Credentials: []domain.CredentialRow{cred("Every 90 days", 100)}})
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.TypeRotationDue, alerts[0].Type)
		assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
	})

	t.Run("past one and a half policies is high", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Credentials: []domain.CredentialRow{cred("Every 90 days", 200)}})
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	})

	t.Run("policy without a day count never fires", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Credentials: []domain.CredentialRow{cred("ad hoc", 4000)}})
		assert.Empty(t, alerts)
	})

	t.Run("never rotated is skipped", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Credentials: []domain.CredentialRow{
			{ID: id(9), ToolName: "Acme", RotationPolicy: "Every 90 days"},
		}})
		assert.Empty(t, alerts)
	})
}

func TestOpenIncidents_MirrorsSeverity(t *testing.T) {
	incident := func(sev domain.Severity) domain.IncidentRow {
		return domain.IncidentRow{ID: id(4), ToolName: "Acme", Type: "outage", Severity: sev}
	}

	alerts := evaluate(domain.Snapshot{Incidents: []domain.IncidentRow{incident(domain.SeverityCritical)}})
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.TypeOpenIncident, alerts[0].Type)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, "/incidents/4", alerts[0].Link)

	alerts = evaluate(domain.Snapshot{Incidents: []domain.IncidentRow{incident(domain.SeverityMedium)}})
	assert.Empty(t, alerts)
	alerts = evaluate(domain.Snapshot{Incidents: []domain.IncidentRow{incident(domain.SeverityLow)}})
	assert.Empty(t, alerts)
}

func TestLowRunway(t *testing.T) {
	wallet := func(balance int64, recent []int64) domain.WalletRow {
		return domain.WalletRow{
			ID:                   id(6),
			ToolName:             "Acme",
			CurrentBalanceCents:  balance,
			LowThresholdCents:    1_000,
			Currency:             "USD",
			RecentUsageCentsDesc: recent,
		}
	}

	t.Run("burning faster than balance fires high", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Wallets: []domain.WalletRow{
			wallet(5_000, []int64{8_000, 12_000}),
		}})
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.TypeLowRunway, alerts[0].Type)
		assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	})

	t.Run("ample runway is quiet", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Wallets: []domain.WalletRow{
			wallet(100_000, []int64{8_000, 12_000}),
		}})
		assert.Empty(t, alerts)
	})

	t.Run("no usage history is quiet", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Wallets: []domain.WalletRow{wallet(5_000, nil)}})
		assert.Empty(t, alerts)
	})

	t.Run("wallet below threshold alerts as low balance only", func(t *testing.T) {
		alerts := evaluate(domain.Snapshot{Wallets: []domain.WalletRow{
			wallet(500, []int64{8_000, 12_000}),
		}})
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.TypeLowBalance, alerts[0].Type)
	})
}

func TestEvaluate_SortsBySeverity(t *testing.T) {
	renews := testNow.AddDate(0, 0, 20)
	alerts := evaluate(domain.Snapshot{
		Wallets: []domain.WalletRow{
			{ID: id(1), ToolName: "A", CurrentBalanceCents: -1, LowThresholdCents: 100},
			{ID: id(2), ToolName: "B", CurrentBalanceCents: 90, LowThresholdCents: 100},
		},
		Subscriptions: []domain.SubscriptionRow{
			{ID: id(3), ToolName: "C", RenewalDate: &renews},
		},
		Incidents: []domain.IncidentRow{
			{ID: id(4), ToolName: "D", Type: "outage", Severity: domain.SeverityHigh},
		},
	})

	require.Len(t, alerts, 4)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, domain.SeverityHigh, alerts[1].Severity)
	assert.Equal(t, domain.SeverityMedium, alerts[2].Severity)
	assert.Equal(t, domain.SeverityLow, alerts[3].Severity)
}

func TestEvaluate_TiesKeepRuleEmissionOrder(t *testing.T) {
	urgent := testNow.AddDate(0, 0, 5)
	overdue := testNow.AddDate(0, 0, -3)
	alerts := evaluate(domain.Snapshot{
		Wallets: []domain.WalletRow{
			{ID: id(1), ToolName: "A", CurrentBalanceCents: 4_000, LowThresholdCents: 10_000},
			{ID: id(2), ToolName: "B", CurrentBalanceCents: 30_000, LowThresholdCents: 10_000,
				RecentUsageCentsDesc: []int64{40_000, 44_000}},
		},
		UsageLogs: []domain.UsageRow{
			{ID: id(3), ToolName: "C", Month: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				UsageAmountCents: 125_000, BudgetLimitCents: intPtr(100_000)},
		},
		Subscriptions: []domain.SubscriptionRow{
			{ID: id(4), ToolName: "D", RenewalDate: &urgent},
			{ID: id(5), ToolName: "E", RenewalDate: &overdue},
		},
		Incidents: []domain.IncidentRow{
			{ID: id(6), ToolName: "F", Type: "outage", Severity: domain.SeverityHigh},
		},
	})

	// Every alert lands on high; the stable sort must keep the order
	// the rules emitted them in.
	require.Len(t, alerts, 6)
	var types []domain.Type
	for _, a := range alerts {
		assert.Equal(t, domain.SeverityHigh, a.Severity)
		types = append(types, a.Type)
	}
	assert.Equal(t, []domain.Type{
		domain.TypeLowBalance,
		domain.TypeBudgetExceeded,
		domain.TypeUpcomingRenewal,
		domain.TypeOverdueRenewal,
		domain.TypeOpenIncident,
		domain.TypeLowRunway,
	}, types)
}

func TestEvaluate_DeterministicIDs(t *testing.T) {
	snap := domain.Snapshot{Wallets: []domain.WalletRow{
		{ID: id(42), ToolName: "Acme", CurrentBalanceCents: 0, LowThresholdCents: 100},
	}}
	first := evaluate(snap)
	second := evaluate(snap)
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "low_balance:42", first[0].ID)
}
