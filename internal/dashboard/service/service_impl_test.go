package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/clock"
	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	"github.com/opsdeck/opsdeck/internal/dashboard/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, dsn string) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tooldomain.Tool{},
		&subscriptiondomain.Subscription{},
		&walletdomain.Wallet{},
		&usagedomain.UsageLog{},
		&incidentdomain.IncidentLog{},
		&credentialdomain.CredentialReference{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(testNow),
	})
	return svc, db, node
}

func monthDate(offset int) datatypes.Date {
	m := usagedomain.MonthStart(testNow).AddDate(0, offset, 0)
	return datatypes.Date(m)
}

func datePtr(t time.Time) *datatypes.Date {
	d := datatypes.Date(t)
	return &d
}

func TestSummary_TotalsAndCounts(t *testing.T) {
	svc, db, node := newTestService(t, "file:dashboard_summary?mode=memory&cache=shared")
	ctx := context.Background()

	require.NoError(t, db.Create([]tooldomain.Tool{
		{ID: node.Generate(), Name: "CI", BillingType: tooldomain.BillingTypeSubscription, Critical: true, RiskLevel: tooldomain.RiskLevelHigh, Status: tooldomain.StatusActive},
		{ID: node.Generate(), Name: "LLM API", BillingType: tooldomain.BillingTypeWallet, RiskLevel: tooldomain.RiskLevelLow, Status: tooldomain.StatusActive},
		{ID: node.Generate(), Name: "Old CDN", BillingType: tooldomain.BillingTypeFree, RiskLevel: tooldomain.RiskLevelCritical, Status: tooldomain.StatusDeprecated},
	}).Error)

	require.NoError(t, db.Create([]subscriptiondomain.Subscription{
		{ID: node.Generate(), ToolID: 1, MonthlyCostCents: 24_900, Currency: "USD",
			PaymentFrequency: subscriptiondomain.FrequencyMonthly,
			RenewalDate:      datePtr(testNow.AddDate(0, 0, 10))},
		{ID: node.Generate(), ToolID: 2, MonthlyCostCents: 5_000, Currency: "USD",
			PaymentFrequency: subscriptiondomain.FrequencyAnnual,
			RenewalDate:      datePtr(testNow.AddDate(0, 0, 60))},
		{ID: node.Generate(), ToolID: 3, MonthlyCostCents: 1_000, Currency: "USD",
			PaymentFrequency: subscriptiondomain.FrequencyMonthly},
	}).Error)

	require.NoError(t, db.Create([]walletdomain.Wallet{
		{ID: node.Generate(), ToolID: 2, CurrentBalanceCents: 42_000, Currency: "USD", LowThresholdCents: 10_000},
		{ID: node.Generate(), ToolID: 3, CurrentBalanceCents: 5_000, Currency: "USD", LowThresholdCents: 10_000},
	}).Error)

	budget := int64(20_000)
	require.NoError(t, db.Create([]usagedomain.UsageLog{
		{ID: node.Generate(), ToolID: 1, Month: monthDate(0), UsageAmountCents: 30_000, Currency: "USD", BudgetLimitCents: &budget},
		{ID: node.Generate(), ToolID: 2, Month: monthDate(0), UsageAmountCents: 10_000, Currency: "USD"},
		{ID: node.Generate(), ToolID: 1, Month: monthDate(-1), UsageAmountCents: 99_000, Currency: "USD", BudgetLimitCents: &budget},
	}).Error)

	require.NoError(t, db.Create([]incidentdomain.IncidentLog{
		{ID: node.Generate(), ToolID: 1, Type: incidentdomain.TypeOutage, Severity: incidentdomain.SeverityCritical, Status: incidentdomain.StatusOpen, Description: "CI down", OccurredAt: testNow},
		{ID: node.Generate(), ToolID: 2, Type: incidentdomain.TypeCostSpike, Severity: incidentdomain.SeverityLow, Status: incidentdomain.StatusInvestigating, Description: "Token burn", OccurredAt: testNow},
		{ID: node.Generate(), ToolID: 1, Type: incidentdomain.TypeSecurity, Severity: incidentdomain.SeverityCritical, Status: incidentdomain.StatusResolved, Description: "Leaked key", OccurredAt: testNow},
	}).Error)

	require.NoError(t, db.Create([]credentialdomain.CredentialReference{
		{ID: node.Generate(), ToolID: 1, CredentialLocation: "1Password vault Ops / item CI token",
			LastRotated: datePtr(testNow.AddDate(0, 0, -100)), RotationPolicy: "Every 90 days"},
		{ID: node.Generate(), ToolID: 2, CredentialLocation: "1Password vault Ops / item API key",
			LastRotated: datePtr(testNow.AddDate(0, 0, -10)), RotationPolicy: "Every 90 days"},
		{ID: node.Generate(), ToolID: 3, CredentialLocation: "Shared drive doc",
			RotationPolicy: "ad hoc"},
	}).Error)

	out, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(30_900), out.Totals.MonthlyFixedCostCents)
	assert.Equal(t, int64(40_000), out.Totals.MonthVariableSpendCents)
	assert.Equal(t, int64(47_000), out.Totals.WalletBalanceCents)

	assert.Equal(t, int64(2), out.Counts.ActiveTools)
	assert.Equal(t, int64(1), out.Counts.CriticalTools)
	assert.Equal(t, int64(2), out.Counts.HighRiskTools)
	assert.Equal(t, int64(1), out.Counts.WalletsBelowThreshold)
	assert.Equal(t, int64(1), out.Counts.OverBudget)
	assert.Equal(t, int64(2), out.Counts.OpenIncidents)
	assert.Equal(t, int64(1), out.Counts.CriticalOpenIncidents)
	assert.Equal(t, int64(1), out.Counts.UpcomingRenewals)
	assert.Equal(t, int64(1), out.Counts.OverdueRotations)
}

func TestSummary_EmptyDatabase(t *testing.T) {
	svc, _, _ := newTestService(t, "file:dashboard_empty?mode=memory&cache=shared")

	out, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{}, out.Totals)
	assert.Equal(t, domain.Counts{}, out.Counts)
	assert.Empty(t, out.UsageTrend)
}

func TestSummary_UsageTrendAscendingAndCapped(t *testing.T) {
	svc, db, node := newTestService(t, "file:dashboard_trend?mode=memory&cache=shared")
	ctx := context.Background()

	// Eight months of history across two tools; only the six most
	// recent distinct months survive, oldest first.
	for offset := -7; offset <= 0; offset++ {
		require.NoError(t, db.Create(&usagedomain.UsageLog{
			ID: node.Generate(), ToolID: 1, Month: monthDate(offset),
			UsageAmountCents: int64(1_000 * (offset + 8)), Currency: "USD",
		}).Error)
	}
	require.NoError(t, db.Create(&usagedomain.UsageLog{
		ID: node.Generate(), ToolID: 2, Month: monthDate(0),
		UsageAmountCents: 500, Currency: "USD",
	}).Error)

	out, err := svc.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, out.UsageTrend, 6)
	for i := 1; i < len(out.UsageTrend); i++ {
		assert.True(t, out.UsageTrend[i-1].Month.Before(out.UsageTrend[i].Month))
	}
	first := out.UsageTrend[0]
	assert.Equal(t, usagedomain.MonthStart(testNow).AddDate(0, -5, 0), first.Month.UTC())
	assert.Equal(t, int64(3_000), first.TotalCents)

	last := out.UsageTrend[5]
	assert.Equal(t, int64(8_500), last.TotalCents)
}
