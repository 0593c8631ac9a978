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

	"github.com/opsdeck/opsdeck/internal/alert"
	alertdomain "github.com/opsdeck/opsdeck/internal/alert/domain"
	"github.com/opsdeck/opsdeck/internal/clock"
	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, dsn string) (alertdomain.Service, *gorm.DB, *snowflake.Node) {
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

	rules, err := alert.NewRulesHolder()
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(testNow),
		Rules: rules,
	})
	return svc, db, node
}

func createTool(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) snowflake.ID {
	t.Helper()
	tool := tooldomain.Tool{
		ID:          node.Generate(),
		Name:        name,
		BillingType: tooldomain.BillingTypeWallet,
		RiskLevel:   tooldomain.RiskLevelLow,
		Status:      tooldomain.StatusActive,
	}
	require.NoError(t, db.Create(&tool).Error)
	return tool.ID
}

func monthDate(offset int) datatypes.Date {
	m := usagedomain.MonthStart(testNow).AddDate(0, offset, 0)
	return datatypes.Date(m)
}

func alertsOfType(alerts []alertdomain.Alert, typ alertdomain.Type) []alertdomain.Alert {
	var out []alertdomain.Alert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestEvaluate_JoinsToolNamesIntoTitles(t *testing.T) {
	svc, db, node := newTestService(t, "file:alertsvc_join?mode=memory&cache=shared")
	toolID := createTool(t, db, node, "OpenAI API")

	require.NoError(t, db.Create(&walletdomain.Wallet{
		ID: node.Generate(), ToolID: toolID,
		CurrentBalanceCents: 2_000, Currency: "USD", LowThresholdCents: 10_000,
	}).Error)

	alerts, err := svc.Evaluate(context.Background())
	require.NoError(t, err)

	low := alertsOfType(alerts, alertdomain.TypeLowBalance)
	require.Len(t, low, 1)
	assert.Equal(t, "Low balance: OpenAI API", low[0].Title)
}

func TestEvaluate_BudgetUsesCurrentMonthOnly(t *testing.T) {
	svc, db, node := newTestService(t, "file:alertsvc_month?mode=memory&cache=shared")
	toolID := createTool(t, db, node, "BuildKite CI")

	budget := int64(10_000)
	require.NoError(t, db.Create([]usagedomain.UsageLog{
		{ID: node.Generate(), ToolID: toolID, Month: monthDate(-1),
			UsageAmountCents: 50_000, Currency: "USD", BudgetLimitCents: &budget},
		{ID: node.Generate(), ToolID: toolID, Month: monthDate(0),
			UsageAmountCents: 8_000, Currency: "USD", BudgetLimitCents: &budget},
	}).Error)

	alerts, err := svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alertsOfType(alerts, alertdomain.TypeBudgetExceeded))

	require.NoError(t, db.Model(&usagedomain.UsageLog{}).
		Where("month = ?", usagedomain.MonthStart(testNow)).
		Update("usage_amount_cents", 15_000).Error)

	alerts, err = svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Len(t, alertsOfType(alerts, alertdomain.TypeBudgetExceeded), 1)
}

func TestEvaluate_ResolvedIncidentsExcluded(t *testing.T) {
	svc, db, node := newTestService(t, "file:alertsvc_incident?mode=memory&cache=shared")
	toolID := createTool(t, db, node, "Sentry")

	require.NoError(t, db.Create([]incidentdomain.IncidentLog{
		{ID: node.Generate(), ToolID: toolID, Type: incidentdomain.TypeOutage,
			Severity: incidentdomain.SeverityHigh, Status: incidentdomain.StatusOpen,
			Description: "API errors", OccurredAt: testNow},
		{ID: node.Generate(), ToolID: toolID, Type: incidentdomain.TypeCostSpike,
			Severity: incidentdomain.SeverityCritical, Status: incidentdomain.StatusResolved,
			Description: "Old spike", OccurredAt: testNow.AddDate(0, -1, 0)},
	}).Error)

	alerts, err := svc.Evaluate(context.Background())
	require.NoError(t, err)

	open := alertsOfType(alerts, alertdomain.TypeOpenIncident)
	require.Len(t, open, 1)
	assert.Equal(t, alertdomain.SeverityHigh, open[0].Severity)
}

func TestEvaluate_RunwayFromRecentUsageHistory(t *testing.T) {
	svc, db, node := newTestService(t, "file:alertsvc_runway?mode=memory&cache=shared")
	toolID := createTool(t, db, node, "Anthropic API")

	// Healthy balance but the two most recent months burn it inside a
	// month, so low_runway fires instead of low_balance.
	require.NoError(t, db.Create(&walletdomain.Wallet{
		ID: node.Generate(), ToolID: toolID,
		CurrentBalanceCents: 30_000, Currency: "USD", LowThresholdCents: 10_000,
	}).Error)
	require.NoError(t, db.Create([]usagedomain.UsageLog{
		{ID: node.Generate(), ToolID: toolID, Month: monthDate(-1), UsageAmountCents: 40_000, Currency: "USD"},
		{ID: node.Generate(), ToolID: toolID, Month: monthDate(-2), UsageAmountCents: 44_000, Currency: "USD"},
		{ID: node.Generate(), ToolID: toolID, Month: monthDate(-3), UsageAmountCents: 100, Currency: "USD"},
	}).Error)

	alerts, err := svc.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Empty(t, alertsOfType(alerts, alertdomain.TypeLowBalance))
	runway := alertsOfType(alerts, alertdomain.TypeLowRunway)
	require.Len(t, runway, 1)
	assert.Equal(t, alertdomain.SeverityHigh, runway[0].Severity)
}
