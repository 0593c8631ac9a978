// Package seed bootstraps a demo dataset so a fresh deployment renders
// a populated dashboard instead of empty tables.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	projectdomain "github.com/opsdeck/opsdeck/internal/project/domain"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

// EnsureDemoData inserts the demo rows once; any existing tool row
// means a previous run (or real data) is present and seeding is
// skipped.
func EnsureDemoData(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tooldomain.Tool{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		thisMonth := usagedomain.MonthStart(now)
		lastMonth := thisMonth.AddDate(0, -1, 0)

		ci := tooldomain.Tool{
			ID:          node.Generate(),
			Name:        "BuildKite CI",
			Category:    "ci",
			BillingType: tooldomain.BillingTypeSubscription,
			Vendor:      "Buildkite",
			Owner:       "platform",
			Environment: "production",
			Critical:    true,
			RiskLevel:   tooldomain.RiskLevelHigh,
			Status:      tooldomain.StatusActive,
		}
		llm := tooldomain.Tool{
			ID:          node.Generate(),
			Name:        "OpenAI API",
			Category:    "ai",
			BillingType: tooldomain.BillingTypeWallet,
			Vendor:      "OpenAI",
			Owner:       "data",
			Environment: "production",
			RiskLevel:   tooldomain.RiskLevelMedium,
			Status:      tooldomain.StatusActive,
		}
		if err := tx.Create([]*tooldomain.Tool{&ci, &llm}).Error; err != nil {
			return err
		}

		renewal := datatypes.Date(thisMonth.AddDate(0, 1, 14))
		if err := tx.Create(&subscriptiondomain.Subscription{
			ID:               node.Generate(),
			ToolID:           ci.ID,
			PlanName:         "Team",
			MonthlyCostCents: 24_900,
			Currency:         "USD",
			PaymentFrequency: subscriptiondomain.FrequencyMonthly,
			RenewalDate:      &renewal,
			BillingOwner:     "finance",
		}).Error; err != nil {
			return err
		}

		if err := tx.Create(&walletdomain.Wallet{
			ID:                  node.Generate(),
			ToolID:              llm.ID,
			CurrentBalanceCents: 42_000,
			Currency:            "USD",
			LowThresholdCents:   10_000,
		}).Error; err != nil {
			return err
		}

		budget := int64(50_000)
		logs := []*usagedomain.UsageLog{
			{
				ID:               node.Generate(),
				ToolID:           llm.ID,
				Month:            datatypes.Date(lastMonth),
				UsageAmountCents: 31_200,
				Currency:         "USD",
				BudgetLimitCents: &budget,
			},
			{
				ID:               node.Generate(),
				ToolID:           llm.ID,
				Month:            datatypes.Date(thisMonth),
				UsageAmountCents: 18_750,
				Currency:         "USD",
				BudgetLimitCents: &budget,
			},
		}
		if err := tx.Create(logs).Error; err != nil {
			return err
		}

		rotated := datatypes.Date(now.AddDate(0, 0, -45))
		if err := tx.Create(&credentialdomain.CredentialReference{
			ID:                 node.Generate(),
			ToolID:             ci.ID,
			LoginType:          "api_key",
			CredentialLocation: "1Password vault Ops / item Buildkite agent token",
			LastRotated:        &rotated,
			RotationPolicy:     "Every 90 days",
			Owner:              "platform",
		}).Error; err != nil {
			return err
		}

		project := projectdomain.Project{
			ID:    node.Generate(),
			Name:  "Checkout revamp",
			Owner: "payments",
			Stage: projectdomain.StageActive,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		if err := tx.Create(&projectdomain.ToolMapping{
			ID:        node.Generate(),
			ToolID:    ci.ID,
			ProjectID: project.ID,
			Role:      "build pipeline",
		}).Error; err != nil {
			return err
		}

		impact := int64(12_000)
		if err := tx.Create(&incidentdomain.IncidentLog{
			ID:                   node.Generate(),
			ToolID:               llm.ID,
			Type:                 incidentdomain.TypeCostSpike,
			Severity:             incidentdomain.SeverityMedium,
			Description:          "Batch job retried against the paid tier overnight",
			FinancialImpactCents: &impact,
			Status:               incidentdomain.StatusResolved,
			ResolvedBy:           "oncall",
			OccurredAt:           now.AddDate(0, 0, -10),
			ResolvedAt:           ptrTime(now.AddDate(0, 0, -9)),
		}).Error; err != nil {
			return err
		}

		log.Info("seeded demo data",
			zap.Int("tools", 2),
			zap.Int("usage_logs", len(logs)),
		)
		return nil
	})
}

func ptrTime(t time.Time) *time.Time { return &t }
