package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/clock"
	"github.com/opsdeck/opsdeck/internal/dashboard/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	"github.com/opsdeck/opsdeck/internal/metric"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
)

// trendMonths bounds the usage series to the most recent distinct
// months present in the data.
const trendMonths = 6

const renewalWindowDays = 30

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

// Summary reduces the current data into totals, counts and the trailing
// usage series. Each read degrades to zero values on failure so a
// broken table dims one card instead of blanking the page.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	now := s.clock.Now()

	var out domain.Summary
	s.reduceTools(ctx, &out)
	s.reduceSubscriptions(ctx, now, &out)
	s.reduceWallets(ctx, &out)
	s.reduceUsage(ctx, now, &out)
	s.reduceIncidents(ctx, &out)
	s.reduceCredentials(ctx, now, &out)
	out.UsageTrend = s.usageTrend(ctx)
	return out, nil
}

func (s *Service) reduceTools(ctx context.Context, out *domain.Summary) {
	var tools []tooldomain.Tool
	if err := s.db.WithContext(ctx).Select("critical, risk_level, status").Find(&tools).Error; err != nil {
		s.log.Warn("load tools for summary", zap.Error(err))
		return
	}
	for _, tool := range tools {
		if tool.Status == tooldomain.StatusActive {
			out.Counts.ActiveTools++
		}
		if tool.Critical {
			out.Counts.CriticalTools++
		}
		if tool.RiskLevel == tooldomain.RiskLevelHigh || tool.RiskLevel == tooldomain.RiskLevelCritical {
			out.Counts.HighRiskTools++
		}
	}
}

func (s *Service) reduceSubscriptions(ctx context.Context, now time.Time, out *domain.Summary) {
	var subs []struct {
		MonthlyCostCents int64
		RenewalDate      *time.Time
	}
	err := s.db.WithContext(ctx).
		Table("billing_subscriptions").
		Select("monthly_cost_cents, renewal_date").
		Scan(&subs).Error
	if err != nil {
		s.log.Warn("load subscriptions for summary", zap.Error(err))
		return
	}
	for _, sub := range subs {
		// Nominal sum regardless of payment frequency.
		out.Totals.MonthlyFixedCostCents += sub.MonthlyCostCents
		if sub.RenewalDate == nil {
			continue
		}
		if days := metric.DaysUntil(now, *sub.RenewalDate); days >= 0 && days <= renewalWindowDays {
			out.Counts.UpcomingRenewals++
		}
	}
}

func (s *Service) reduceWallets(ctx context.Context, out *domain.Summary) {
	var wallets []struct {
		CurrentBalanceCents int64
		LowThresholdCents   int64
	}
	err := s.db.WithContext(ctx).
		Table("wallets").
		Select("current_balance_cents, low_threshold_cents").
		Scan(&wallets).Error
	if err != nil {
		s.log.Warn("load wallets for summary", zap.Error(err))
		return
	}
	for _, w := range wallets {
		out.Totals.WalletBalanceCents += w.CurrentBalanceCents
		if w.CurrentBalanceCents <= w.LowThresholdCents {
			out.Counts.WalletsBelowThreshold++
		}
	}
}

func (s *Service) reduceUsage(ctx context.Context, now time.Time, out *domain.Summary) {
	var logs []struct {
		UsageAmountCents int64
		BudgetLimitCents *int64
	}
	err := s.db.WithContext(ctx).
		Table("usage_logs").
		Select("usage_amount_cents, budget_limit_cents").
		Where("month = ?", usagedomain.MonthStart(now)).
		Scan(&logs).Error
	if err != nil {
		s.log.Warn("load usage logs for summary", zap.Error(err))
		return
	}
	for _, l := range logs {
		out.Totals.MonthVariableSpendCents += l.UsageAmountCents
		if l.BudgetLimitCents != nil && l.UsageAmountCents > *l.BudgetLimitCents {
			out.Counts.OverBudget++
		}
	}
}

func (s *Service) reduceIncidents(ctx context.Context, out *domain.Summary) {
	var severities []incidentdomain.Severity
	err := s.db.WithContext(ctx).
		Table("incident_logs").
		Where("status IN ?", []string{"open", "investigating"}).
		Pluck("severity", &severities).Error
	if err != nil {
		s.log.Warn("load incidents for summary", zap.Error(err))
		return
	}
	out.Counts.OpenIncidents = int64(len(severities))
	for _, sev := range severities {
		if sev == incidentdomain.SeverityCritical {
			out.Counts.CriticalOpenIncidents++
		}
	}
}

func (s *Service) reduceCredentials(ctx context.Context, now time.Time, out *domain.Summary) {
	var creds []struct {
		LastRotated    *time.Time
		RotationPolicy string
	}
	err := s.db.WithContext(ctx).
		Table("credential_reference").
		Select("last_rotated, rotation_policy").
		Scan(&creds).Error
	if err != nil {
		s.log.Warn("load credentials for summary", zap.Error(err))
		return
	}
	for _, c := range creds {
		if c.LastRotated == nil {
			continue
		}
		policyDays := metric.ParsePolicyDays(c.RotationPolicy)
		if policyDays == nil {
			continue
		}
		if metric.DaysSince(now, *c.LastRotated) > *policyDays {
			out.Counts.OverdueRotations++
		}
	}
}

func (s *Service) usageTrend(ctx context.Context) []domain.TrendPoint {
	var points []domain.TrendPoint
	err := s.db.WithContext(ctx).
		Table("usage_logs").
		Select("month, SUM(usage_amount_cents) AS total_cents").
		Group("month").
		Order("month DESC").
		Limit(trendMonths).
		Scan(&points).Error
	if err != nil {
		s.log.Warn("load usage trend for summary", zap.Error(err))
		return nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}
