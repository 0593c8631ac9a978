package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/alert"
	alertdomain "github.com/opsdeck/opsdeck/internal/alert/domain"
	"github.com/opsdeck/opsdeck/internal/alert/engine"
	"github.com/opsdeck/opsdeck/internal/clock"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
)

// recentMonths bounds the per-tool usage history fed into the runway
// derivation.
const recentMonths = 6

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Rules *alert.RulesHolder
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	rules *alert.RulesHolder
}

func New(p Params) alertdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("alert.service"),
		clock: p.Clock,
		rules: p.Rules,
	}
}

// Evaluate loads the five snapshot sets concurrently and feeds them to
// the rule engine. A failed load degrades to an empty set so one broken
// table never blanks the whole alert feed.
func (s *Service) Evaluate(ctx context.Context) ([]alertdomain.Alert, error) {
	now := s.clock.Now()
	snap := s.loadSnapshot(ctx, now)
	return engine.Evaluate(s.rules.Get(), now, snap), nil
}

func (s *Service) loadSnapshot(ctx context.Context, now time.Time) alertdomain.Snapshot {
	var snap alertdomain.Snapshot

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		snap.Wallets = s.loadWallets(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.UsageLogs = s.loadUsage(ctx, now)
	}()
	go func() {
		defer wg.Done()
		snap.Subscriptions = s.loadSubscriptions(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.Credentials = s.loadCredentials(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.Incidents = s.loadIncidents(ctx)
	}()
	wg.Wait()

	return snap
}

type walletScan struct {
	ID                  snowflake.ID
	ToolID              snowflake.ID
	ToolName            string
	CurrentBalanceCents int64
	LowThresholdCents   int64
	Currency            string
}

func (s *Service) loadWallets(ctx context.Context) []alertdomain.WalletRow {
	var scans []walletScan
	err := s.db.WithContext(ctx).
		Table("wallets").
		Select("wallets.id, wallets.tool_id, tools.name AS tool_name, wallets.current_balance_cents, wallets.low_threshold_cents, wallets.currency").
		Joins("JOIN tools ON tools.id = wallets.tool_id").
		Scan(&scans).Error
	if err != nil {
		s.log.Warn("load wallets for alert snapshot", zap.Error(err))
		return nil
	}

	recent := s.loadRecentUsage(ctx)
	rows := make([]alertdomain.WalletRow, 0, len(scans))
	for _, w := range scans {
		rows = append(rows, alertdomain.WalletRow{
			ID:                   w.ID,
			ToolName:             w.ToolName,
			CurrentBalanceCents:  w.CurrentBalanceCents,
			LowThresholdCents:    w.LowThresholdCents,
			Currency:             w.Currency,
			RecentUsageCentsDesc: recent[w.ToolID],
		})
	}
	return rows
}

// loadRecentUsage groups each tool's latest usage amounts, most recent
// month first.
func (s *Service) loadRecentUsage(ctx context.Context) map[snowflake.ID][]int64 {
	var logs []struct {
		ToolID           snowflake.ID
		UsageAmountCents int64
	}
	err := s.db.WithContext(ctx).
		Table("usage_logs").
		Select("tool_id, usage_amount_cents").
		Order("month DESC").
		Scan(&logs).Error
	if err != nil {
		s.log.Warn("load usage history for alert snapshot", zap.Error(err))
		return nil
	}

	byTool := make(map[snowflake.ID][]int64)
	for _, l := range logs {
		if len(byTool[l.ToolID]) >= recentMonths {
			continue
		}
		byTool[l.ToolID] = append(byTool[l.ToolID], l.UsageAmountCents)
	}
	return byTool
}

func (s *Service) loadUsage(ctx context.Context, now time.Time) []alertdomain.UsageRow {
	var rows []alertdomain.UsageRow
	err := s.db.WithContext(ctx).
		Table("usage_logs").
		Select("usage_logs.id, tools.name AS tool_name, usage_logs.month, usage_logs.usage_amount_cents, usage_logs.budget_limit_cents").
		Joins("JOIN tools ON tools.id = usage_logs.tool_id").
		Where("usage_logs.month = ?", usagedomain.MonthStart(now)).
		Scan(&rows).Error
	if err != nil {
		s.log.Warn("load usage logs for alert snapshot", zap.Error(err))
		return nil
	}
	return rows
}

func (s *Service) loadSubscriptions(ctx context.Context) []alertdomain.SubscriptionRow {
	var rows []alertdomain.SubscriptionRow
	err := s.db.WithContext(ctx).
		Table("billing_subscriptions").
		Select("billing_subscriptions.id, tools.name AS tool_name, billing_subscriptions.renewal_date").
		Joins("JOIN tools ON tools.id = billing_subscriptions.tool_id").
		Scan(&rows).Error
	if err != nil {
		s.log.Warn("load subscriptions for alert snapshot", zap.Error(err))
		return nil
	}
	return rows
}

func (s *Service) loadCredentials(ctx context.Context) []alertdomain.CredentialRow {
	var rows []alertdomain.CredentialRow
	err := s.db.WithContext(ctx).
		Table("credential_reference").
		Select("credential_reference.id, tools.name AS tool_name, credential_reference.last_rotated, credential_reference.rotation_policy").
		Joins("JOIN tools ON tools.id = credential_reference.tool_id").
		Scan(&rows).Error
	if err != nil {
		s.log.Warn("load credentials for alert snapshot", zap.Error(err))
		return nil
	}
	return rows
}

func (s *Service) loadIncidents(ctx context.Context) []alertdomain.IncidentRow {
	var rows []alertdomain.IncidentRow
	err := s.db.WithContext(ctx).
		Table("incident_logs").
		Select("incident_logs.id, tools.name AS tool_name, incident_logs.type, incident_logs.severity").
		Joins("JOIN tools ON tools.id = incident_logs.tool_id").
		Where("incident_logs.status IN ?", []string{"open", "investigating"}).
		Scan(&rows).Error
	if err != nil {
		s.log.Warn("load incidents for alert snapshot", zap.Error(err))
		return nil
	}
	return rows
}
