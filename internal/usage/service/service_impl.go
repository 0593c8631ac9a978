package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("usage.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Log(ctx context.Context, req domain.LogUsageRequest) (domain.UsageLog, error) {
	if req.ToolID == 0 {
		return domain.UsageLog{}, domain.ErrInvalidTool
	}
	if req.Month.IsZero() {
		return domain.UsageLog{}, domain.ErrInvalidMonth
	}
	if req.UsageAmountCents < 0 {
		return domain.UsageLog{}, domain.ErrInvalidAmount
	}
	if req.BudgetLimitCents != nil && *req.BudgetLimitCents < 0 {
		return domain.UsageLog{}, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	log := domain.UsageLog{
		ID:               s.genID.Generate(),
		ToolID:           req.ToolID,
		Month:            datatypes.Date(domain.MonthStart(req.Month)),
		UsageAmountCents: req.UsageAmountCents,
		Currency:         currency,
		BudgetLimitCents: req.BudgetLimitCents,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, s.db, &log); err != nil {
		return domain.UsageLog{}, err
	}

	return log, nil
}

func (s *Service) List(ctx context.Context) ([]domain.UsageLog, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) ListByTool(ctx context.Context, toolID snowflake.ID, limit int) ([]domain.UsageLog, error) {
	return s.repo.ListByTool(ctx, s.db, toolID, limit)
}

func (s *Service) ListByMonth(ctx context.Context, month time.Time) ([]domain.UsageLog, error) {
	return s.repo.ListByMonth(ctx, s.db, month)
}
