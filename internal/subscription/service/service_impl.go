package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/subscription/domain"
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
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	if req.ToolID == 0 {
		return domain.Subscription{}, domain.ErrInvalidTool
	}
	if req.MonthlyCostCents < 0 {
		return domain.Subscription{}, domain.ErrInvalidCost
	}
	frequency := req.PaymentFrequency
	if frequency == "" {
		frequency = domain.FrequencyMonthly
	}
	if !frequency.Valid() {
		return domain.Subscription{}, domain.ErrInvalidFrequency
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	var renewal *datatypes.Date
	if req.RenewalDate != nil {
		d := datatypes.Date(req.RenewalDate.UTC().Truncate(24 * time.Hour))
		renewal = &d
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:               s.genID.Generate(),
		ToolID:           req.ToolID,
		PlanName:         strings.TrimSpace(req.PlanName),
		MonthlyCostCents: req.MonthlyCostCents,
		Currency:         currency,
		PaymentFrequency: frequency,
		RenewalDate:      renewal,
		BillingOwner:     strings.TrimSpace(req.BillingOwner),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &sub); err != nil {
		return domain.Subscription{}, err
	}

	return sub, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Subscription, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByToolID(ctx context.Context, toolID snowflake.ID) (*domain.Subscription, error) {
	return s.repo.FindByToolID(ctx, s.db, toolID)
}
