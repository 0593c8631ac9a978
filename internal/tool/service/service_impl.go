package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/tool/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("tool.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateToolRequest) (domain.Tool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tool{}, domain.ErrInvalidName
	}
	if !req.BillingType.Valid() {
		return domain.Tool{}, domain.ErrInvalidBillingType
	}
	riskLevel := req.RiskLevel
	if riskLevel == "" {
		riskLevel = domain.RiskLevelLow
	}
	if !riskLevel.Valid() {
		return domain.Tool{}, domain.ErrInvalidRiskLevel
	}
	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.Tool{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	tool := domain.Tool{
		ID:          s.genID.Generate(),
		Name:        name,
		Category:    strings.TrimSpace(req.Category),
		BillingType: req.BillingType,
		Vendor:      strings.TrimSpace(req.Vendor),
		Owner:       strings.TrimSpace(req.Owner),
		Environment: strings.TrimSpace(req.Environment),
		Critical:    req.Critical,
		RiskLevel:   riskLevel,
		Status:      status,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &tool); err != nil {
		return domain.Tool{}, err
	}

	return tool, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateToolRequest) (domain.Tool, error) {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tool{}, err
	}
	if existing == nil {
		return domain.Tool{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Tool{}, domain.ErrInvalidName
		}
		existing.Name = name
	}
	if req.Category != nil {
		existing.Category = strings.TrimSpace(*req.Category)
	}
	if req.BillingType != nil {
		if !req.BillingType.Valid() {
			return domain.Tool{}, domain.ErrInvalidBillingType
		}
		existing.BillingType = *req.BillingType
	}
	if req.Vendor != nil {
		existing.Vendor = strings.TrimSpace(*req.Vendor)
	}
	if req.Owner != nil {
		existing.Owner = strings.TrimSpace(*req.Owner)
	}
	if req.Environment != nil {
		existing.Environment = strings.TrimSpace(*req.Environment)
	}
	if req.Critical != nil {
		existing.Critical = *req.Critical
	}
	if req.RiskLevel != nil {
		if !req.RiskLevel.Valid() {
			return domain.Tool{}, domain.ErrInvalidRiskLevel
		}
		existing.RiskLevel = *req.RiskLevel
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return domain.Tool{}, domain.ErrInvalidStatus
		}
		existing.Status = *req.Status
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Tool{}, err
	}

	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Tool, error) {
	tool, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tool{}, err
	}
	if tool == nil {
		return domain.Tool{}, domain.ErrNotFound
	}
	return *tool, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListToolFilter) ([]domain.Tool, error) {
	return s.repo.List(ctx, s.db, filter)
}
