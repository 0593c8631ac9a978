package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/clock"
	"github.com/opsdeck/opsdeck/internal/incident/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("incident.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Log(ctx context.Context, req domain.LogIncidentRequest) (domain.IncidentLog, error) {
	if req.ToolID == 0 {
		return domain.IncidentLog{}, domain.ErrInvalidTool
	}
	if !req.Type.Valid() {
		return domain.IncidentLog{}, domain.ErrInvalidType
	}
	if !req.Severity.Valid() {
		return domain.IncidentLog{}, domain.ErrInvalidSeverity
	}
	status := req.Status
	if status == "" {
		status = domain.StatusOpen
	}
	if !status.Valid() {
		return domain.IncidentLog{}, domain.ErrInvalidStatus
	}

	occurredAt := s.clock.Now()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	incident := domain.IncidentLog{
		ID:                   s.genID.Generate(),
		ToolID:               req.ToolID,
		Type:                 req.Type,
		Severity:             req.Severity,
		Description:          strings.TrimSpace(req.Description),
		RootCause:            strings.TrimSpace(req.RootCause),
		FinancialImpactCents: req.FinancialImpactCents,
		ResolutionSteps:      strings.TrimSpace(req.ResolutionSteps),
		PreventiveMeasures:   strings.TrimSpace(req.PreventiveMeasures),
		Status:               status,
		OccurredAt:           occurredAt,
		CreatedAt:            s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &incident); err != nil {
		return domain.IncidentLog{}, err
	}

	return incident, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListIncidentFilter) ([]domain.IncidentLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.IncidentLog, error) {
	incident, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.IncidentLog{}, err
	}
	if incident == nil {
		return domain.IncidentLog{}, domain.ErrNotFound
	}
	return *incident, nil
}

func (s *Service) Resolve(ctx context.Context, id snowflake.ID, resolvedBy string) (domain.IncidentLog, error) {
	incident, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.IncidentLog{}, err
	}
	if incident == nil {
		return domain.IncidentLog{}, domain.ErrNotFound
	}
	if incident.Status == domain.StatusResolved {
		return domain.IncidentLog{}, domain.ErrAlreadyResolved
	}

	resolvedAt := s.clock.Now()
	resolvedBy = strings.TrimSpace(resolvedBy)
	if err := s.repo.MarkResolved(ctx, s.db, id, resolvedBy, resolvedAt); err != nil {
		return domain.IncidentLog{}, err
	}

	incident.Status = domain.StatusResolved
	incident.ResolvedBy = resolvedBy
	incident.ResolvedAt = &resolvedAt
	return *incident, nil
}
