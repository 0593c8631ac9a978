package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/credential/domain"
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
		log:   p.Log.Named("credential.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCredentialRequest) (domain.CredentialReference, error) {
	if req.ToolID == 0 {
		return domain.CredentialReference{}, domain.ErrInvalidTool
	}

	var lastRotated *datatypes.Date
	if req.LastRotated != nil {
		d := datatypes.Date(req.LastRotated.UTC().Truncate(24 * time.Hour))
		lastRotated = &d
	}

	now := time.Now().UTC()
	cred := domain.CredentialReference{
		ID:                 s.genID.Generate(),
		ToolID:             req.ToolID,
		LoginType:          strings.TrimSpace(req.LoginType),
		CredentialLocation: strings.TrimSpace(req.CredentialLocation),
		LastRotated:        lastRotated,
		RotationPolicy:     strings.TrimSpace(req.RotationPolicy),
		Owner:              strings.TrimSpace(req.Owner),
		ComplianceNotes:    strings.TrimSpace(req.ComplianceNotes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &cred); err != nil {
		return domain.CredentialReference{}, err
	}

	return cred, nil
}

func (s *Service) List(ctx context.Context) ([]domain.CredentialReference, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByToolID(ctx context.Context, toolID snowflake.ID) (*domain.CredentialReference, error) {
	return s.repo.FindByToolID(ctx, s.db, toolID)
}

func (s *Service) MarkRotated(ctx context.Context, id snowflake.ID, rotatedAt time.Time) (domain.CredentialReference, error) {
	cred, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CredentialReference{}, err
	}
	if cred == nil {
		return domain.CredentialReference{}, domain.ErrNotFound
	}

	rotated := datatypes.Date(rotatedAt.UTC().Truncate(24 * time.Hour))
	now := time.Now().UTC()
	if err := s.repo.UpdateLastRotated(ctx, s.db, id, rotated, now); err != nil {
		return domain.CredentialReference{}, err
	}

	cred.LastRotated = &rotated
	cred.UpdatedAt = now
	return *cred, nil
}
