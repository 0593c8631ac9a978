package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/userrole/domain"
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
		log:   p.Log.Named("userrole.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) RoleFor(ctx context.Context, userID string) (domain.Role, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.RoleViewer, nil
	}
	row, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return domain.RoleViewer, nil
	}
	return row.Role, nil
}

func (s *Service) Assign(ctx context.Context, userID string, role domain.Role) (domain.UserRole, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserRole{}, domain.ErrInvalidUser
	}
	if !role.Valid() {
		return domain.UserRole{}, domain.ErrInvalidRole
	}

	row := domain.UserRole{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, s.db, &row); err != nil {
		return domain.UserRole{}, err
	}
	return row, nil
}

func (s *Service) List(ctx context.Context) ([]domain.UserRole, error) {
	return s.repo.List(ctx, s.db)
}
