package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/project/domain"
	"github.com/opsdeck/opsdeck/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}
	stage := req.Stage
	if stage == "" {
		stage = domain.StagePlanning
	}
	if !stage.Valid() {
		return domain.Project{}, domain.ErrInvalidStage
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          s.genID.Generate(),
		Name:        name,
		Owner:       strings.TrimSpace(req.Owner),
		Stage:       stage,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return domain.Project{}, err
	}

	return project, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.db.WithContext(ctx).
		Model(&domain.Project{}).
		Order("name asc").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Project, error) {
	var project domain.Project
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM projects WHERE id = ?`, id,
	).Scan(&project).Error
	if err != nil {
		return domain.Project{}, err
	}
	if project.ID == 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	return project, nil
}

func (s *Service) MapTool(ctx context.Context, projectID snowflake.ID, req domain.MapToolRequest) (domain.ToolMapping, error) {
	if req.ToolID == 0 {
		return domain.ToolMapping{}, domain.ErrInvalidTool
	}
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return domain.ToolMapping{}, err
	}

	mapping := domain.ToolMapping{
		ID:        s.genID.Generate(),
		ToolID:    req.ToolID,
		ProjectID: projectID,
		Role:      strings.TrimSpace(req.Role),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&mapping).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ToolMapping{}, domain.ErrAlreadyMapped
		}
		return domain.ToolMapping{}, err
	}

	return mapping, nil
}

func (s *Service) ListMappingsByTool(ctx context.Context, toolID snowflake.ID) ([]domain.ToolMapping, error) {
	var mappings []domain.ToolMapping
	err := s.db.WithContext(ctx).
		Model(&domain.ToolMapping{}).
		Where("tool_id = ?", toolID).
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}
