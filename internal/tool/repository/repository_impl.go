package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/tool/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tool *domain.Tool) error {
	return db.WithContext(ctx).Create(tool).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tool *domain.Tool) error {
	return db.WithContext(ctx).Save(tool).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tool, error) {
	var tool domain.Tool
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tools WHERE id = ?`, id,
	).Scan(&tool).Error
	if err != nil {
		return nil, err
	}
	if tool.ID == 0 {
		return nil, nil
	}
	return &tool, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListToolFilter) ([]domain.Tool, error) {
	var tools []domain.Tool
	stmt := db.WithContext(ctx).Model(&domain.Tool{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.BillingType != "" {
		stmt = stmt.Where("billing_type = ?", filter.BillingType)
	}
	if filter.RiskLevel != "" {
		stmt = stmt.Where("risk_level = ?", filter.RiskLevel)
	}
	if err := stmt.Order("name asc").Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}
