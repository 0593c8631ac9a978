package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/usage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, log *domain.UsageLog) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tool_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"usage_amount_cents",
			"currency",
			"budget_limit_cents",
		}),
	}).Create(log).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.UsageLog, error) {
	var logs []domain.UsageLog
	err := db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Order("month desc, id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) ListByTool(ctx context.Context, db *gorm.DB, toolID snowflake.ID, limit int) ([]domain.UsageLog, error) {
	if limit <= 0 {
		limit = 6
	}
	var logs []domain.UsageLog
	err := db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Where("tool_id = ?", toolID).
		Order("month desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) ListByMonth(ctx context.Context, db *gorm.DB, month time.Time) ([]domain.UsageLog, error) {
	var logs []domain.UsageLog
	err := db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Where("month = ?", domain.MonthStart(month)).
		Order("usage_amount_cents desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
