package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsdeck/opsdeck/internal/userrole/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.UserRole, error) {
	var row domain.UserRole
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM user_roles WHERE user_id = ?`, userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, row *domain.UserRole) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(row).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.UserRole, error) {
	var rows []domain.UserRole
	err := db.WithContext(ctx).
		Model(&domain.UserRole{}).
		Order("user_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
