package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Order("renewal_date asc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repo) FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM billing_subscriptions WHERE tool_id = ? LIMIT 1`, toolID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}
