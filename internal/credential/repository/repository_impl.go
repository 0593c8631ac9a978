package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/credential/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cred *domain.CredentialReference) error {
	return db.WithContext(ctx).Create(cred).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.CredentialReference, error) {
	var creds []domain.CredentialReference
	err := db.WithContext(ctx).
		Model(&domain.CredentialReference{}).
		Order("last_rotated asc").
		Find(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CredentialReference, error) {
	var cred domain.CredentialReference
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM credential_reference WHERE id = ?`, id,
	).Scan(&cred).Error
	if err != nil {
		return nil, err
	}
	if cred.ID == 0 {
		return nil, nil
	}
	return &cred, nil
}

func (r *repo) FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*domain.CredentialReference, error) {
	var cred domain.CredentialReference
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM credential_reference WHERE tool_id = ? LIMIT 1`, toolID,
	).Scan(&cred).Error
	if err != nil {
		return nil, err
	}
	if cred.ID == 0 {
		return nil, nil
	}
	return &cred, nil
}

func (r *repo) UpdateLastRotated(ctx context.Context, db *gorm.DB, id snowflake.ID, rotated datatypes.Date, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE credential_reference
		 SET last_rotated = ?, updated_at = ?
		 WHERE id = ?`,
		rotated, updatedAt, id,
	).Error
}
