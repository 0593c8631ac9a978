package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// RoleFor defaults to viewer when the user has no row.
	RoleFor(ctx context.Context, userID string) (Role, error)
	Assign(ctx context.Context, userID string, role Role) (UserRole, error)
	List(ctx context.Context) ([]UserRole, error)
}

type Repository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*UserRole, error)
	Upsert(ctx context.Context, db *gorm.DB, row *UserRole) error
	List(ctx context.Context, db *gorm.DB) ([]UserRole, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidRole = errors.New("invalid_role")
)
