// Package domain contains persistence models for credential references.
//
// A CredentialReference never stores secret material. CredentialLocation
// is a pointer ("1Password vault Ops / item GitHub CI") that tells an
// operator where the real secret lives.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CredentialReference struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	ToolID             snowflake.ID    `gorm:"not null;index" json:"tool_id"`
	LoginType          string          `json:"login_type,omitempty"`
	CredentialLocation string          `json:"credential_location,omitempty"`
	LastRotated        *datatypes.Date `json:"last_rotated,omitempty"`
	RotationPolicy     string          `json:"rotation_policy,omitempty"`
	Owner              string          `json:"owner,omitempty"`
	ComplianceNotes    string          `json:"compliance_notes,omitempty"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CredentialReference) TableName() string { return "credential_reference" }

type CreateCredentialRequest struct {
	ToolID             snowflake.ID `json:"tool_id"`
	LoginType          string       `json:"login_type"`
	CredentialLocation string       `json:"credential_location"`
	LastRotated        *time.Time   `json:"last_rotated"`
	RotationPolicy     string       `json:"rotation_policy"`
	Owner              string       `json:"owner"`
	ComplianceNotes    string       `json:"compliance_notes"`
}

type Service interface {
	Create(context.Context, CreateCredentialRequest) (CredentialReference, error)
	List(context.Context) ([]CredentialReference, error)
	GetByToolID(ctx context.Context, toolID snowflake.ID) (*CredentialReference, error)
	MarkRotated(ctx context.Context, id snowflake.ID, rotatedAt time.Time) (CredentialReference, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cred *CredentialReference) error
	List(ctx context.Context, db *gorm.DB) ([]CredentialReference, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CredentialReference, error)
	FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*CredentialReference, error)
	UpdateLastRotated(ctx context.Context, db *gorm.DB, id snowflake.ID, rotated datatypes.Date, updatedAt time.Time) error
}

var (
	ErrNotFound    = errors.New("credential_not_found")
	ErrInvalidTool = errors.New("invalid_tool")
)
