package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateToolRequest struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	BillingType BillingType `json:"billing_type"`
	Vendor      string      `json:"vendor"`
	Owner       string      `json:"owner"`
	Environment string      `json:"environment"`
	Critical    bool        `json:"critical"`
	RiskLevel   RiskLevel   `json:"risk_level"`
	Status      Status      `json:"status"`
	Description string      `json:"description"`
}

type UpdateToolRequest struct {
	Name        *string      `json:"name"`
	Category    *string      `json:"category"`
	BillingType *BillingType `json:"billing_type"`
	Vendor      *string      `json:"vendor"`
	Owner       *string      `json:"owner"`
	Environment *string      `json:"environment"`
	Critical    *bool        `json:"critical"`
	RiskLevel   *RiskLevel   `json:"risk_level"`
	Status      *Status      `json:"status"`
	Description *string      `json:"description"`
}

type ListToolFilter struct {
	Status      Status      `form:"status"`
	BillingType BillingType `form:"billing_type"`
	RiskLevel   RiskLevel   `form:"risk_level"`
}

type Service interface {
	Create(context.Context, CreateToolRequest) (Tool, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateToolRequest) (Tool, error)
	GetByID(ctx context.Context, id snowflake.ID) (Tool, error)
	List(ctx context.Context, filter ListToolFilter) ([]Tool, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tool *Tool) error
	Update(ctx context.Context, db *gorm.DB, tool *Tool) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tool, error)
	List(ctx context.Context, db *gorm.DB, filter ListToolFilter) ([]Tool, error)
}

var (
	ErrNotFound           = errors.New("tool_not_found")
	ErrInvalidName        = errors.New("invalid_tool_name")
	ErrInvalidBillingType = errors.New("invalid_billing_type")
	ErrInvalidRiskLevel   = errors.New("invalid_risk_level")
	ErrInvalidStatus      = errors.New("invalid_tool_status")
)
