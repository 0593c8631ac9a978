package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type LogUsageRequest struct {
	ToolID           snowflake.ID `json:"tool_id"`
	Month            time.Time    `json:"month"`
	UsageAmountCents int64        `json:"usage_amount_cents"`
	Currency         string       `json:"currency"`
	BudgetLimitCents *int64       `json:"budget_limit_cents"`
}

// MonthlyTotal is one point of the trailing usage series.
type MonthlyTotal struct {
	Month      time.Time `json:"month"`
	TotalCents int64     `json:"total_cents"`
}

type Service interface {
	// Log upserts by (tool, month): an existing row is replaced in
	// place, never duplicated.
	Log(context.Context, LogUsageRequest) (UsageLog, error)
	List(context.Context) ([]UsageLog, error)
	ListByTool(ctx context.Context, toolID snowflake.ID, limit int) ([]UsageLog, error)
	ListByMonth(ctx context.Context, month time.Time) ([]UsageLog, error)
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, log *UsageLog) error
	List(ctx context.Context, db *gorm.DB) ([]UsageLog, error)
	ListByTool(ctx context.Context, db *gorm.DB, toolID snowflake.ID, limit int) ([]UsageLog, error)
	ListByMonth(ctx context.Context, db *gorm.DB, month time.Time) ([]UsageLog, error)
}

var (
	ErrInvalidTool   = errors.New("invalid_tool")
	ErrInvalidMonth  = errors.New("invalid_month")
	ErrInvalidAmount = errors.New("invalid_usage_amount")
)
