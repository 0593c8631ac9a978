package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateSubscriptionRequest struct {
	ToolID           snowflake.ID     `json:"tool_id"`
	PlanName         string           `json:"plan_name"`
	MonthlyCostCents int64            `json:"monthly_cost_cents"`
	Currency         string           `json:"currency"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency"`
	RenewalDate      *time.Time       `json:"renewal_date"`
	BillingOwner     string           `json:"billing_owner"`
}

type Service interface {
	Create(context.Context, CreateSubscriptionRequest) (Subscription, error)
	List(context.Context) ([]Subscription, error)
	GetByToolID(ctx context.Context, toolID snowflake.ID) (*Subscription, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	List(ctx context.Context, db *gorm.DB) ([]Subscription, error)
	FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*Subscription, error)
}

var (
	ErrInvalidTool      = errors.New("invalid_tool")
	ErrInvalidCost      = errors.New("invalid_monthly_cost")
	ErrInvalidFrequency = errors.New("invalid_payment_frequency")
)
