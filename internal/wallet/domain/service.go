package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateWalletRequest struct {
	ToolID              snowflake.ID `json:"tool_id"`
	CurrentBalanceCents int64        `json:"current_balance_cents"`
	Currency            string       `json:"currency"`
	LowThresholdCents   int64        `json:"low_threshold_cents"`
}

type AddTopupRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	ToppedUpBy  string `json:"topped_up_by"`
	Notes       string `json:"notes"`
}

// WalletDetail is a wallet with its ledger and derived spend figures.
type WalletDetail struct {
	Wallet        Wallet             `json:"wallet"`
	Topups        []TopupTransaction `json:"topups"`
	BurnRateCents *float64           `json:"burn_rate_cents,omitempty"`
	RunwayMonths  *float64           `json:"runway_months,omitempty"`
}

type Service interface {
	Create(context.Context, CreateWalletRequest) (Wallet, error)
	List(context.Context) ([]Wallet, error)
	GetDetail(ctx context.Context, id snowflake.ID) (WalletDetail, error)
	// GetDetailByToolID returns nil without error when the tool has no
	// wallet.
	GetDetailByToolID(ctx context.Context, toolID snowflake.ID) (*WalletDetail, error)
	AddTopup(ctx context.Context, walletID snowflake.ID, req AddTopupRequest) (TopupTransaction, error)
	UpdateThreshold(ctx context.Context, walletID snowflake.ID, thresholdCents int64) (Wallet, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, wallet *Wallet) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Wallet, error)
	FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*Wallet, error)
	List(ctx context.Context, db *gorm.DB) ([]Wallet, error)
	ListTopups(ctx context.Context, db *gorm.DB, walletID snowflake.ID) ([]TopupTransaction, error)
	// InsertTopup appends a ledger entry and increments the parent
	// balance inside the caller's transaction.
	InsertTopup(ctx context.Context, db *gorm.DB, topup *TopupTransaction) error
	UpdateThreshold(ctx context.Context, db *gorm.DB, walletID snowflake.ID, thresholdCents int64) error
}

var (
	ErrNotFound      = errors.New("wallet_not_found")
	ErrInvalidTool   = errors.New("invalid_tool")
	ErrInvalidAmount = errors.New("invalid_topup_amount")
)
