// Package domain contains persistence models for prepaid wallets.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Wallet is a tool's prepaid balance. The balance only grows through
// top-ups; external billing events drain it out of band, so usage logs
// never decrement it here.
type Wallet struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ToolID              snowflake.ID `gorm:"not null;index" json:"tool_id"`
	CurrentBalanceCents int64        `gorm:"not null;default:0" json:"current_balance_cents"`
	Currency            string       `gorm:"not null;default:USD" json:"currency"`
	LowThresholdCents   int64        `gorm:"not null;default:0" json:"low_threshold_cents"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

// TopupTransaction is one append-only ledger entry. Inserting one
// increments the parent wallet balance in the same transaction.
type TopupTransaction struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	WalletID    snowflake.ID `gorm:"not null;index" json:"wallet_id"`
	AmountCents int64        `gorm:"not null" json:"amount_cents"`
	Currency    string       `gorm:"not null;default:USD" json:"currency"`
	ToppedUpBy  string       `json:"topped_up_by,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (TopupTransaction) TableName() string { return "topup_transactions" }
