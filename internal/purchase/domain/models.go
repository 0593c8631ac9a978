// Package domain contains persistence models for one-off purchases.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Purchase is a one-off buy (hardware, licenses) with optional receipt
// images kept in object storage. The row stores only the public URLs.
type Purchase struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"not null" json:"name"`
	PurchaseDate       datatypes.Date  `gorm:"not null" json:"purchase_date"`
	AmountCents        int64           `gorm:"not null;default:0" json:"amount_cents"`
	Currency           string          `gorm:"not null;default:USD" json:"currency"`
	Description        string          `json:"description,omitempty"`
	Vendor             string          `json:"vendor,omitempty"`
	Category           string          `json:"category,omitempty"`
	AssignedTo         string          `json:"assigned_to,omitempty"`
	WarrantyID         string          `json:"warranty_id,omitempty"`
	WarrantyExpires    *datatypes.Date `json:"warranty_expires,omitempty"`
	ReceiptURL         string          `json:"receipt_url,omitempty"`
	WarrantyReceiptURL string          `json:"warranty_receipt_url,omitempty"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Purchase) TableName() string { return "purchases" }

type CreatePurchaseRequest struct {
	Name               string     `json:"name"`
	PurchaseDate       time.Time  `json:"purchase_date"`
	AmountCents        int64      `json:"amount_cents"`
	Currency           string     `json:"currency"`
	Description        string     `json:"description"`
	Vendor             string     `json:"vendor"`
	Category           string     `json:"category"`
	AssignedTo         string     `json:"assigned_to"`
	WarrantyID         string     `json:"warranty_id"`
	WarrantyExpires    *time.Time `json:"warranty_expires"`
	ReceiptURL         string     `json:"receipt_url"`
	WarrantyReceiptURL string     `json:"warranty_receipt_url"`
}

type Service interface {
	Create(context.Context, CreatePurchaseRequest) (Purchase, error)
	Update(ctx context.Context, id snowflake.ID, req CreatePurchaseRequest) (Purchase, error)
	List(context.Context) ([]Purchase, error)
	// Delete removes the row, then best-effort removes any referenced
	// receipt objects. A failed object removal never undoes the delete.
	Delete(ctx context.Context, id snowflake.ID) error
	// UploadReceipt recompresses an image and stores it, returning the
	// public URL to reference from a purchase row.
	UploadReceipt(ctx context.Context, data []byte) (string, error)
}

var (
	ErrNotFound     = errors.New("purchase_not_found")
	ErrInvalidName  = errors.New("invalid_purchase_name")
	ErrInvalidDate  = errors.New("invalid_purchase_date")
	ErrEmptyReceipt = errors.New("empty_receipt")
)
