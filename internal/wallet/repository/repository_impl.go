package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/wallet/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, wallet *domain.Wallet) error {
	return db.WithContext(ctx).Create(wallet).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM wallets WHERE id = ?`, id,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) FindByToolID(ctx context.Context, db *gorm.DB, toolID snowflake.ID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM wallets WHERE tool_id = ?`, toolID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	err := db.WithContext(ctx).
		Model(&domain.Wallet{}).
		Order("created_at asc, id asc").
		Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *repo) ListTopups(ctx context.Context, db *gorm.DB, walletID snowflake.ID) ([]domain.TopupTransaction, error) {
	var topups []domain.TopupTransaction
	err := db.WithContext(ctx).
		Model(&domain.TopupTransaction{}).
		Where("wallet_id = ?", walletID).
		Order("created_at desc, id desc").
		Find(&topups).Error
	if err != nil {
		return nil, err
	}
	return topups, nil
}

func (r *repo) InsertTopup(ctx context.Context, db *gorm.DB, topup *domain.TopupTransaction) error {
	if err := db.WithContext(ctx).Create(topup).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`UPDATE wallets
		 SET current_balance_cents = current_balance_cents + ?,
		     updated_at = ?
		 WHERE id = ?`,
		topup.AmountCents,
		time.Now().UTC(),
		topup.WalletID,
	).Error
}

func (r *repo) UpdateThreshold(ctx context.Context, db *gorm.DB, walletID snowflake.ID, thresholdCents int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE wallets
		 SET low_threshold_cents = ?,
		     updated_at = ?
		 WHERE id = ?`,
		thresholdCents,
		time.Now().UTC(),
		walletID,
	).Error
}
