package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/metric"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	"github.com/opsdeck/opsdeck/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	UsageSvc usagedomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	usageSvc usagedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("wallet.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		usageSvc: p.UsageSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWalletRequest) (domain.Wallet, error) {
	if req.ToolID == 0 {
		return domain.Wallet{}, domain.ErrInvalidTool
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	wallet := domain.Wallet{
		ID:                  s.genID.Generate(),
		ToolID:              req.ToolID,
		CurrentBalanceCents: req.CurrentBalanceCents,
		Currency:            currency,
		LowThresholdCents:   req.LowThresholdCents,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, &wallet); err != nil {
		return domain.Wallet{}, err
	}

	return wallet, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Wallet, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetDetail(ctx context.Context, id snowflake.ID) (domain.WalletDetail, error) {
	wallet, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.WalletDetail{}, err
	}
	if wallet == nil {
		return domain.WalletDetail{}, domain.ErrNotFound
	}
	return s.buildDetail(ctx, wallet)
}

func (s *Service) GetDetailByToolID(ctx context.Context, toolID snowflake.ID) (*domain.WalletDetail, error) {
	wallet, err := s.repo.FindByToolID(ctx, s.db, toolID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, nil
	}
	detail, err := s.buildDetail(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Service) buildDetail(ctx context.Context, wallet *domain.Wallet) (domain.WalletDetail, error) {
	topups, err := s.repo.ListTopups(ctx, s.db, wallet.ID)
	if err != nil {
		return domain.WalletDetail{}, err
	}

	detail := domain.WalletDetail{
		Wallet: *wallet,
		Topups: topups,
	}

	// Burn rate comes from the tool's recent usage logs; a read failure
	// here degrades to "no figure", it does not fail the page.
	logs, err := s.usageSvc.ListByTool(ctx, wallet.ToolID, 6)
	if err != nil {
		s.log.Warn("failed to load usage logs for burn rate",
			zap.Error(err),
			zap.String("wallet_id", wallet.ID.String()),
		)
		return detail, nil
	}

	amounts := make([]int64, 0, len(logs))
	for _, l := range logs {
		amounts = append(amounts, l.UsageAmountCents)
	}
	detail.BurnRateCents = metric.BurnRate(amounts)
	detail.RunwayMonths = metric.RunwayMonths(wallet.CurrentBalanceCents, detail.BurnRateCents)

	return detail, nil
}

func (s *Service) AddTopup(ctx context.Context, walletID snowflake.ID, req domain.AddTopupRequest) (domain.TopupTransaction, error) {
	if req.AmountCents <= 0 {
		return domain.TopupTransaction{}, domain.ErrInvalidAmount
	}

	wallet, err := s.repo.FindByID(ctx, s.db, walletID)
	if err != nil {
		return domain.TopupTransaction{}, err
	}
	if wallet == nil {
		return domain.TopupTransaction{}, domain.ErrNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = wallet.Currency
	}

	topup := domain.TopupTransaction{
		ID:          s.genID.Generate(),
		WalletID:    wallet.ID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		ToppedUpBy:  strings.TrimSpace(req.ToppedUpBy),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   time.Now().UTC(),
	}

	// Ledger insert and balance increment commit together so the ledger
	// can never run ahead of the balance.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.InsertTopup(ctx, tx, &topup)
	})
	if err != nil {
		return domain.TopupTransaction{}, err
	}

	return topup, nil
}

func (s *Service) UpdateThreshold(ctx context.Context, walletID snowflake.ID, thresholdCents int64) (domain.Wallet, error) {
	if thresholdCents < 0 {
		return domain.Wallet{}, domain.ErrInvalidAmount
	}

	wallet, err := s.repo.FindByID(ctx, s.db, walletID)
	if err != nil {
		return domain.Wallet{}, err
	}
	if wallet == nil {
		return domain.Wallet{}, domain.ErrNotFound
	}

	if err := s.repo.UpdateThreshold(ctx, s.db, walletID, thresholdCents); err != nil {
		return domain.Wallet{}, err
	}

	wallet.LowThresholdCents = thresholdCents
	return *wallet, nil
}
