package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	usagerepository "github.com/opsdeck/opsdeck/internal/usage/repository"
	usageservice "github.com/opsdeck/opsdeck/internal/usage/service"
	"github.com/opsdeck/opsdeck/internal/wallet/domain"
	"github.com/opsdeck/opsdeck/internal/wallet/repository"
)

func newTestService(t *testing.T, dsn string) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&domain.Wallet{},
		&domain.TopupTransaction{},
		&usagedomain.UsageLog{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	usageSvc := usageservice.New(usageservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  usagerepository.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      logger,
		GenID:    node,
		Repo:     repository.Provide(),
		UsageSvc: usageSvc,
	})
	return svc, db, node
}

func TestAddTopup_BalanceAndLedgerMoveTogether(t *testing.T) {
	svc, db, node := newTestService(t, "file:wallet_topup?mode=memory&cache=shared")
	ctx := context.Background()

	wallet := domain.Wallet{
		ID:                  node.Generate(),
		ToolID:              node.Generate(),
		CurrentBalanceCents: 12_345,
		Currency:            "USD",
		LowThresholdCents:   1_000,
	}
	require.NoError(t, db.Create(&wallet).Error)

	topup, err := svc.AddTopup(ctx, wallet.ID, domain.AddTopupRequest{
		AmountCents: 6_789,
		ToppedUpBy:  "ops@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6_789), topup.AmountCents)
	assert.Equal(t, "USD", topup.Currency)

	var reloaded domain.Wallet
	require.NoError(t, db.First(&reloaded, "id = ?", wallet.ID).Error)
	assert.Equal(t, int64(12_345+6_789), reloaded.CurrentBalanceCents)

	var ledger int64
	require.NoError(t, db.Model(&domain.TopupTransaction{}).
		Where("wallet_id = ?", wallet.ID).
		Count(&ledger).Error)
	assert.Equal(t, int64(1), ledger)
}

func TestAddTopup_RejectsNonPositiveAmounts(t *testing.T) {
	svc, db, node := newTestService(t, "file:wallet_badamount?mode=memory&cache=shared")
	ctx := context.Background()

	wallet := domain.Wallet{ID: node.Generate(), ToolID: node.Generate(), Currency: "USD"}
	require.NoError(t, db.Create(&wallet).Error)

	_, err := svc.AddTopup(ctx, wallet.ID, domain.AddTopupRequest{AmountCents: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.AddTopup(ctx, wallet.ID, domain.AddTopupRequest{AmountCents: -500})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	var ledger int64
	require.NoError(t, db.Model(&domain.TopupTransaction{}).Count(&ledger).Error)
	assert.Zero(t, ledger)
}

func TestAddTopup_UnknownWallet(t *testing.T) {
	svc, _, node := newTestService(t, "file:wallet_missing?mode=memory&cache=shared")

	_, err := svc.AddTopup(context.Background(), node.Generate(), domain.AddTopupRequest{AmountCents: 100})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDetail_DerivesBurnRateAndRunway(t *testing.T) {
	svc, db, node := newTestService(t, "file:wallet_detail?mode=memory&cache=shared")
	ctx := context.Background()

	toolID := node.Generate()
	wallet := domain.Wallet{
		ID:                  node.Generate(),
		ToolID:              toolID,
		CurrentBalanceCents: 10_000,
		Currency:            "USD",
	}
	require.NoError(t, db.Create(&wallet).Error)

	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	logs := []usagedomain.UsageLog{
		{ID: node.Generate(), ToolID: toolID, Month: datatypes.Date(month), UsageAmountCents: 3_000, Currency: "USD"},
		{ID: node.Generate(), ToolID: toolID, Month: datatypes.Date(month.AddDate(0, 1, 0)), UsageAmountCents: 5_000, Currency: "USD"},
	}
	require.NoError(t, db.Create(&logs).Error)

	detail, err := svc.GetDetail(ctx, wallet.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.BurnRateCents)
	assert.Equal(t, 4_000.0, *detail.BurnRateCents)
	require.NotNil(t, detail.RunwayMonths)
	assert.Equal(t, 2.5, *detail.RunwayMonths)
}

func TestGetDetail_NoUsageMeansNoFigures(t *testing.T) {
	svc, db, node := newTestService(t, "file:wallet_nousage?mode=memory&cache=shared")

	wallet := domain.Wallet{ID: node.Generate(), ToolID: node.Generate(), CurrentBalanceCents: 500}
	require.NoError(t, db.Create(&wallet).Error)

	detail, err := svc.GetDetail(context.Background(), wallet.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.BurnRateCents)
	assert.Nil(t, detail.RunwayMonths)
}
