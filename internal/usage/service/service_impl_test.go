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
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/usage/domain"
	"github.com/opsdeck/opsdeck/internal/usage/repository"
)

func newTestService(t *testing.T, dsn string) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UsageLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestLog_ReplacesSameMonthInPlace(t *testing.T) {
	svc, db, node := newTestService(t, "file:usage_upsert?mode=memory&cache=shared")
	ctx := context.Background()

	toolID := node.Generate()
	budget := int64(50_000)

	first, err := svc.Log(ctx, domain.LogUsageRequest{
		ToolID:           toolID,
		Month:            time.Date(2024, 6, 9, 15, 30, 0, 0, time.UTC),
		UsageAmountCents: 10_000,
		BudgetLimitCents: &budget,
	})
	require.NoError(t, err)

	// Any day inside the month maps to the same row.
	_, err = svc.Log(ctx, domain.LogUsageRequest{
		ToolID:           toolID,
		Month:            time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		UsageAmountCents: 22_500,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.UsageLog{}).Where("tool_id = ?", toolID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var row domain.UsageLog
	require.NoError(t, db.First(&row, "tool_id = ?", toolID).Error)
	assert.Equal(t, first.ToolID, row.ToolID)
	assert.Equal(t, int64(22_500), row.UsageAmountCents)
	assert.Nil(t, row.BudgetLimitCents)
}

func TestLog_DistinctMonthsStaySeparate(t *testing.T) {
	svc, db, node := newTestService(t, "file:usage_months?mode=memory&cache=shared")
	ctx := context.Background()

	toolID := node.Generate()
	for _, month := range []time.Time{
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := svc.Log(ctx, domain.LogUsageRequest{
			ToolID:           toolID,
			Month:            month,
			UsageAmountCents: 1_000,
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&domain.UsageLog{}).Where("tool_id = ?", toolID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestLog_Validation(t *testing.T) {
	svc, _, node := newTestService(t, "file:usage_validation?mode=memory&cache=shared")
	ctx := context.Background()

	_, err := svc.Log(ctx, domain.LogUsageRequest{Month: time.Now(), UsageAmountCents: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTool)

	_, err = svc.Log(ctx, domain.LogUsageRequest{ToolID: node.Generate(), UsageAmountCents: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = svc.Log(ctx, domain.LogUsageRequest{ToolID: node.Generate(), Month: time.Now(), UsageAmountCents: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListByTool_MostRecentFirstWithLimit(t *testing.T) {
	svc, _, node := newTestService(t, "file:usage_listbytool?mode=memory&cache=shared")
	ctx := context.Background()

	toolID := node.Generate()
	for i := 0; i < 8; i++ {
		_, err := svc.Log(ctx, domain.LogUsageRequest{
			ToolID:           toolID,
			Month:            time.Date(2024, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
			UsageAmountCents: int64(1_000 * (i + 1)),
		})
		require.NoError(t, err)
	}

	logs, err := svc.ListByTool(ctx, toolID, 6)
	require.NoError(t, err)
	require.Len(t, logs, 6)
	assert.Equal(t, int64(8_000), logs[0].UsageAmountCents)
	assert.Equal(t, int64(3_000), logs[5].UsageAmountCents)
}
