package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/purchase/domain"
)

// fakeStore records calls; Remove can be made to fail.
type fakeStore struct {
	uploads   []string
	removed   []string
	removeErr error
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://store.test/" + key, nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return f.removeErr
}

func (f *fakeStore) PathFromURL(url string) string {
	return strings.TrimPrefix(url, "https://store.test/")
}

func newTestService(t *testing.T, dsn string) (domain.Service, *gorm.DB, *fakeStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Purchase{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := &fakeStore{}
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Store: store,
	})
	return svc, db, store
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validRequest() domain.CreatePurchaseRequest {
	return domain.CreatePurchaseRequest{
		Name:         "Dock station",
		PurchaseDate: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		AmountCents:  18_900,
	}
}

func TestUploadReceipt_StoresRecompressedJPEG(t *testing.T) {
	svc, _, store := newTestService(t, "file:purchase_upload?mode=memory&cache=shared")

	url, err := svc.UploadReceipt(context.Background(), pngBytes(t))
	require.NoError(t, err)

	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasPrefix(store.uploads[0], "receipts/"))
	assert.True(t, strings.HasSuffix(store.uploads[0], ".jpg"))
	assert.Equal(t, "https://store.test/"+store.uploads[0], url)
}

func TestUploadReceipt_RejectsEmptyAndGarbage(t *testing.T) {
	svc, _, store := newTestService(t, "file:purchase_badupload?mode=memory&cache=shared")

	_, err := svc.UploadReceipt(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyReceipt)

	_, err = svc.UploadReceipt(context.Background(), []byte("not an image"))
	assert.Error(t, err)
	assert.Empty(t, store.uploads)
}

func TestCreate_FailedInsertCleansUpUploadedReceipts(t *testing.T) {
	svc, db, store := newTestService(t, "file:purchase_compensate?mode=memory&cache=shared")
	ctx := context.Background()

	req := validRequest()
	req.ReceiptURL = "https://store.test/receipts/r1.jpg"
	req.WarrantyReceiptURL = "https://store.test/receipts/w1.jpg"

	// Force the insert to fail after the uploads already happened.
	require.NoError(t, db.Migrator().DropTable(&domain.Purchase{}))

	_, err := svc.Create(ctx, req)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"receipts/r1.jpg", "receipts/w1.jpg"}, store.removed)
}

func TestDelete_RemovesRowThenObjectsBestEffort(t *testing.T) {
	svc, db, store := newTestService(t, "file:purchase_delete?mode=memory&cache=shared")
	ctx := context.Background()

	req := validRequest()
	req.ReceiptURL = "https://store.test/receipts/r2.jpg"
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// A failing object removal never undoes the row deletion.
	store.removeErr = errors.New("s3 unavailable")

	require.NoError(t, svc.Delete(ctx, created.ID))

	var count int64
	require.NoError(t, db.Model(&domain.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, []string{"receipts/r2.jpg"}, store.removed)
}

func TestDelete_UnknownPurchase(t *testing.T) {
	svc, _, _ := newTestService(t, "file:purchase_missing?mode=memory&cache=shared")

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), node.Generate()), domain.ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t, "file:purchase_validation?mode=memory&cache=shared")
	ctx := context.Background()

	req := validRequest()
	req.Name = "  "
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	req = validRequest()
	req.PurchaseDate = time.Time{}
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
