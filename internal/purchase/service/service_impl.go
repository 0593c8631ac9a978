package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/opsdeck/opsdeck/internal/imaging"
	"github.com/opsdeck/opsdeck/internal/providers/storage"
	"github.com/opsdeck/opsdeck/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Store storage.ObjectStore
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	store storage.ObjectStore
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("purchase.service"),
		genID: p.GenID,
		store: p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePurchaseRequest) (domain.Purchase, error) {
	purchase, err := s.fromRequest(req)
	if err != nil {
		return domain.Purchase{}, err
	}
	purchase.ID = s.genID.Generate()

	if err := s.db.WithContext(ctx).Create(&purchase).Error; err != nil {
		// The receipt objects were uploaded before this row existed;
		// remove them again rather than leaving orphans behind.
		s.cleanupReceipts(ctx, purchase.ReceiptURL, purchase.WarrantyReceiptURL)
		return domain.Purchase{}, err
	}

	return purchase, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.CreatePurchaseRequest) (domain.Purchase, error) {
	existing, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if existing == nil {
		return domain.Purchase{}, domain.ErrNotFound
	}

	purchase, err := s.fromRequest(req)
	if err != nil {
		return domain.Purchase{}, err
	}
	purchase.ID = existing.ID
	purchase.CreatedAt = existing.CreatedAt

	if err := s.db.WithContext(ctx).Save(&purchase).Error; err != nil {
		return domain.Purchase{}, err
	}

	return purchase, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := s.db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Order("purchase_date desc, id desc").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	// Fetch the URLs before deleting so storage can be cleaned up.
	existing, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	if err := s.db.WithContext(ctx).Delete(&domain.Purchase{}, "id = ?", id).Error; err != nil {
		return err
	}

	// Best effort: the row is gone either way.
	s.cleanupReceipts(ctx, existing.ReceiptURL, existing.WarrantyReceiptURL)
	return nil
}

func (s *Service) UploadReceipt(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyReceipt
	}

	compressed, err := imaging.Recompress(data)
	if err != nil {
		return "", err
	}

	key := "receipts/" + uuid.NewString() + ".jpg"
	url, err := s.store.Upload(ctx, key, "image/jpeg", compressed)
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) fromRequest(req domain.CreatePurchaseRequest) (domain.Purchase, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Purchase{}, domain.ErrInvalidName
	}
	if req.PurchaseDate.IsZero() {
		return domain.Purchase{}, domain.ErrInvalidDate
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	var warrantyExpires *datatypes.Date
	if req.WarrantyExpires != nil {
		d := datatypes.Date(req.WarrantyExpires.UTC().Truncate(24 * time.Hour))
		warrantyExpires = &d
	}

	now := time.Now().UTC()
	return domain.Purchase{
		Name:               name,
		PurchaseDate:       datatypes.Date(req.PurchaseDate.UTC().Truncate(24 * time.Hour)),
		AmountCents:        req.AmountCents,
		Currency:           currency,
		Description:        strings.TrimSpace(req.Description),
		Vendor:             strings.TrimSpace(req.Vendor),
		Category:           strings.TrimSpace(req.Category),
		AssignedTo:         strings.TrimSpace(req.AssignedTo),
		WarrantyID:         strings.TrimSpace(req.WarrantyID),
		WarrantyExpires:    warrantyExpires,
		ReceiptURL:         strings.TrimSpace(req.ReceiptURL),
		WarrantyReceiptURL: strings.TrimSpace(req.WarrantyReceiptURL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *Service) findByID(ctx context.Context, id snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM purchases WHERE id = ?`, id,
	).Scan(&purchase).Error
	if err != nil {
		return nil, err
	}
	if purchase.ID == 0 {
		return nil, nil
	}
	return &purchase, nil
}

func (s *Service) cleanupReceipts(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		key := s.store.PathFromURL(url)
		if key == "" {
			continue
		}
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Warn("failed to remove receipt object", zap.Error(err), zap.String("key", key))
		}
	}
}
