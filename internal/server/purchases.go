package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	purchasedomain "github.com/opsdeck/opsdeck/internal/purchase/domain"
)

// maxReceiptBytes caps the multipart receipt payload.
const maxReceiptBytes = 10 << 20

type purchaseRequest struct {
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

func (r purchaseRequest) toDomain() purchasedomain.CreatePurchaseRequest {
	return purchasedomain.CreatePurchaseRequest{
		Name:               strings.TrimSpace(r.Name),
		PurchaseDate:       r.PurchaseDate,
		AmountCents:        r.AmountCents,
		Currency:           strings.TrimSpace(r.Currency),
		Description:        strings.TrimSpace(r.Description),
		Vendor:             strings.TrimSpace(r.Vendor),
		Category:           strings.TrimSpace(r.Category),
		AssignedTo:         strings.TrimSpace(r.AssignedTo),
		WarrantyID:         strings.TrimSpace(r.WarrantyID),
		WarrantyExpires:    r.WarrantyExpires,
		ReceiptURL:         strings.TrimSpace(r.ReceiptURL),
		WarrantyReceiptURL: strings.TrimSpace(r.WarrantyReceiptURL),
	}
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePurchase(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Update(c.Request.Context(), id, req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	resp, err := s.purchaseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePurchase(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.purchaseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// UploadReceipt accepts a multipart image, recompresses it, and returns
// the stored object's public URL for a purchase row to reference.
func (s *Server) UploadReceipt(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "missing file"))
		return
	}
	if file.Size > maxReceiptBytes {
		AbortWithError(c, newValidationError("file", "invalid_file", "file too large"))
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxReceiptBytes))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	url, err := s.purchaseSvc.UploadReceipt(c.Request.Context(), data)
	if err != nil {
		s.metrics.RecordReceiptUpload("error")
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordReceiptUpload("ok")

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
}
