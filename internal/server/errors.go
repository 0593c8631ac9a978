package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	projectdomain "github.com/opsdeck/opsdeck/internal/project/domain"
	purchasedomain "github.com/opsdeck/opsdeck/internal/purchase/domain"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	userroledomain "github.com/opsdeck/opsdeck/internal/userrole/domain"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, projectdomain.ErrAlreadyMapped),
		errors.Is(err, incidentdomain.ErrAlreadyResolved):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, tooldomain.ErrInvalidName),
		errors.Is(err, tooldomain.ErrInvalidBillingType),
		errors.Is(err, tooldomain.ErrInvalidRiskLevel),
		errors.Is(err, tooldomain.ErrInvalidStatus):
		return true
	case errors.Is(err, subscriptiondomain.ErrInvalidTool),
		errors.Is(err, subscriptiondomain.ErrInvalidCost),
		errors.Is(err, subscriptiondomain.ErrInvalidFrequency):
		return true
	case errors.Is(err, walletdomain.ErrInvalidTool),
		errors.Is(err, walletdomain.ErrInvalidAmount):
		return true
	case errors.Is(err, usagedomain.ErrInvalidTool),
		errors.Is(err, usagedomain.ErrInvalidMonth),
		errors.Is(err, usagedomain.ErrInvalidAmount):
		return true
	case errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidStage),
		errors.Is(err, projectdomain.ErrInvalidTool):
		return true
	case errors.Is(err, credentialdomain.ErrInvalidTool):
		return true
	case errors.Is(err, incidentdomain.ErrInvalidTool),
		errors.Is(err, incidentdomain.ErrInvalidType),
		errors.Is(err, incidentdomain.ErrInvalidSeverity),
		errors.Is(err, incidentdomain.ErrInvalidStatus):
		return true
	case errors.Is(err, purchasedomain.ErrInvalidName),
		errors.Is(err, purchasedomain.ErrInvalidDate),
		errors.Is(err, purchasedomain.ErrEmptyReceipt):
		return true
	case errors.Is(err, userroledomain.ErrInvalidUser),
		errors.Is(err, userroledomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tooldomain.ErrNotFound),
		errors.Is(err, walletdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, credentialdomain.ErrNotFound),
		errors.Is(err, incidentdomain.ErrNotFound),
		errors.Is(err, purchasedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
