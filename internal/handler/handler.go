// Package handler exposes the portal over HTTP and WebSocket.
package handler

import (
	"errors"
	"net/http"

	"CareerPortal_ResultsProject/internal/auth"
	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/middleware"
	"CareerPortal_ResultsProject/internal/payment"
	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/service"
	"CareerPortal_ResultsProject/internal/settings"
	"CareerPortal_ResultsProject/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	portal   *service.Portal
	payments *payment.Service
	runtime  *settings.Runtime
	issuer   *auth.TokenIssuer
	log      *zap.Logger
}

func New(portal *service.Portal, payments *payment.Service, runtime *settings.Runtime, issuer *auth.TokenIssuer, log *zap.Logger) *Handler {
	return &Handler{portal: portal, payments: payments, runtime: runtime, issuer: issuer, log: log}
}

type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"description of the failure"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, payment.ErrUnknownPackage),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, prompt.ErrUnknownFeature):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, payment.ErrForeignPayment):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, payment.ErrUnknownIntent):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Success: false, Error: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: message})
}

func recordID(c *gin.Context) string {
	return c.GetString(middleware.RecordIDKey)
}
