package handler

import (
	"io"
	"net/http"

	"CareerPortal_ResultsProject/internal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 64 << 10

type PackagesResponse struct {
	Success  bool                  `json:"success" example:"true"`
	Packages []payment.PackageView `json:"packages"`
}

type IntentRequest struct {
	Package string `json:"package" binding:"required" example:"standard"`
}

type IntentResponse struct {
	Success bool                   `json:"success" example:"true"`
	Intent  payment.CheckoutIntent `json:"intent"`
}

type ConfirmRequest struct {
	IntentID string `json:"intentId" binding:"required" example:"pi_3Nf..."`
}

type ConfirmResponse struct {
	Success bool               `json:"success" example:"true"`
	Payment payment.Resolution `json:"payment"`
}

// ListPackages godoc
// @Summary      Token packages
// @Tags         Payments
// @Produce      json
// @Success      200 {object} handler.PackagesResponse
// @Router       /api/payments/packages [get]
func (h *Handler) ListPackages(c *gin.Context) {
	c.JSON(http.StatusOK, PackagesResponse{Success: true, Packages: h.payments.Packages()})
}

// CreatePaymentIntent godoc
// @Summary      Create payment intent
// @Description  Opens a Stripe PaymentIntent for a package; the client completes it with the returned secret.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.IntentRequest true "package"
// @Success      200 {object} handler.IntentResponse
// @Failure      400 {object} handler.ErrorResponse "unknown package"
// @Failure      401 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/payments/intent [post]
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "package is required")
		return
	}
	intent, err := h.payments.CreateIntent(c.Request.Context(), recordID(c), req.Package)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, IntentResponse{Success: true, Intent: intent})
}

// ConfirmPayment godoc
// @Summary      Confirm payment
// @Description  Checks the intent with Stripe and credits the package once it succeeded.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.ConfirmRequest true "intent id"
// @Success      200 {object} handler.ConfirmResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "intent of another record"
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/payments/confirm [post]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "intentId is required")
		return
	}
	res, err := h.payments.Confirm(c.Request.Context(), recordID(c), req.IntentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ConfirmResponse{Success: true, Payment: res})
}

// StripeWebhook godoc
// @Summary      Stripe webhook
// @Description  Signed payment_intent.succeeded and payment_intent.payment_failed events.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "signature"
// @Success      200 {object} handler.ConfirmResponse
// @Failure      400 {object} handler.ErrorResponse "invalid signature"
// @Router       /webhooks/stripe [post]
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		badRequest(c, "failed to read body")
		return
	}
	res, err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("StripeWebhook(): rejected", zap.Error(err))
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ConfirmResponse{Success: true, Payment: res})
}
