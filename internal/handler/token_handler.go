package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type BalanceResponse struct {
	Success bool `json:"success" example:"true"`
	Balance int  `json:"balance" example:"40"`
}

type DeductRequest struct {
	Amount int `json:"amount" example:"10"`
}

type DeductResponse struct {
	Success bool `json:"success" example:"true"`
	Balance int  `json:"balance" example:"30"`
	Charged int  `json:"charged" example:"10"`

	// TestMode is set when the deduction was skipped.
	TestMode bool `json:"testMode,omitempty"`
}

// GetTokens godoc
// @Summary      Token balance
// @Tags         Tokens
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.BalanceResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/tokens [get]
func (h *Handler) GetTokens(c *gin.Context) {
	balance, err := h.portal.Balance(c.Request.Context(), recordID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Success: true, Balance: balance})
}

// DeductTokens godoc
// @Summary      Deduct tokens
// @Tags         Tokens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.DeductRequest true "amount"
// @Success      200 {object} handler.DeductResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "insufficient balance"
// @Router       /api/tokens/deduct [post]
func (h *Handler) DeductTokens(c *gin.Context) {
	var req DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount is required")
		return
	}
	receipt, err := h.portal.DeductTokens(c.Request.Context(), recordID(c), req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DeductResponse{
		Success:  true,
		Balance:  receipt.Balance,
		Charged:  receipt.Charged,
		TestMode: receipt.Skipped,
	})
}
