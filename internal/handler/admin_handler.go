package handler

import (
	"net/http"

	"CareerPortal_ResultsProject/internal/middleware"
	"CareerPortal_ResultsProject/internal/settings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsResponse struct {
	Success  bool              `json:"success" example:"true"`
	Settings settings.Snapshot `json:"settings"`
}

type SettingsRequest struct {
	TestMode *bool `json:"testMode" binding:"required" example:"true"`
}

type AddTokensRequest struct {
	Code   string `json:"code" binding:"required" example:"K7X2-9QPL"`
	Amount int    `json:"amount" binding:"required" example:"100"`
}

type AddTokensResponse struct {
	Success  bool   `json:"success" example:"true"`
	RecordID string `json:"recordId" example:"recA1b2C3"`
	Balance  int    `json:"balance" example:"150"`
}

// GetSettings godoc
// @Summary      Runtime settings
// @Tags         Admin
// @Produce      json
// @Param        X-Admin-Key header string true "admin key"
// @Success      200 {object} handler.SettingsResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /admin/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, SettingsResponse{Success: true, Settings: h.runtime.Snapshot()})
}

// UpdateSettings godoc
// @Summary      Change runtime settings
// @Description  Switches test mode, in which paid actions do not deduct tokens.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key header string true "admin key"
// @Param        request body handler.SettingsRequest true "settings"
// @Success      200 {object} handler.SettingsResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /admin/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "testMode is required")
		return
	}
	actor := c.GetString(middleware.AdminActorKey)
	snap := h.runtime.Update(*req.TestMode, actor)
	h.log.Info("UpdateSettings(): runtime settings changed", zap.Bool("test_mode", snap.TestMode), zap.String("by", actor))
	c.JSON(http.StatusOK, SettingsResponse{Success: true, Settings: snap})
}

// AdminAddTokens godoc
// @Summary      Add tokens to a code
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key header string true "admin key"
// @Param        request body handler.AddTokensRequest true "code and amount"
// @Success      200 {object} handler.AddTokensResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /admin/tokens/add [post]
func (h *Handler) AdminAddTokens(c *gin.Context) {
	var req AddTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code and amount are required")
		return
	}
	id, balance, err := h.portal.AddTokensByCode(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AddTokensResponse{Success: true, RecordID: id, Balance: balance})
}
