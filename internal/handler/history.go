package handler

import (
	"net/http"
	"strconv"

	"CareerPortal_ResultsProject/internal/models"

	"github.com/gin-gonic/gin"
)

type HistoryResponse struct {
	Success bool                `json:"success" example:"true"`
	History []models.Generation `json:"history"`
}

// GetHistory godoc
// @Summary      Generation history
// @Description  Results generated for the session record, newest first.
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "maximum entries (default 50)"
// @Success      200 {object} handler.HistoryResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			badRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	history, err := h.portal.History(c.Request.Context(), recordID(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Success: true, History: history})
}
