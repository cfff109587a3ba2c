package handler

import (
	"net/http"
	"strconv"

	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/service"

	"github.com/gin-gonic/gin"
)

type FeaturesResponse struct {
	Success  bool                 `json:"success" example:"true"`
	Features []prompt.FeatureInfo `json:"features"`
}

type FeatureResponse struct {
	Success bool                   `json:"success" example:"true"`
	Result  *service.FeatureResult `json:"result"`
}

type NarrateRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListFeatures godoc
// @Summary      Feature catalog
// @Tags         Features
// @Produce      json
// @Success      200 {object} handler.FeaturesResponse
// @Router       /api/features [get]
func (h *Handler) ListFeatures(c *gin.Context) {
	features := prompt.Features()
	out := make([]prompt.FeatureInfo, 0, len(features))
	for _, f := range features {
		out = append(out, f.Info())
	}
	c.JSON(http.StatusOK, FeaturesResponse{Success: true, Features: out})
}

// GenerateFeature godoc
// @Summary      Generate a feature result
// @Description  Charges the feature cost and returns the generated text and, for image
// @Description  features, an image (a placeholder when the image job fails).
// @Tags         Features
// @Produce      json
// @Security     BearerAuth
// @Param        feature path string true "feature id" Enums(career_paths, strengths, work_environment, development_plan, future_vision)
// @Success      200 {object} handler.FeatureResponse
// @Failure      400 {object} handler.ErrorResponse "unknown feature"
// @Failure      401 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "insufficient balance"
// @Failure      404 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse "generation failed, tokens refunded"
// @Router       /api/features/{feature} [post]
func (h *Handler) GenerateFeature(c *gin.Context) {
	f, err := prompt.ParseFeature(c.Param("feature"))
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.portal.GenerateFeature(c.Request.Context(), recordID(c), f, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FeatureResponse{Success: true, Result: res})
}

// NarrateFeature godoc
// @Summary      Narrate a result
// @Description  Renders the given text as MP3. The new balance is returned in X-Token-Balance.
// @Tags         Features
// @Accept       json
// @Produce      audio/mpeg
// @Security     BearerAuth
// @Param        feature path string true "feature id"
// @Param        request body handler.NarrateRequest true "text to read"
// @Success      200 {file} file "MP3 audio"
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "insufficient balance"
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/features/{feature}/narrate [post]
func (h *Handler) NarrateFeature(c *gin.Context) {
	f, err := prompt.ParseFeature(c.Param("feature"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req NarrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}
	audio, balance, err := h.portal.Narrate(c.Request.Context(), recordID(c), f, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("X-Token-Balance", strconv.Itoa(balance))
	c.Data(http.StatusOK, "audio/mpeg", audio)
}
