/**
* Name: 			user_handler.go
* Description: 		access code verification and profile endpoints
* Workflow: 		verify code, issue session, read and extend the profile
 */
package handler

import (
	"io"
	"net/http"
	"time"

	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/service"

	"github.com/gin-gonic/gin"
)

// 10 MB is plenty for a dictated entry
const maxAudioBytes = 10 << 20

type VerifyRequest struct {
	Code string `json:"code" binding:"required" example:"K7X2-9QPL"`
}

type VerifyResponse struct {
	Success   bool                 `json:"success" example:"true"`
	Token     string               `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time            `json:"expiresAt"`
	Profile   *service.ProfileView `json:"profile"`
}

type ProfileResponse struct {
	Success bool                 `json:"success" example:"true"`
	Profile *service.ProfileView `json:"profile"`
}

type SuggestionRequest struct {
	Category string `json:"category" binding:"required" example:"skills"`
	Content  string `json:"content" binding:"required" example:"Public speaking"`
	Source   string `json:"source" example:"user"`
}

type SuggestionResponse struct {
	Success           bool                     `json:"success" example:"true"`
	Entry             *models.ProfileEntry     `json:"entry,omitempty"`
	AdditionalProfile models.AdditionalProfile `json:"additionalProfile"`
}

// VerifyCode godoc
// @Summary      Verify access code
// @Description  Looks up the test record carrying the code and opens a session.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Param        request body handler.VerifyRequest true "access code"
// @Success      200 {object} handler.VerifyResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse "unknown code"
// @Failure      429 {object} handler.ErrorResponse "too many attempts"
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/verify [post]
func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code is required")
		return
	}

	view, err := h.portal.VerifyCode(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, expiresAt, err := h.issuer.Issue(view.ID, view.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, VerifyResponse{Success: true, Token: token, ExpiresAt: expiresAt, Profile: view})
}

// GetProfile godoc
// @Summary      Current profile
// @Description  Profile fields, decoded factor categories and additional entries of the session record.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.ProfileResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	view, err := h.portal.Profile(c.Request.Context(), recordID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Success: true, Profile: view})
}

// AddSuggestion godoc
// @Summary      Add profile entry
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.SuggestionRequest true "entry"
// @Success      200 {object} handler.SuggestionResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/profile/suggestions [post]
func (h *Handler) AddSuggestion(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "category and content are required")
		return
	}
	entry, additional, err := h.portal.AddEntry(c.Request.Context(), recordID(c), req.Category, req.Content, req.Source)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuggestionResponse{Success: true, Entry: &entry, AdditionalProfile: additional})
}

// AddVoiceSuggestion godoc
// @Summary      Add dictated profile entry
// @Description  Transcribes a WebM/Opus recording and stores it as an entry.
// @Tags         Profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        category formData string true "category"
// @Param        audio    formData file   true "recording"
// @Success      200 {object} handler.SuggestionResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/profile/suggestions/voice [post]
func (h *Handler) AddVoiceSuggestion(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		badRequest(c, "audio file is required")
		return
	}
	if file.Size > maxAudioBytes {
		badRequest(c, "audio file is too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		h.fail(c, err)
		return
	}

	entry, additional, err := h.portal.AddVoiceEntry(c.Request.Context(), recordID(c), c.PostForm("category"), audio)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuggestionResponse{Success: true, Entry: &entry, AdditionalProfile: additional})
}

// DeleteSuggestion godoc
// @Summary      Remove profile entry
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Param        category path string true "category"
// @Param        id       path string true "entry id"
// @Success      200 {object} handler.SuggestionResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/profile/suggestions/{category}/{id} [delete]
func (h *Handler) DeleteSuggestion(c *gin.Context) {
	additional, err := h.portal.RemoveEntry(c.Request.Context(), recordID(c), c.Param("category"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuggestionResponse{Success: true, AdditionalProfile: additional})
}
