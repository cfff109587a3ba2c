package handler

import (
	"github.com/gin-gonic/gin"
)

// Guards are the middlewares protecting route groups.
type Guards struct {
	Session     gin.HandlerFunc
	Admin       gin.HandlerFunc
	VerifyLimit gin.HandlerFunc
}

// Register mounts every portal route on r.
func (h *Handler) Register(r gin.IRouter, g Guards) {
	r.POST("/api/verify", g.VerifyLimit, h.VerifyCode)
	r.GET("/api/features", h.ListFeatures)
	r.GET("/api/payments/packages", h.ListPackages)
	r.POST("/webhooks/stripe", h.StripeWebhook)

	protected := r.Group("/api", g.Session)
	{
		protected.GET("/profile", h.GetProfile)
		protected.POST("/profile/suggestions", h.AddSuggestion)
		protected.POST("/profile/suggestions/voice", h.AddVoiceSuggestion)
		protected.DELETE("/profile/suggestions/:category/:id", h.DeleteSuggestion)

		protected.POST("/features/:feature", h.GenerateFeature)
		protected.POST("/features/:feature/narrate", h.NarrateFeature)
		protected.GET("/history", h.GetHistory)

		protected.GET("/tokens", h.GetTokens)
		protected.POST("/tokens/deduct", h.DeductTokens)

		protected.POST("/payments/intent", h.CreatePaymentIntent)
		protected.POST("/payments/confirm", h.ConfirmPayment)
	}

	admin := r.Group("/admin", g.Admin)
	{
		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)
		admin.POST("/tokens/add", h.AdminAddTokens)
	}

	r.GET("/ws/generate", g.Session, h.GenerateStream)
}
