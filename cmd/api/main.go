// @title                      Career Results Portal API
// @version                    1.0
// @description                Access-code portal for personality results, AI career features and token payments.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "CareerPortal_ResultsProject/docs"
	"CareerPortal_ResultsProject/internal/auth"
	"CareerPortal_ResultsProject/internal/config"
	"CareerPortal_ResultsProject/internal/handler"
	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/llm"
	"CareerPortal_ResultsProject/internal/logger"
	"CareerPortal_ResultsProject/internal/middleware"
	"CareerPortal_ResultsProject/internal/payment"
	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/service"
	"CareerPortal_ResultsProject/internal/settings"
	"CareerPortal_ResultsProject/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.SQLite.Path)
	if err != nil {
		zl.Fatal("main(): failed to open database", zap.String("path", cfg.SQLite.Path), zap.Error(err))
	}
	defer db.Close()

	var profiles storage.ProfileStore
	switch cfg.Store.Backend {
	case "airtable":
		profiles = storage.NewAirtableProfiles(cfg.Airtable.APIKey, cfg.Airtable.BaseID, cfg.Airtable.Table)
	default:
		profiles = db.Profiles()
	}
	zl.Info("main(): record store ready", zap.String("backend", cfg.Store.Backend))

	var locker ledger.Locker = ledger.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("main(): redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		locker = ledger.NewRedisLocker(rdb, cfg.Redis.LockTTL, zl)
		zl.Info("main(): using redis balance locks", zap.String("addr", cfg.Redis.Addr))
	}

	catalog, err := prompt.DefaultCatalog()
	if err != nil {
		zl.Fatal("main(): failed to load prompt catalog", zap.Error(err))
	}

	runtime := settings.NewRuntime(cfg.Ledger.TestMode)
	tokens := ledger.New(profiles, locker, runtime, zl)

	deps := service.Deps{
		Profiles:       profiles,
		Ledger:         tokens,
		History:        db,
		Catalog:        catalog,
		Chat:           llm.NewChatClient(cfg.LLM),
		Locker:         locker,
		PlaceholderURL: cfg.Image.PlaceholderURL,
		NarrationCost:  cfg.Ledger.NarrationCost,
		Log:            zl,
	}
	if cfg.Image.Enabled() {
		deps.Images = llm.NewImageClient(cfg.Image, zl)
	} else {
		zl.Warn("main(): IMAGE_BASE_URL or IMAGE_API_KEY not set, image features serve the placeholder")
	}
	// voice input and narration are optional
	if stt, err := llm.NewTranscriber(ctx, cfg.Google, zl); err != nil {
		zl.Warn("main(): speech-to-text disabled", zap.Error(err))
	} else {
		defer stt.Close()
		deps.Transcriber = stt
	}
	if tts, err := llm.NewNarrator(ctx, cfg.Google, zl); err != nil {
		zl.Warn("main(): text-to-speech disabled", zap.Error(err))
	} else {
		defer tts.Close()
		deps.Narrator = tts
	}
	portal := service.NewPortal(deps)

	payments := payment.NewService(payment.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret), db, tokens, cfg.Stripe.Currency, zl)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	router := gin.New()
	router.Use(middleware.RequestLogger(zl), middleware.Recovery(zl))

	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Admin-Key")
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, "X-Token-Balance", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	handler.New(portal, payments, runtime, issuer, zl).Register(router, handler.Guards{
		Session:     middleware.AuthMiddleware(issuer),
		Admin:       middleware.AdminKeyMiddleware(cfg.Auth.AdminKeyHash, zl),
		VerifyLimit: middleware.RateLimitByIP(cfg.HTTP.VerifyRate, cfg.HTTP.VerifyBurst),
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("main(): listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("main(): server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("main(): shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("main(): graceful shutdown failed", zap.Error(err))
	}
}
