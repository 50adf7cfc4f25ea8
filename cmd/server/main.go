package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/api"
	"github.com/example/rentalhub/internal/config"
	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/crypto"
	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/firebase"
	"github.com/example/rentalhub/internal/logging"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/payments"
	"github.com/example/rentalhub/internal/places"
	"github.com/example/rentalhub/internal/session"
	"github.com/example/rentalhub/internal/storage"
	"github.com/example/rentalhub/pkg/cache"
	"github.com/example/rentalhub/pkg/messagequeue"
)

func main() {
	// In production, environment variables are set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: no .env file loaded:", err)
		}
	}

	// --- 1. Configuration and logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}
	zapLogger, err := logging.New(appConfig.IsRelease())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 2. Firebase (Firestore, Auth, Storage) ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	clients, err := firebase.Init(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	// --- 3. Optional infrastructure: cache and message queue ---
	var appCache cache.Cache = cache.Noop{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable; running without cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			appCache = redisCache
			zapLogger.Info("Redis cache connected", zap.String("addr", appConfig.RedisAddr))
		}
	}

	var mq messagequeue.MessageQueue = messagequeue.Noop{}
	if appConfig.RabbitMQURL != "" {
		rabbit, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; payment receipts disabled", zap.Error(err))
		} else {
			defer rabbit.Close()
			mq = rabbit
		}
	}

	// --- 4. Collaborators ---
	key, err := crypto.DecodeKey(appConfig.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid encryption key", zap.Error(err))
	}
	phoneCipher, err := crypto.NewPhoneCipher(key)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create phone cipher", zap.Error(err))
	}
	placesClient, err := places.NewGoogleClient(appConfig.GoogleMapsAPIKey, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create Google Maps client", zap.Error(err))
	}
	bucket := storage.NewFirebaseBucket(clients.Bucket, clients.BucketName)
	recorder := metrics.New()

	// --- 5. Repositories and services ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	listingRepo := db.NewFirestoreListingRepository(clients.Firestore)
	txnRepo := db.NewFirestoreTransactionRepository(clients.Firestore)

	accountService := core.NewAccountService(userRepo, appCache, appConfig.CacheTTL, recorder, zapLogger)
	listingService := core.NewListingService(listingRepo, userRepo, bucket, placesClient, appCache, appConfig.CacheTTL, recorder, zapLogger)
	paymentService := core.NewPaymentService(txnRepo, userRepo, accountService, payments.MockVerifier{Delay: 500 * time.Millisecond},
		phoneCipher, mq, core.PaymentConfig{Amount: appConfig.PaymentAmount, Queue: appConfig.RabbitMQQueue}, recorder, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Session: the one place identity changes are observed ---
	sessions := session.NewProvider(clients.Auth, zapLogger)
	unsubscribe := sessions.OnIdentityChange(func(uid string, identity *models.Identity) {
		accountService.InvalidateAccount(context.Background(), uid)
		if identity == nil {
			zapLogger.Info("User signed out", zap.String("userID", uid))
		}
	})
	defer unsubscribe()

	// --- 7. Gin engine and middleware ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.Metrics(recorder))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))

	authMW := middleware.NewAuthMiddleware(sessions, accountService, zapLogger)
	paymentLimiter := middleware.NewRateLimiter(appConfig.PaymentRatePerMinute, zapLogger)

	api.SetupRoutes(router, zapLogger, authMW, paymentLimiter, sessions,
		api.Services{Accounts: accountService, Listings: listingService, Payments: paymentService}, recorder)

	// --- 8. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				paymentLimiter.Cleanup()
			}
		}
	}()

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
