package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/shukrishariif/grocery-app/internal/auth"
	"github.com/shukrishariif/grocery-app/internal/cache"
	"github.com/shukrishariif/grocery-app/internal/config"
	h "github.com/shukrishariif/grocery-app/internal/http"
	"github.com/shukrishariif/grocery-app/internal/imagehost"
	"github.com/shukrishariif/grocery-app/internal/repository"
	"github.com/shukrishariif/grocery-app/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoDB.Client().Disconnect(ctx)
	logger.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI))

	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("redis ping succeeded")

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	orderRepo := repository.NewMongoOrderRepository(mongoDB)
	productRepo := repository.NewMongoProductRepository(mongoDB)
	categoryRepo := repository.NewMongoCategoryRepository(mongoDB)
	userRepo := repository.NewMongoUserRepository(mongoDB)
	contactRepo := repository.NewMongoContactRepository(mongoDB)

	cartCache := cache.NewRedisCache(redisClient)
	cartService := service.NewCartService(cartRepo, productRepo, cartCache, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, cartCache, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	uploader := imagehost.NewClient(cfg.ImageHostURL, cfg.ImageHostKey)

	router := h.NewRouter(h.RouterDeps{
		Auth:           h.NewAuthHandler(userRepo, tokens, cfg.RequestTimeout),
		Products:       h.NewProductHandler(productRepo, cfg.RequestTimeout),
		Categories:     h.NewCategoryHandler(categoryRepo, cfg.RequestTimeout),
		Cart:           h.NewCartHandler(cartService, cfg.RequestTimeout),
		Orders:         h.NewOrderHandler(orderService, cfg.RequestTimeout),
		Contact:        h.NewContactHandler(contactRepo, cfg.RequestTimeout),
		Uploads:        h.NewUploadHandler(uploader, cfg.RequestTimeout),
		Verifier:       tokens,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "grocery-app"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
