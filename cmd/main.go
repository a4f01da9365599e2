package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/satyam-kanaujiya/watchtube/internal/auth"
	"github.com/satyam-kanaujiya/watchtube/internal/cache"
	"github.com/satyam-kanaujiya/watchtube/internal/config"
	"github.com/satyam-kanaujiya/watchtube/internal/events"
	"github.com/satyam-kanaujiya/watchtube/internal/handlers"
	"github.com/satyam-kanaujiya/watchtube/internal/repository"
	service "github.com/satyam-kanaujiya/watchtube/internal/services"
	"github.com/satyam-kanaujiya/watchtube/internal/staging"
	"github.com/satyam-kanaujiya/watchtube/internal/storage"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

func main() {
	// load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	// logger
	logger, err := utils.NewLogger(dev, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	col := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	repo := repository.NewMongoVideoRepo(col)

	// S3 store
	store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.S3.PublicRead)
	if err != nil {
		logger.Fatalf("s3 init: %v", err)
	}

	// staging dir for multipart spool files
	stagingStore, err := staging.NewStore(cfg.Staging.Dir)
	if err != nil {
		logger.Fatalf("staging init: %v", err)
	}

	// redis cache for signed URLs (optional)
	var urlCache service.Cache
	var redisClient *cache.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("redis init: %v", err)
		}
		urlCache = redisClient
	}

	// kafka publisher (optional)
	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// services
	publishSvc := service.NewPublishService(repo, store, publisher, logger)
	mediaSvc := service.NewMediaService(repo, store, urlCache, cfg.PresignTTL, logger)
	discoverySvc := service.NewDiscoveryService(repo)

	// JWT verifier
	verifier, err := auth.NewJWTVerifier(cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    utils.MaxVideoSize + utils.MaxImageSize,
	})
	h := handlers.NewHandler(verifier, publishSvc, mediaSvc, discoverySvc, stagingStore, logger)
	h.Register(app)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting video service on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = mc.Disconnect(timeoutCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = publisher.Close()
	logger.Info("shutdown completed")
}
