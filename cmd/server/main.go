package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/api"
	"github.com/wuwenbin0122/fakeso/internal/auth"
	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/forum"
	"github.com/wuwenbin0122/fakeso/internal/messaging"
	"github.com/wuwenbin0122/fakeso/internal/notify"
	"github.com/wuwenbin0122/fakeso/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to build: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("mongo: failed to connect", zap.Error(err))
	}
	defer func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			logger.Warn("mongo: close error", zap.Error(err))
		}
	}()

	if err := mongoStore.EnsureCollections(ctx); err != nil {
		logger.Fatal("mongo: ensure collections", zap.Error(err))
	}

	hub := notify.NewHub(cfg.Socket, logger.Named("hub"))
	go hub.Run()

	publisher, relay := setupPublisher(ctx, cfg.Redis, hub, logger)

	users := auth.NewService(db.NewUserRepository(mongoStore), cfg.BcryptCost, logger.Named("auth"))
	messages := messaging.NewService(db.NewMessageRepository(mongoStore), publisher, logger.Named("messaging"))
	forumService := forum.NewService(forum.Stores{
		Questions: db.NewQuestionRepository(mongoStore),
		Answers:   db.NewAnswerRepository(mongoStore),
		Comments:  db.NewCommentRepository(mongoStore),
		Tags:      db.NewTagRepository(mongoStore),
	}, publisher, logger.Named("forum"))

	router := setupRouter(cfg, logger)
	api.NewHandler(users, messages, forumService, hub, logger.Named("api")).RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if relay != nil {
		relay.Wait()
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Warn("hub shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

// setupPublisher returns the hub itself, or a Redis relay in front of it when Redis
// is configured and reachable.
func setupPublisher(ctx context.Context, cfg utils.RedisConfig, hub *notify.Hub, logger *zap.Logger) (notify.Publisher, *notify.RedisRelay) {
	if !cfg.Enabled() {
		return hub, nil
	}

	client, err := notify.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable; events stay local", zap.String("addr", cfg.Addr), zap.Error(err))
		return hub, nil
	}
	context.AfterFunc(ctx, func() { _ = client.Close() })

	relay := notify.NewRedisRelay(client, cfg.Channel, hub, logger.Named("relay"))
	go func() {
		if err := relay.Run(ctx); err != nil {
			logger.Error("redis relay stopped; events are delivered locally", zap.Error(err))
		}
	}()

	return relay, relay
}

func setupRouter(cfg *utils.Config, logger *zap.Logger) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(logger.Named("http"))
}
