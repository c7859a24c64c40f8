package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kudos/backend/internal/config"
	"kudos/backend/internal/httpserver"
	"kudos/backend/internal/infrastructure/password"
	"kudos/backend/internal/infrastructure/postgres"
	"kudos/backend/internal/infrastructure/storage"
	"kudos/backend/internal/infrastructure/token"
	"kudos/backend/internal/logging"
	"kudos/backend/internal/session"
	authusecase "kudos/backend/internal/usecase/auth"
	kudosusecase "kudos/backend/internal/usecase/kudos"
	profileusecase "kudos/backend/internal/usecase/profile"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	tokenManager, err := token.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}
	sessions, err := session.NewStore(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.Secure)
	if err != nil {
		logger.Fatal("failed to init session store", zap.Error(err))
	}

	var pictures profileusecase.PictureStore
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3PictureStore(rootCtx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init picture storage", zap.Error(err))
		}
		pictures = store
	} else {
		logger.Warn("S3_BUCKET not set, profile picture uploads are disabled")
	}

	userRepo := postgres.NewUserRepository(db.SQL)
	profileRepo := postgres.NewProfileRepository(db.SQL)
	kudosRepo := postgres.NewKudosRepository(db.SQL)

	server := httpserver.NewServer(cfg, httpserver.Deps{
		DB:       db,
		Auth:     authusecase.NewService(userRepo, password.NewArgon2Hasher(), tokenManager),
		Profiles: profileusecase.NewService(profileRepo, pictures, cfg.UploadMaxBytes),
		Kudos:    kudosusecase.NewService(kudosRepo, profileRepo),
		Sessions: sessions,
		Logger:   logger,
	})
	logger.Info("HTTP server listening", zap.String("addr", server.Addr()))

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("graceful shutdown completed")
	}
}
