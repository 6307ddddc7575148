package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	server "github.com/mambasports/team-service/cmd"
	"github.com/mambasports/team-service/internal/utils"
	"github.com/mambasports/team-service/pkg/mail"
	"go.uber.org/zap"
)

func main() {
	cfg, err := server.InitConfig()
	if err != nil {
		log.Fatalf("❌ Failed to initialize configuration: %v", err)
	}

	logger, err := server.InitLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, redisCache, err := server.SetupDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to setup database", zap.Error(err))
	}
	defer db.Close()
	defer redisCache.Close()

	srv, err := server.NewServer(server.Dependencies{
		Config: cfg,
		Log:    logger,
		DB:     db,
		Redis:  redisCache,
		Mailer: mail.NewMailerService(cfg, logger),
	})
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}
	srv.StartWorkers(ctx)

	portHost := utils.GetListenAddress(cfg, logger)
	logger.Info("🚀 team service listening", zap.String("addr", portHost), zap.String("config", srv.Describe()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.App.Listen(portHost); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
