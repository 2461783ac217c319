package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Jiffye-m/chatapp/internal/config"
	"github.com/Jiffye-m/chatapp/internal/database"
	"github.com/Jiffye-m/chatapp/internal/logging"
	"github.com/Jiffye-m/chatapp/internal/realtime"
	"github.com/Jiffye-m/chatapp/internal/router"
	"github.com/Jiffye-m/chatapp/internal/upload"

	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	up, err := upload.New(context.Background(), cfg.Upload)
	if err != nil {
		logger.Fatal("init uploader", zap.Error(err))
	}

	hub := realtime.NewHub(logger, nil)

	r := router.SetupRouter(cfg, db, hub, up, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("run server", zap.Error(err))
	}
}
