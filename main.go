package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/config"
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/routers"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	"github.com/Sean-Brix/RiderMind-sub003/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	db, err := database.ConnectDb(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locker, closeLocker, err := database.NewLocker(ctx, cfg)
	if err != nil {
		log.Fatal("group locker unavailable", "provider", cfg.LockProvider, "error", err)
	}
	defer closeLocker()
	log.Info("group locks ready", "provider", cfg.LockProvider)

	store := database.NewStore(db, locker, log)
	seq := sequencer.New(log)
	tracker := progress.New(store, log)
	g := graph.New(store, seq, tracker, log)
	ops := lifecycle.New(store, g, seq, tracker, log, cfg.BulkTimeout)

	scheduler, err := utils.InitializeIntegrityScheduler(cfg.IntegrityCron, cfg.IntegrityAutoRepair, ops, log)
	if err != nil {
		log.Fatal("invalid INTEGRITY_CRON", "spec", cfg.IntegrityCron, "error", err)
	}

	app := routers.NewApp(controllers.New(g, ops, tracker, log), routers.Options{
		DevEndpoints: cfg.DevEndpoints,
		AccessLog:    true,
	})

	go func() {
		log.Info("Server is running", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
