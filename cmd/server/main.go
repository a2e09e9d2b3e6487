package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chicktrack/c/internal/api"
	"chicktrack/c/internal/config"
	"chicktrack/c/internal/database"
	"chicktrack/c/internal/metrics"
	"chicktrack/c/internal/migrations"
	"chicktrack/c/internal/scheduler"
	"chicktrack/c/internal/seed"
	"chicktrack/c/internal/service"
	"chicktrack/c/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadChickStock(db, logger.Named(log, "seed"), cfg.StockCSVPath)

	m := metrics.New()
	svc := service.New(db, cfg.Rules, logger.Named(log, "service"), m)
	handler := api.New(db, svc, cfg.Secret, logger.Named(log, "api"), m)

	sched := scheduler.New(db, logger.Named(log, "scheduler"), cfg.FeedScanCron)
	sched.Start()
	defer sched.Stop()

	log.Info("chicktrack server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
