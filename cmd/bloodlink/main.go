package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink/internal/config"
	"bloodlink/internal/database"
	httpapi "bloodlink/internal/http"
	"bloodlink/internal/logger"
	"bloodlink/internal/notify"
	"bloodlink/internal/repository"
	"bloodlink/internal/service"
	"bloodlink/internal/session"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "bloodlink")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	sessions := session.NewRedisStore(redisClient, cfg.Session.TTL)

	var (
		db            *sql.DB
		donorsRepo    repository.DonorsRepository
		requestsRepo  repository.RequestsRepository
		inventoryRepo repository.InventoryRepository
		donationsRepo repository.DonationsRepository
		adminsRepo    repository.AdminsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for bloodlink")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		donorsRepo = repository.NewPostgresDonorsRepo(db)
		requestsRepo = repository.NewPostgresRequestsRepo(db)
		inventoryRepo = repository.NewPostgresInventoryRepo(db)
		donationsRepo = repository.NewPostgresDonationsRepo(db)
		adminsRepo = repository.NewPostgresAdminsRepo(db)
	} else {
		// DB 未就绪：内存 repo 支持联测（数据不落盘）
		memDonors := repository.NewMemoryDonorsRepo()
		memInventory := repository.NewMemoryInventoryRepo()
		donorsRepo = memDonors
		requestsRepo = repository.NewMemoryRequestsRepo()
		inventoryRepo = memInventory
		donationsRepo = repository.NewMemoryDonationsRepo(memDonors, memInventory)
		adminsRepo = repository.NewMemoryAdminsRepo()
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, log)
	}

	authSvc := service.NewAuthService(donorsRepo, adminsRepo, sessions, log)
	donorSvc := service.NewDonorService(donorsRepo, inventoryRepo, log)
	requestSvc := service.NewRequestService(requestsRepo, notifier, log)
	inventorySvc := service.NewInventoryService(inventoryRepo, donorsRepo, log)
	donationSvc := service.NewDonationService(donationsRepo, donorsRepo, log)
	monitorSvc := service.NewMonitorService(requestsRepo, donorsRepo, inventoryRepo, log)
	reportSvc := service.NewReportService(inventoryRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterAPIRoutes(
		httpapi.NewAuthHandler(authSvc, log),
		httpapi.NewDonorHandler(donorSvc, donationSvc, authSvc, log),
		httpapi.NewRequestHandler(requestSvc, log),
		httpapi.NewMonitorHandler(monitorSvc, authSvc, log),
		httpapi.NewAdminHandler(donorSvc, requestSvc, inventorySvc, donationSvc, monitorSvc, reportSvc, authSvc, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
