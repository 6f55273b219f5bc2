package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sabamas/arrears-engine/internal/config"
	"github.com/sabamas/arrears-engine/internal/repository"
	"github.com/sabamas/arrears-engine/internal/service"
	"github.com/sabamas/arrears-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	customerRepo := repository.NewCustomerRepository(db)
	tariffRepo := repository.NewTariffRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	depositRepo := repository.NewDepositRepository(db)

	cache := service.NewRedisCache(redisClient)
	arrearsService := service.NewArrearsService(customerRepo, tariffRepo, paymentRepo, cache, cfg, zlog)
	depositService := service.NewDepositService(paymentRepo, depositRepo, zlog)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		zlog.Fatal("Invalid scheduler timezone", zap.Error(err))
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, arrearsService, depositService, zlog)

	// Start the scheduler
	c.Start()
	zlog.Info("Scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	zlog.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, arrearsService *service.ArrearsService, depositService *service.DepositService, zlog *zap.Logger) {
	// Nightly rebuild of the dashboard arrears aggregates (midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		summary, err := arrearsService.RefreshDashboardSummary(ctx)
		if err != nil {
			zlog.Error("dashboard summary refresh failed", zap.Error(err))
			return
		}
		zlog.Info("dashboard summary refreshed",
			zap.String("totalArrears", summary.TotalArrears.String()),
			zap.Int("customersInArrears", summary.CustomersInArrears),
		)
	})
	if err != nil {
		zlog.Error("failed to schedule dashboard refresh job", zap.Error(err))
	}

	// Weekly reminder of cash payments still waiting to be deposited
	// (Sundays at 9 AM)
	_, err = c.AddFunc("0 0 9 * * SUN", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		payments, err := depositService.UndepositedCash(ctx)
		if err != nil {
			zlog.Error("undeposited cash check failed", zap.Error(err))
			return
		}
		if len(payments) > 0 {
			zlog.Warn("cash payments awaiting deposit", zap.Int("count", len(payments)))
		}
	})
	if err != nil {
		zlog.Error("failed to schedule deposit reminder job", zap.Error(err))
	}
}
