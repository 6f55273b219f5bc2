package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sabamas/arrears-engine/internal/config"
	"github.com/sabamas/arrears-engine/internal/handler"
	"github.com/sabamas/arrears-engine/internal/repository"
	"github.com/sabamas/arrears-engine/internal/service"
	"github.com/sabamas/arrears-engine/pkg/logger"
	"github.com/sabamas/arrears-engine/pkg/response"
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

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	tariffRepo := repository.NewTariffRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	depositRepo := repository.NewDepositRepository(db)

	// Initialize services
	cache := service.NewRedisCache(redisClient)
	arrearsService := service.NewArrearsService(customerRepo, tariffRepo, paymentRepo, cache, cfg, zlog)
	paymentService := service.NewPaymentService(customerRepo, paymentRepo, arrearsService, zlog)
	depositService := service.NewDepositService(paymentRepo, depositRepo, zlog)

	arrearsHandler := handler.NewArrearsHandler(arrearsService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	depositHandler := handler.NewDepositHandler(depositService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(arrearsHandler, paymentHandler, depositHandler, healthHandler, zlog)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	arrearsHandler *handler.ArrearsHandler,
	paymentHandler *handler.PaymentHandler,
	depositHandler *handler.DepositHandler,
	healthHandler *handler.HealthHandler,
	zlog *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(zlog))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/customers/{customerNumber}/arrears", arrearsHandler.GetCustomerArrears).Methods("GET")
	api.HandleFunc("/dashboard/summary", arrearsHandler.GetDashboardSummary).Methods("GET")
	api.HandleFunc("/payments", paymentHandler.CreatePayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/cancel", paymentHandler.CancelPayment).Methods("POST")
	api.HandleFunc("/deposits", depositHandler.CreateDeposit).Methods("POST")
	api.HandleFunc("/deposits/{depositId}/cancel", depositHandler.CancelDeposit).Methods("POST")

	return router
}
