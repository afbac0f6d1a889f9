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

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/config"
	"github.com/p2pdao/lending-dao/internal/dao"
	"github.com/p2pdao/lending-dao/internal/domain"
	"github.com/p2pdao/lending-dao/internal/handler"
	"github.com/p2pdao/lending-dao/internal/repository"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Wire the state machine
	store := repository.NewPostgresStore(db)
	gateway := repository.NewLedgerGateway(db)
	publisher := repository.NewRedisPublisher(redisClient)

	d := dao.New(store, gateway, publisher, policyDefaults(cfg))
	if err := d.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}

	daoHandler := handler.NewDAOHandler(d)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := handler.Routes(daoHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		return redis.NewClient(opts)
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
	})
}

// policyDefaults seeds the lending policy for a fresh database; a persisted
// policy loaded from the store takes precedence.
func policyDefaults(cfg *config.Config) *domain.LoanPolicy {
	fee, err := decimal.NewFromString(cfg.Policy.MembershipFee)
	if err != nil {
		log.Fatalf("Invalid POLICY_MEMBERSHIP_FEE: %v", err)
	}
	return &domain.LoanPolicy{
		ConsensusThresholdBps: cfg.Policy.ConsensusThresholdBps,
		MembershipFee:         fee,
		MinMembershipDuration: cfg.GetMinMembershipDuration(),
		MaxLoanDurationDays:   cfg.Policy.MaxLoanDurationDays,
		MinInterestRateBps:    cfg.Policy.MinInterestRateBps,
		MaxInterestRateBps:    cfg.Policy.MaxInterestRateBps,
		CooldownPeriod:        cfg.GetCooldownPeriod(),
		MaxLoanRatioBps:       cfg.Policy.MaxLoanRatioBps,
	}
}
