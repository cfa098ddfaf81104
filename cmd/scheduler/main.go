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
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/segyhp/circulation-engine/internal/calendar"
	"github.com/segyhp/circulation-engine/internal/config"
	"github.com/segyhp/circulation-engine/internal/handler"
	"github.com/segyhp/circulation-engine/internal/metrics"
	"github.com/segyhp/circulation-engine/internal/repository"
	"github.com/segyhp/circulation-engine/internal/service"
	"golang.org/x/sync/errgroup"
)

type jobs struct {
	anonymization *service.AnonymizationService
	fees          *service.FeeService
}

func main() {
	log.Println("Starting circulation scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsDevelopment() {
		log.Printf("Retention window %s to %s, anonymization %q, fee assessment %q (%s)",
			cfg.Retention.Min, cfg.Retention.Max, cfg.Scheduler.AnonymizationSpec, cfg.Scheduler.FeeAssessmentSpec, cfg.Scheduler.Timezone)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.CacheTTL > 0 {
		redisClient = initRedis(cfg)
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	patronRepo := repository.NewCachedPatronRepository(repository.NewPatronRepository(db), redisClient, cfg.Redis.CacheTTL)
	policyRepo := repository.NewFeePolicyRepository(db)
	libraryCalendar := calendar.NewCalendar(repository.NewLibraryRepository(db))

	// Initialize services
	retentionService, err := service.NewRetentionService(
		loanRepo,
		transactionRepo,
		patronRepo,
		cfg.RetentionPolicy(),
		cfg.Retention.DefaultKeepHistory,
		cfg.Retention.PageSize,
	)
	if err != nil {
		log.Fatalf("Failed to initialize retention service: %v", err)
	}
	j := jobs{
		anonymization: service.NewAnonymizationService(loanRepo, retentionService, m),
		fees:          service.NewFeeService(loanRepo, policyRepo, transactionRepo, libraryCalendar, m, cfg.Retention.PageSize),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newCron(ctx, cfg, j)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Operational server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		c.Start()
		log.Println("Scheduler started successfully")

		<-gctx.Done()
		log.Println("Shutting down scheduler...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Wait for running jobs before closing the listener.
		select {
		case <-c.Stop().Done():
		case <-shutdownCtx.Done():
			log.Println("Scheduler stop timed out with jobs still running")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Scheduler exited with error: %v", err)
		os.Exit(1)
	}
	log.Println("Scheduler stopped")
}

func newCron(ctx context.Context, cfg *config.Config, j jobs) (*cron.Cron, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	// Anonymize concluded loans past their retention
	if _, err := c.AddFunc(cfg.Scheduler.AnonymizationSpec, func() {
		log.Println("Running loan anonymization job...")
		if _, err := j.anonymization.Run(ctx, time.Now()); err != nil {
			log.Printf("Loan anonymization job failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	// Charge overdue fees for loans past their due date
	if _, err := c.AddFunc(cfg.Scheduler.FeeAssessmentSpec, func() {
		log.Println("Running overdue fee assessment job...")
		if _, err := j.fees.AssessOverdue(ctx, time.Now()); err != nil {
			log.Printf("Overdue fee assessment job failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	log.Println("Cron jobs scheduled successfully")
	return c, nil
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
