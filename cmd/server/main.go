// Command server runs the opsledger HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"opsledger/internal/audit"
	audithandler "opsledger/internal/audit/handler"
	auditkafka "opsledger/internal/audit/kafka"
	auditpostgres "opsledger/internal/audit/store/postgres"
	dashboardhandler "opsledger/internal/dashboard/handler"
	dashboardservice "opsledger/internal/dashboard/service"
	expensehandler "opsledger/internal/expense/handler"
	expensemetrics "opsledger/internal/expense/metrics"
	expenseservice "opsledger/internal/expense/service"
	expensestore "opsledger/internal/expense/store"
	httpapi "opsledger/internal/http"
	identityhandler "opsledger/internal/identity/handler"
	identitymetrics "opsledger/internal/identity/metrics"
	"opsledger/internal/identity/rolecache"
	identityservice "opsledger/internal/identity/service"
	identitystore "opsledger/internal/identity/store"
	incomehandler "opsledger/internal/income/handler"
	incomemetrics "opsledger/internal/income/metrics"
	incomeservice "opsledger/internal/income/service"
	incomestore "opsledger/internal/income/store"
	"opsledger/internal/jwttoken"
	"opsledger/internal/platform/config"
	"opsledger/internal/platform/httpserver"
	"opsledger/internal/platform/logger"
	platformmetrics "opsledger/internal/platform/metrics"
	"opsledger/internal/platform/redis"
	workerhandler "opsledger/internal/worker/handler"
	workermetrics "opsledger/internal/worker/metrics"
	workerservice "opsledger/internal/worker/service"
	workerstore "opsledger/internal/worker/store"
)

const (
	tokenTTL        = 24 * time.Hour
	auditBufferSize = 256
	shutdownGrace   = 10 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit trail: postgres store, optional Kafka mirror, async writer.
	auditOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithAsyncBuffer(auditBufferSize),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.NewSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Error("failed to start audit kafka sink", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	recorder := audit.NewRecorder(auditpostgres.New(db), auditOpts...)
	defer recorder.Close()

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "opsledger", "opsledger")

	identityStore := identitystore.NewPostgres(db)
	identityOpts := []identityservice.Option{
		identityservice.WithLogger(log),
		identityservice.WithTokenTTL(tokenTTL),
		identityservice.WithMetrics(identitymetrics.New()),
	}
	if redisClient != nil {
		identityOpts = append(identityOpts,
			identityservice.WithRoleCache(rolecache.New(redisClient, cfg.RoleCacheTTL)))
	}
	identitySvc := identityservice.New(identityStore, identityStore, tokens, identityOpts...)

	workers := workerstore.NewPostgres(db)
	income := incomestore.NewPostgres(db)
	expenses := expensestore.NewPostgres(db)

	workerSvc := workerservice.New(workers,
		workerservice.WithLogger(log),
		workerservice.WithAuditRecorder(recorder),
		workerservice.WithMetrics(workermetrics.New()),
	)
	incomeSvc := incomeservice.New(income, workers,
		incomeservice.WithLogger(log),
		incomeservice.WithAuditRecorder(recorder),
		incomeservice.WithMetrics(incomemetrics.New()),
	)
	expenseSvc := expenseservice.New(expenses, workers,
		expenseservice.WithLogger(log),
		expenseservice.WithAuditRecorder(recorder),
		expenseservice.WithMetrics(expensemetrics.New()),
	)
	dashboardSvc := dashboardservice.New(workers, income, expenses,
		dashboardservice.WithLogger(log),
	)

	router := httpapi.NewRouter(httpapi.Handlers{
		Identity:  identityhandler.New(identitySvc, tokenTTL, log),
		Worker:    workerhandler.New(workerSvc, log),
		Income:    incomehandler.New(incomeSvc, log),
		Expense:   expensehandler.New(expenseSvc, log),
		Dashboard: dashboardhandler.New(dashboardSvc, log),
		Audit:     audithandler.New(recorder, log),
	}, httpapi.Deps{
		Logger:       log,
		Metrics:      platformmetrics.New(),
		JWTValidator: tokens,
		RoleResolver: identitySvc,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting opsledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
