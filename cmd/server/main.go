// Command server runs the docproof API: wallet challenge authentication,
// organization KYC review, credential issuance and the artifact gateway
// facade.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docproof/internal/artifact"
	artifacthandler "docproof/internal/artifact/handler"
	"docproof/internal/audit"
	"docproof/internal/auth"
	authhandler "docproof/internal/auth/handler"
	authmetrics "docproof/internal/auth/metrics"
	"docproof/internal/document"
	dochandler "docproof/internal/document/handler"
	docmetrics "docproof/internal/document/metrics"
	"docproof/internal/organization"
	orghandler "docproof/internal/organization/handler"
	orgmetrics "docproof/internal/organization/metrics"
	"docproof/internal/platform/config"
	"docproof/internal/platform/httpserver"
	"docproof/internal/platform/logger"
	"docproof/internal/platform/metrics"
	platformpg "docproof/internal/platform/postgres"
	platformredis "docproof/internal/platform/redis"
	"docproof/internal/ratelimit"
	httptransport "docproof/internal/transport/http"
	"docproof/internal/verifier"
	verifierhandler "docproof/internal/verifier/handler"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	health := map[string]httptransport.HealthCheck{}

	// Stores: Postgres when configured, in-memory otherwise so local runs
	// need no infrastructure.
	var (
		orgStore      organization.Store
		verifierStore verifier.Store
		docStore      document.Store
		auditStore    audit.Store
	)
	if cfg.PostgresURL != "" {
		db, err := platformpg.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		orgStore = organization.NewPostgresStore(db)
		verifierStore = verifier.NewPostgresStore(db)
		docStore = document.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		health["postgres"] = db.PingContext
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		orgStore = organization.NewInMemoryStore()
		verifierStore = verifier.NewInMemoryStore()
		docStore = document.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
	}

	// Audit trail: synchronous store write, best-effort Kafka fan-out.
	auditOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithAsyncBuffer(256),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	auditor := audit.NewPublisher(auditStore, auditOpts...)
	defer auditor.Close()

	var counterStore ratelimit.CounterStore
	if redisClient != nil {
		counterStore = ratelimit.NewRedisCounterStore(redisClient)
	} else {
		counterStore = ratelimit.NewInMemoryCounterStore()
	}
	lockout := ratelimit.NewAuthLockout(counterStore, cfg.Lockout.Threshold, cfg.Lockout.Window)

	tokens := auth.NewTokenIssuer(cfg.JWTSigningKey, cfg.SessionTTL)

	var gateway artifact.Gateway
	if cfg.Gateway.BaseURL != "" {
		gateway = artifact.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.Token)
	} else {
		log.Warn("ARTIFACT_GATEWAY_URL not set, using in-memory gateway")
		gateway = artifact.NewInMemoryGateway()
	}
	artifactOpts := []artifact.ServiceOption{}
	if redisClient != nil {
		artifactOpts = append(artifactOpts, artifact.WithLinkCache(artifact.NewRedisLinkCache(redisClient)))
	}
	artifactSvc := artifact.NewService(gateway, artifactOpts...)

	orgSvc := organization.NewService(orgStore, auditor,
		organization.WithMetrics(orgmetrics.New()))
	authSvc := auth.NewService(orgStore, tokens, auditor,
		auth.WithLockout(lockout),
		auth.WithMetrics(authmetrics.New()))
	verifierSvc := verifier.NewService(verifierStore, tokens, auditor)
	docSvc := document.NewService(docStore, orgStore, verifierStore, auditor,
		document.WithMetrics(docmetrics.New()))

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Metrics:      metrics.New(),
		Sessions:     tokens,
		OwnerWallet:  cfg.OwnerWallet,
		Auth:         authhandler.New(authSvc, log),
		Organization: orghandler.New(orgSvc, artifactSvc, log),
		Verifier:     verifierhandler.New(verifierSvc, log),
		Document:     dochandler.New(docSvc, log),
		Artifact:     artifacthandler.New(artifactSvc, log),
		Identity:     httptransport.NewIdentityHandler(orgStore, verifierStore),
		HealthChecks: health,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
