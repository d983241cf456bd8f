// main wires the stores, services, and HTTP surface, then owns the server
// lifecycle. Business logic lives in the internal domain packages.
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

	"tradegate/internal/audit"
	"tradegate/internal/buyer"
	"tradegate/internal/catalog"
	"tradegate/internal/entitlement"
	"tradegate/internal/jwttoken"
	leadhandler "tradegate/internal/lead/handler"
	leadmetrics "tradegate/internal/lead/metrics"
	"tradegate/internal/lead/quota"
	leadservice "tradegate/internal/lead/service"
	leadstore "tradegate/internal/lead/store"
	"tradegate/internal/membership"
	"tradegate/internal/platform/config"
	"tradegate/internal/platform/httpserver"
	"tradegate/internal/platform/kafka"
	"tradegate/internal/platform/logger"
	"tradegate/internal/platform/middleware"
	"tradegate/internal/platform/postgres"
	platformredis "tradegate/internal/platform/redis"
	rfqhandler "tradegate/internal/rfq/handler"
	rfqmetrics "tradegate/internal/rfq/metrics"
	rfqservice "tradegate/internal/rfq/service"
	rfqstore "tradegate/internal/rfq/store"
	httptransport "tradegate/internal/transport/http"
	"tradegate/internal/verification"
	verificationhandler "tradegate/internal/verification/handler"
	verificationmetrics "tradegate/internal/verification/metrics"
	"tradegate/internal/verification/rdap"
)

const (
	jwtIssuer   = "tradegate"
	jwtAudience = "tradegate-api"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaClient, err := kafka.New(cfg.Kafka)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
	}

	var publisher audit.Publisher
	if kafkaClient != nil {
		publisher = audit.NewKafkaPublisher(kafkaClient, log)
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		buyers       buyer.Store
		plans        membership.Store
		catalogStore catalog.Store
		leads        leadstore.Store
		rfqs         rfqstore.Store
	)
	if db != nil {
		buyers = buyer.NewPostgresStore(db)
		plans = membership.NewPostgresStore(db)
		catalogStore = catalog.NewPostgresStore(db)
		leads = leadstore.NewPostgresStore(db)
		rfqs = rfqstore.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		buyers = buyer.NewInMemoryStore()
		plans = membership.NewInMemoryStore()
		catalogStore = catalog.NewInMemoryStore()
		leads = leadstore.NewInMemoryStore()
		rfqs = rfqstore.NewInMemoryStore()
	}

	quotaStore := quotaStoreFor(redisClient, db)
	quotaLedger, err := quota.New(quotaStore, cfg.Quota.UnverifiedLeadLimit, cfg.Quota.Window,
		quota.WithLogger(log),
		quota.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("quota ledger init failed", "error", err)
		os.Exit(1)
	}

	gate, err := entitlement.New(plans,
		entitlement.WithLogger(log),
		entitlement.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("entitlement gate init failed", "error", err)
		os.Exit(1)
	}

	leadSvc, err := leadservice.New(leads, buyers, catalogStore, quotaLedger, cfg.Leads.TTL,
		leadservice.WithLogger(log),
		leadservice.WithMetrics(leadmetrics.New()),
		leadservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("lead service init failed", "error", err)
		os.Exit(1)
	}

	rfqSvc, err := rfqservice.New(rfqs, buyers, catalogStore, gate, cfg.RFQ.AnchorLimit, cfg.RFQ.PendingTTL,
		rfqservice.WithLogger(log),
		rfqservice.WithMetrics(rfqmetrics.New()),
		rfqservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("rfq service init failed", "error", err)
		os.Exit(1)
	}

	oracle := rdap.New(cfg.Registry.BaseURL, cfg.Registry.Timeout)
	verificationSvc, err := verification.New(buyers, oracle, cfg.Registry.MinDomainAge,
		verification.WithLogger(log),
		verification.WithMetrics(verificationmetrics.New()),
		verification.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("verification service init failed", "error", err)
		os.Exit(1)
	}

	tokens := jwttoken.New(cfg.JWTSigningKey, jwtIssuer, jwtAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Lead:         leadhandler.New(leadSvc, plans, gate, log),
		RFQ:          rfqhandler.New(rfqSvc, plans, gate, log),
		Verification: verificationhandler.New(verificationSvc, log),
		Auth:         middleware.RequireAuth(tokens, log),
		Health:       healthReport(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting tradegate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// quotaStoreFor picks the quota backend: Redis for multi-instance, Postgres
// as the durable single-store option, memory for local runs.
func quotaStoreFor(redisClient *platformredis.Client, db *sql.DB) quota.Store {
	switch {
	case redisClient != nil:
		return quota.NewRedisStore(redisClient.Client)
	case db != nil:
		return quota.NewPostgresStore(db)
	default:
		return quota.NewInMemoryStore()
	}
}

func healthReport(db *sql.DB, redisClient *platformredis.Client) func() map[string]string {
	return func() map[string]string {
		report := map[string]string{"status": "ok"}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if db != nil {
			report["postgres"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				report["postgres"] = "unreachable"
				report["status"] = "degraded"
			}
		}
		if redisClient != nil {
			report["redis"] = "ok"
			if err := redisClient.Health(ctx); err != nil {
				report["redis"] = "unreachable"
				report["status"] = "degraded"
			}
		}
		return report
	}
}
