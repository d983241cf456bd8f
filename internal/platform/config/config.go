// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// via env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all server level configuration.
type Config struct {
	Addr          string
	JWTSigningKey string

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	Quota    QuotaConfig
	Leads    LeadConfig
	RFQ      RFQConfig
	Registry RegistryConfig
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis
// and the quota ledger falls back to the Postgres or memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit topic settings. Empty brokers disable the Kafka
// audit publisher; events then go to the log sink only.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// QuotaConfig controls the unverified-buyer lead cap.
// A zero Window means the cap is a lifetime counter; a non-zero Window makes
// it rolling. Product intent is unconfirmed, so both are supported.
type QuotaConfig struct {
	UnverifiedLeadLimit int
	Window              time.Duration
}

// LeadConfig controls lead lifecycle rules.
type LeadConfig struct {
	// TTL is the visible lifetime of an open lead; past it the lead reads as
	// expired and drops out of default seller listings.
	TTL time.Duration
}

// RFQConfig controls RFQ lifecycle rules.
type RFQConfig struct {
	// PendingTTL is how long a pending RFQ stays quotable before it reads as
	// expired.
	PendingTTL time.Duration
	// AnchorLimit caps how many active products are fetched per category when
	// resolving fanout anchors.
	AnchorLimit int
}

// RegistryConfig controls the RDAP domain-age lookups.
type RegistryConfig struct {
	BaseURL string
	Timeout time.Duration
	// MinDomainAge is the registration age a claimed domain must exceed for
	// buyer verification.
	MinDomainAge time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envString("TRADEGATE_ADDR", ":8080"),
		JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("KAFKA_AUDIT_TOPIC", "tradegate.audit"),
		},
		Quota: QuotaConfig{
			UnverifiedLeadLimit: envInt("QUOTA_UNVERIFIED_LEAD_LIMIT", 3),
			Window:              envDuration("QUOTA_WINDOW", 0),
		},
		Leads: LeadConfig{
			TTL: envDuration("LEAD_TTL", 48*time.Hour),
		},
		RFQ: RFQConfig{
			PendingTTL:  envDuration("RFQ_PENDING_TTL", 7*24*time.Hour),
			AnchorLimit: envInt("RFQ_ANCHOR_LIMIT", 1),
		},
		Registry: RegistryConfig{
			BaseURL:      envString("RDAP_BASE_URL", "https://rdap.org"),
			Timeout:      envDuration("RDAP_TIMEOUT", 5*time.Second),
			MinDomainAge: envDuration("VERIFICATION_MIN_DOMAIN_AGE", 4383*time.Hour), // half a year
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
