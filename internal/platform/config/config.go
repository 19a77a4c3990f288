package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration. Every privileged constant
// (owner wallet included) is injected here, never embedded in logic.
type Server struct {
	Addr          string
	JWTSigningKey string
	SessionTTL    time.Duration
	OwnerWallet   string

	PostgresURL  string
	Redis        RedisConfig
	KafkaBrokers []string
	AuditTopic   string

	Gateway GatewayConfig
	Lockout LockoutConfig
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GatewayConfig points at the content-addressed artifact gateway.
type GatewayConfig struct {
	BaseURL string
	Token   string
}

// LockoutConfig bounds failed wallet authentication attempts.
type LockoutConfig struct {
	Threshold int
	Window    time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("DOCPROOF_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:    envDuration("SESSION_TTL", time.Hour),
		OwnerWallet:   strings.ToLower(os.Getenv("OWNER_WALLET")),
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		AuditTopic:    envOr("AUDIT_TOPIC", "docproof.audit"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL: os.Getenv("ARTIFACT_GATEWAY_URL"),
			Token:   os.Getenv("ARTIFACT_GATEWAY_TOKEN"),
		},
		Lockout: LockoutConfig{
			Threshold: envInt("AUTH_LOCKOUT_THRESHOLD", 5),
			Window:    envDuration("AUTH_LOCKOUT_WINDOW", 10*time.Minute),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
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
