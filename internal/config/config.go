package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Orders    OrdersConfig
	Tx        TxConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver string
}

type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	FixturesTTL time.Duration
	IdemLockTTL time.Duration
	IdemTTL     time.Duration
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN builds the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type OrdersConfig struct {
	EnforceZoneCapacity bool
}

type TxConfig struct {
	MaxAttempts int
}

type RateLimitConfig struct {
	OrdersPerWindow int
	Window          time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := envInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: envString("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	storeCfg := StoreConfig{Driver: envString("STORE_DRIVER", StoreDriverPostgres)}
	if storeCfg.Driver != StoreDriverPostgres && storeCfg.Driver != StoreDriverMemory {
		return nil, fmt.Errorf("%s: invalid STORE_DRIVER %q", op, storeCfg.Driver)
	}

	postgresPort, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresMaxConns, err := envInt("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     envString("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  envString("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(postgresMaxConns),
	}

	if storeCfg.Driver == StoreDriverPostgres {
		if postgresCfg.User == "" {
			return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
		}

		if postgresCfg.Password == "" {
			return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
		}

		if postgresCfg.Name == "" {
			return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
		}
	}

	redisEnabled, err := envBool("REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fixturesTTL, err := envDuration("CACHE_FIXTURES_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idemLockTTL, err := envDuration("IDEMPOTENCY_LOCK_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idemTTL, err := envDuration("IDEMPOTENCY_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Enabled:     redisEnabled,
		Addr:        envString("REDIS_ADDR", "localhost:6380"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          redisDB,
		FixturesTTL: fixturesTTL,
		IdemLockTTL: idemLockTTL,
		IdemTTL:     idemTTL,
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}

	tokenTTL, err := envDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	enforceCapacity, err := envBool("ENFORCE_ZONE_CAPACITY", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	txMaxAttempts, err := envInt("TX_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if txMaxAttempts < 1 {
		return nil, fmt.Errorf("%s: TX_MAX_ATTEMPTS must be at least 1", op)
	}

	ordersPerWindow, err := envInt("RATE_LIMIT_ORDERS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateWindow, err := envDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Store:     storeCfg,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Auth:      AuthConfig{JWTSecret: jwtSecret, TokenTTL: tokenTTL},
		Orders:    OrdersConfig{EnforceZoneCapacity: enforceCapacity},
		Tx:        TxConfig{MaxAttempts: txMaxAttempts},
		RateLimit: RateLimitConfig{OrdersPerWindow: ordersPerWindow, Window: rateWindow},
	}, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}
