package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// 開発用の既定オペレーター
const devOperatorSeed = "cashier:1234:CASHIER,manager:9999:MANAGER"

// OperatorSeed is one entry of OPERATOR_SEED.
type OperatorSeed struct {
	Name string
	PIN  string
	Role model.Role
}

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	JWTSecret string        // JWT署名シークレット
	AccessTTL time.Duration // アクセストークンの有効期間

	StoreDriver string // memory / postgres
	DatabaseURL string // 空ならPOSTGRES_*から組み立てる

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	RedisAddr     string // 空ならメモリの冪等キャッシュ
	RedisPassword string
	RedisTLS      bool
	RabbitMQURL   string // 空ならイベントを発行しない

	PaymentDelay   time.Duration // モック決済の遅延
	PaymentTimeout time.Duration // 1回の決済の上限時間

	TaxRate           decimal.Decimal
	LowStockThreshold int64
	ArtistShare       decimal.Decimal

	Operators []OperatorSeed

	ShutdownTimeout time.Duration
}

func (c Config) IsDev() bool {
	return strings.EqualFold(c.GoEnv, "dev")
}

// Addr returns the listen address for echo.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisTLS:      strings.EqualFold(os.Getenv("REDIS_TLS"), "true"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
	}

	var err error
	if cfg.PostgresPort, err = atoienv("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.AccessTTL, err = durenv("ACCESS_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PaymentDelay, err = durenv("PAYMENT_DELAY", 800*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = durenv("PAYMENT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durenv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TaxRate, err = decenv("TAX_RATE", "0.085"); err != nil {
		return Config{}, err
	}
	if cfg.ArtistShare, err = decenv("ARTIST_SHARE", "0.70"); err != nil {
		return Config{}, err
	}
	threshold, err := atoienv("LOW_STOCK_THRESHOLD", 20)
	if err != nil {
		return Config{}, err
	}
	cfg.LowStockThreshold = int64(threshold)

	seed := os.Getenv("OPERATOR_SEED")
	if seed == "" && cfg.IsDev() {
		seed = devOperatorSeed
	}
	if cfg.Operators, err = ParseOperatorSeed(seed); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev_secret_change_me"
	}
	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			if cfg.PostgresUser == "" {
				return Config{}, fmt.Errorf("POSTGRES_USER is required")
			}
			if cfg.PostgresDB == "" {
				return Config{}, fmt.Errorf("POSTGRES_DB is required")
			}
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be memory or postgres: %q", cfg.StoreDriver)
	}
	if cfg.PaymentTimeout <= 0 {
		return Config{}, fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}
	if cfg.TaxRate.IsNegative() {
		return Config{}, fmt.Errorf("TAX_RATE must not be negative")
	}
	if cfg.ArtistShare.IsNegative() || cfg.ArtistShare.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("ARTIST_SHARE must be between 0 and 1")
	}

	return cfg, nil
}

// DSN builds a postgres DSN from the POSTGRES_* fields.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort,
	)
}

// ParseOperatorSeed reads "name:pin:role,name:pin:role".
func ParseOperatorSeed(raw string) ([]OperatorSeed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []OperatorSeed
	seen := map[string]bool{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("OPERATOR_SEED entry %q must be name:pin:role", entry)
		}
		name, pin := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		role := model.Role(strings.ToUpper(strings.TrimSpace(parts[2])))
		if name == "" || pin == "" {
			return nil, fmt.Errorf("OPERATOR_SEED entry %q has empty name or pin", entry)
		}
		if !role.Valid() {
			return nil, fmt.Errorf("OPERATOR_SEED entry %q has unknown role", entry)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("OPERATOR_SEED has duplicate operator %q", name)
		}
		seen[key] = true
		out = append(out, OperatorSeed{Name: name, PIN: pin, Role: role})
	}
	return out, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durenv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 800ms: %w", key, err)
	}
	return d, nil
}

func decenv(key, def string) (decimal.Decimal, error) {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}
