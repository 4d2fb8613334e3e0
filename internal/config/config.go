// Package config loads the tally server configuration from the environment,
// optionally seeded from .env files.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/xraph/tally"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/store/kv"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/store/redis"
	"github.com/xraph/tally/store/sqlfile"
)

// Store drivers.
const (
	StoreMemory  = "memory"
	StoreSQLFile = "sqlfile"
	StoreRedis   = "redis"
)

// Config is the server configuration.
type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	Store       string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string

	TaxRate           decimal.Decimal
	InvoiceDays       int
	StrictStock       bool
	RejectOverpayment bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTPAddr:    ":8080",
		LogLevel:    slog.LevelInfo,
		Store:       StoreSQLFile,
		SQLitePath:  "tally.db",
		RedisAddr:   "localhost:6379",
		RedisPrefix: redis.DefaultPrefix,
		TaxRate:     tally.DefaultTaxRate,
		InvoiceDays: tally.DefaultInvoiceDays,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds a Config from TALLY_* variables. Missing
// files are skipped; variables already set win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}

	str("TALLY_HTTP_ADDR", &cfg.HTTPAddr)
	str("TALLY_STORE", &cfg.Store)
	str("TALLY_SQLITE_PATH", &cfg.SQLitePath)
	str("TALLY_REDIS_ADDR", &cfg.RedisAddr)
	str("TALLY_REDIS_PREFIX", &cfg.RedisPrefix)
	flag("TALLY_STRICT_STOCK", &cfg.StrictStock)
	flag("TALLY_REJECT_OVERPAYMENT", &cfg.RejectOverpayment)

	if v := getenv("TALLY_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("TALLY_LOG_LEVEL: %w", err))
		}
	}
	if v := getenv("TALLY_TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil || rate.IsNegative() {
			errs = append(errs, fmt.Errorf("TALLY_TAX_RATE: invalid rate %q", v))
		} else {
			cfg.TaxRate = rate
		}
	}
	if v := getenv("TALLY_INVOICE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			errs = append(errs, fmt.Errorf("TALLY_INVOICE_DAYS: invalid day count %q", v))
		} else {
			cfg.InvoiceDays = days
		}
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("TALLY_STORE: unknown store %q", cfg.Store))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Options returns the engine options the configuration implies.
func (c Config) Options() []tally.Option {
	opts := []tally.Option{
		tally.WithTaxRate(c.TaxRate),
		tally.WithInvoiceTerms(c.InvoiceDays),
	}
	if c.StrictStock {
		opts = append(opts, tally.WithStockPolicy(tally.StockReject))
	}
	if c.RejectOverpayment {
		opts = append(opts, tally.WithPaymentPolicy(tally.PaymentReject))
	}
	return opts
}

// OpenStore opens the configured store. The redis store also returns a
// distributed Locker; other stores return nil and keep the engine's
// in-process lock.
func (c Config) OpenStore(ctx context.Context, logger *slog.Logger) (store.Store, tally.Locker, error) {
	switch c.Store {
	case StoreMemory:
		return memory.New(), nil, nil

	case StoreSQLFile:
		b, err := sqlfile.Open(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv.New(b, kv.WithLogger(logger)), nil, nil

	case StoreRedis:
		b, err := redis.Dial(ctx, c.RedisAddr, c.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return kv.New(b, kv.WithLogger(logger)), redis.NewLocker(b.Client(), c.RedisPrefix), nil
	}
	return nil, nil, fmt.Errorf("config: unknown store %q", c.Store)
}
