// Package extension provides the Forge extension adapter for Tally.
//
// It implements the forge.Extension interface to integrate Tally
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.tally" or "tally" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/tally"
	"github.com/xraph/tally/api"
	"github.com/xraph/tally/internal/config"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/store/kv"
	"github.com/xraph/tally/store/mongo"
	"github.com/xraph/tally/store/postgres"
	"github.com/xraph/tally/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tally"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Shop, training centre and repair desk bookkeeping"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Tally as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	engine    *tally.Tally
	store     store.Store
	grove     *grove.DB
	handler   http.Handler
	tallyOpts []tally.Option
}

// New creates a new Tally Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Tally instance.
// This is nil until Register is called.
func (e *Extension) Engine() *tally.Tally { return e.engine }

// Handler returns the HTTP API mounted under the configured base path, or
// nil when routes are disabled.
func (e *Extension) Handler() http.Handler { return e.handler }

// Register implements [forge.Extension]. It loads configuration,
// initializes the tally engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	opts, err := e.buildTallyOpts()
	if err != nil {
		return err
	}

	if e.store == nil {
		s, locker, err := e.openStore(context.Background())
		if err != nil {
			return err
		}
		e.store = s
		if locker != nil {
			opts = append(opts, tally.WithLocker(locker))
		}
	}

	e.engine = tally.New(e.store, opts...)

	if !e.config.DisableRoutes {
		prefix := strings.TrimSuffix(e.config.BasePath, "/")
		e.handler = http.StripPrefix(prefix, api.NewRouter(e.engine, e.engine.Logger()))
	}

	return vessel.Provide(fapp.Container(), func() (*tally.Tally, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("tally: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("tally: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildTallyOpts constructs tally.Option values from the resolved config.
func (e *Extension) buildTallyOpts() ([]tally.Option, error) {
	opts := make([]tally.Option, 0, len(e.tallyOpts)+5)
	opts = append(opts, tally.WithLogger(slog.Default()))

	rate, err := decimal.NewFromString(e.config.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("tally: invalid tax_rate %q: %w", e.config.TaxRate, err)
	}
	opts = append(opts,
		tally.WithTaxRate(rate),
		tally.WithInvoiceTerms(e.config.InvoiceDays),
	)
	if e.config.StrictStock {
		opts = append(opts, tally.WithStockPolicy(tally.StockReject))
	}
	if e.config.RejectOverpayment {
		opts = append(opts, tally.WithPaymentPolicy(tally.PaymentReject))
	}

	// Append any pass-through tally options.
	opts = append(opts, e.tallyOpts...)

	return opts, nil
}

// openStore builds the store from a grove database when one was given,
// otherwise from the configured store name.
func (e *Extension) openStore(ctx context.Context) (store.Store, tally.Locker, error) {
	if e.grove != nil {
		var b kv.Backend
		switch e.config.GroveDriver {
		case "pg", "postgres":
			b = postgres.New(e.grove)
		case "sqlite":
			b = sqlite.New(e.grove)
		case "mongo":
			b = mongo.New(e.grove)
		default:
			return nil, nil, fmt.Errorf("tally: unsupported grove driver %q", e.config.GroveDriver)
		}
		return kv.New(b, kv.WithLogger(slog.Default())), nil, nil
	}

	cfg := config.Default()
	cfg.Store = e.config.Store
	if e.config.SQLitePath != "" {
		cfg.SQLitePath = e.config.SQLitePath
	}
	if e.config.RedisAddr != "" {
		cfg.RedisAddr = e.config.RedisAddr
	}
	if e.config.RedisPrefix != "" {
		cfg.RedisPrefix = e.config.RedisPrefix
	}
	return cfg.OpenStore(ctx, slog.Default())
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("tally: configuration is required but not found in config files; " +
				"ensure 'extensions.tally' or 'tally' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("tally: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("store", e.config.Store),
		forge.F("tax_rate", e.config.TaxRate),
		forge.F("invoice_days", e.config.InvoiceDays),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.tally" first (namespaced pattern).
	if cm.IsSet("extensions.tally") {
		if err := cm.Bind("extensions.tally", &cfg); err == nil {
			e.Logger().Debug("tally: loaded config from file",
				forge.F("key", "extensions.tally"),
			)
			return cfg, true
		}
		e.Logger().Warn("tally: failed to bind extensions.tally config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "tally" key.
	if cm.IsSet("tally") {
		if err := cm.Bind("tally", &cfg); err == nil {
			e.Logger().Debug("tally: loaded config from file",
				forge.F("key", "tally"),
			)
			return cfg, true
		}
		e.Logger().Warn("tally: failed to bind tally config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.TaxRate == "" {
		cfg.TaxRate = defaults.TaxRate
	}
	if cfg.InvoiceDays == 0 {
		cfg.InvoiceDays = defaults.InvoiceDays
	}
	if cfg.Store == "" {
		cfg.Store = defaults.Store
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.StrictStock {
		yamlConfig.StrictStock = true
	}
	if programmaticConfig.RejectOverpayment {
		yamlConfig.RejectOverpayment = true
	}

	// String fields: YAML takes precedence.
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&yamlConfig.BasePath, programmaticConfig.BasePath)
	fill(&yamlConfig.TaxRate, programmaticConfig.TaxRate)
	fill(&yamlConfig.Store, programmaticConfig.Store)
	fill(&yamlConfig.SQLitePath, programmaticConfig.SQLitePath)
	fill(&yamlConfig.RedisAddr, programmaticConfig.RedisAddr)
	fill(&yamlConfig.RedisPrefix, programmaticConfig.RedisPrefix)
	fill(&yamlConfig.GroveDriver, programmaticConfig.GroveDriver)

	// Int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.InvoiceDays == 0 && programmaticConfig.InvoiceDays != 0 {
		yamlConfig.InvoiceDays = programmaticConfig.InvoiceDays
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
