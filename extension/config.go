package extension

// Config holds the Tally extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tally" or "tally" keys).
type Config struct {
	// DisableRoutes prevents the HTTP API from being built.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for tally routes (default: "/tally").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// TaxRate is applied to sales and service invoices (default: "0.1").
	TaxRate string `json:"tax_rate" mapstructure:"tax_rate" yaml:"tax_rate"`

	// InvoiceDays is the number of days until an invoice is due (default: 30).
	InvoiceDays int `json:"invoice_days" mapstructure:"invoice_days" yaml:"invoice_days"`

	// StrictStock refuses sales beyond available stock.
	StrictStock bool `json:"strict_stock" mapstructure:"strict_stock" yaml:"strict_stock"`

	// RejectOverpayment refuses enrollment payments above the remaining amount.
	RejectOverpayment bool `json:"reject_overpayment" mapstructure:"reject_overpayment" yaml:"reject_overpayment"`

	// Store selects the backend when no store was given programmatically:
	// "memory" (default), "sqlfile" or "redis".
	Store string `json:"store" mapstructure:"store" yaml:"store"`

	// SQLitePath is the database file for the "sqlfile" store.
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// RedisAddr and RedisPrefix configure the "redis" store.
	RedisAddr   string `json:"redis_addr" mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPrefix string `json:"redis_prefix" mapstructure:"redis_prefix" yaml:"redis_prefix"`

	// GroveDriver names the driver of the grove.DB passed with WithGroveDB:
	// "pg", "sqlite" or "mongo".
	GroveDriver string `json:"grove_driver" mapstructure:"grove_driver" yaml:"grove_driver"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:    "/tally",
		TaxRate:     "0.1",
		InvoiceDays: 30,
		Store:       "memory",
	}
}
