package tally

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/types"
)

// StockPolicy decides what happens when a sale asks for more than is in
// stock.
type StockPolicy int

const (
	// StockClamp records the sale and floors stock at zero.
	StockClamp StockPolicy = iota
	// StockReject refuses the sale with ErrInsufficientStock.
	StockReject
)

// PaymentPolicy decides whether enrollment payments may exceed the
// remaining amount.
type PaymentPolicy int

const (
	// PaymentAllow accepts overpayment; RemainingAmount goes negative.
	PaymentAllow PaymentPolicy = iota
	// PaymentReject refuses overpayment with ErrOverpayment.
	PaymentReject
)

// Defaults.
var (
	DefaultTaxRate     = decimal.NewFromFloat(0.1)
	DefaultInvoiceDays = 30
)

// Locker guards one propagation rule at a time. The returned func releases
// the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Refresher is implemented by stores that cache state another process may
// have changed. The engine refreshes such a store after taking a shared
// lock.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type localLocker struct{ mu sync.Mutex }

func (l *localLocker) Lock(context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// Tally is the bookkeeping engine behind the shop counter, the training
// centre and the repair desk.
// Every operation that touches more than one table runs under the Locker.
type Tally struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	locker   Locker
	shared   bool
	validate *validator.Validate
	clock    func() time.Time

	// Configuration
	taxRate       decimal.Decimal
	invoiceDays   int
	stockPolicy   StockPolicy
	paymentPolicy PaymentPolicy

	seq atomic.Uint64
}

// New creates a new Tally instance.
func New(s store.Store, opts ...Option) *Tally {
	t := &Tally{
		store:       s,
		plugins:     plugin.NewRegistry(),
		logger:      slog.Default(),
		locker:      &localLocker{},
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       time.Now,
		taxRate:     DefaultTaxRate,
		invoiceDays: DefaultInvoiceDays,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Option configures a Tally instance.
type Option func(*Tally)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tally) {
		t.logger = logger
		t.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(t *Tally) {
		_ = t.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithLocker replaces the in-process mutex, typically with a distributed
// lock shared by several processes. Stores implementing Refresher are
// reloaded after every acquisition.
func WithLocker(l Locker) Option {
	return func(t *Tally) {
		t.locker = l
		t.shared = true
	}
}

// WithStockPolicy sets how sales beyond available stock are handled.
func WithStockPolicy(p StockPolicy) Option {
	return func(t *Tally) { t.stockPolicy = p }
}

// WithPaymentPolicy sets how enrollment overpayment is handled.
func WithPaymentPolicy(p PaymentPolicy) Option {
	return func(t *Tally) { t.paymentPolicy = p }
}

// WithTaxRate sets the tax rate applied to sales and service invoices.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(t *Tally) { t.taxRate = rate }
}

// WithInvoiceTerms sets the number of days until an invoice is due.
func WithInvoiceTerms(days int) Option {
	return func(t *Tally) { t.invoiceDays = days }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tally) { t.clock = now }
}

// Start migrates the store and initializes plugins.
func (t *Tally) Start(ctx context.Context) error {
	if err := t.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	t.plugins.EmitInit(ctx, t)

	t.logger.Info("tally started",
		"tax_rate", t.taxRate.String(),
		"invoice_days", t.invoiceDays,
		"strict_stock", t.stockPolicy == StockReject,
		"reject_overpayment", t.paymentPolicy == PaymentReject,
		"plugins", t.plugins.Count(),
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (t *Tally) Stop() error {
	ctx := context.Background()
	t.plugins.EmitShutdown(ctx)

	return t.store.Close()
}

// Store returns the underlying store.
func (t *Tally) Store() store.Store { return t.store }

// Plugins returns the plugin registry.
func (t *Tally) Plugins() *plugin.Registry { return t.plugins }

// Logger returns the engine logger.
func (t *Tally) Logger() *slog.Logger { return t.logger }

// Ping checks store connectivity.
func (t *Tally) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func (t *Tally) now() time.Time {
	return t.clock().UTC()
}

// atomically runs fn while holding the engine lock.
func (t *Tally) atomically(ctx context.Context, fn func() error) error {
	unlock, err := t.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if t.shared {
		if r, ok := t.store.(Refresher); ok {
			if err := r.Refresh(ctx); err != nil {
				return fmt.Errorf("tally: refresh store: %w", err)
			}
		}
	}
	return fn()
}

// check validates v against its struct tags.
func (t *Tally) check(v any) error {
	return validationErrors(t.validate.Struct(v))
}

// number returns "<prefix>-<unix millis><3 digit sequence>".
func (t *Tally) number(prefix string) string {
	n := t.seq.Add(1) % 1000
	return fmt.Sprintf("%s-%d%03d", prefix, t.now().UnixMilli(), n)
}

func (t *Tally) dueDate() time.Time {
	return t.now().AddDate(0, 0, t.invoiceDays)
}

// stamp assigns a fresh ID when none is set and resets the timestamps.
func (t *Tally) stamp(i *id.ID, fresh func() id.ID, e *types.Entity) {
	if i.IsNil() {
		*i = fresh()
	}
	*e = types.NewEntityAt(t.now())
}

// modify loads a record, applies fn to it and stores it back. fn cannot
// change the ID or CreatedAt. The record is validated before it is stored.
func modify[T any](
	ctx context.Context,
	t *Tally,
	recordID id.ID,
	get func(context.Context, id.ID) (*T, error),
	put func(context.Context, *T) error,
	base func(*T) (*id.ID, *types.Entity),
	fn func(*T),
) (*T, error) {
	return modifyE(ctx, t, recordID, get, put, base, func(rec *T) error {
		fn(rec)
		return nil
	})
}

// modifyE is modify with a mutator that can veto the change.
func modifyE[T any](
	ctx context.Context,
	t *Tally,
	recordID id.ID,
	get func(context.Context, id.ID) (*T, error),
	put func(context.Context, *T) error,
	base func(*T) (*id.ID, *types.Entity),
	fn func(*T) error,
) (*T, error) {
	var out *T
	err := t.atomically(ctx, func() error {
		rec, err := get(ctx, recordID)
		if err != nil {
			return err
		}
		_, ent := base(rec)
		created := ent.CreatedAt

		if err := fn(rec); err != nil {
			return err
		}

		idp, ent := base(rec)
		*idp = recordID
		ent.CreatedAt = created
		ent.TouchAt(t.now())

		if err := t.check(rec); err != nil {
			return err
		}
		if err := put(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	return out, err
}
