package observability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/observability"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/store/memory"
)

func TestMetricsExtensionCountsSales(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg, "shop"))

	tl := tally.New(memory.New(),
		tally.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		tally.WithPlugin(metrics),
	)
	require.NoError(t, tl.Start(ctx))
	t.Cleanup(func() { _ = tl.Stop() })

	p := &product.Product{Name: "Mouse", Category: product.CategoryAccessory, SellingPrice: tally.Major(10), Stock: 3, MinStock: 1}
	require.NoError(t, tl.CreateProduct(ctx, p))

	s := &sale.Sale{Items: []sale.Item{{ProductID: p.ID, Quantity: 3, UnitPrice: tally.Major(10)}}}
	require.NoError(t, tl.RecordSale(ctx, s))
	require.NoError(t, tl.DeleteSale(ctx, s.ID))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector(metrics.SalesRecorded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector(metrics.SalesDeleted)))
	assert.Equal(t, 6.0, testutil.ToFloat64(collector(metrics.UnitsMoved)), "out and back")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector(metrics.LowStockAlerts)))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "shop_tally_sale_recorded_total")
	assert.Contains(t, names, "shop_tally_sale_total_amount")
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg, "shop")

	a := f.Counter("tally.voucher.generated")
	b := f.Counter("tally.voucher.generated")
	a.Inc()
	b.Add(2)

	other := observability.NewPrometheusFactory(reg, "shop")
	c := other.Counter("tally.voucher.generated")
	c.Inc()

	assert.Equal(t, 4.0, testutil.ToFloat64(collector(a)))
}

func collector(c observability.Counter) prometheus.Collector {
	return c.(prometheus.Collector)
}
