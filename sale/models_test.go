package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/types"
)

func TestPrice(t *testing.T) {
	a, b := id.NewProductID(), id.NewProductID()
	s := &sale.Sale{
		Items: []sale.Item{
			{ProductID: a, Quantity: 2, UnitPrice: types.Major(50)},
			{ProductID: b, Quantity: 1, UnitPrice: types.Major(20)},
		},
		Discount: types.Major(5),
	}
	s.Price(decimal.RequireFromString("0.1"))

	if s.Items[0].Total != types.Major(100) {
		t.Errorf("line total: got %v", s.Items[0].Total)
	}
	if s.Subtotal != types.Major(120) {
		t.Errorf("subtotal: got %v", s.Subtotal)
	}
	if s.Tax != types.Major(12) {
		t.Errorf("tax: got %v", s.Tax)
	}
	if s.Total != types.Major(127) {
		t.Errorf("total: got %v, want 127.00", s.Total)
	}
}

func TestPriceKeepsCallerTotals(t *testing.T) {
	s := &sale.Sale{
		Items: []sale.Item{{ProductID: id.NewProductID(), Quantity: 1, UnitPrice: types.Major(10), Total: types.Major(9)}},
		Total: types.Major(8),
	}
	s.Price(decimal.Zero)

	if s.Items[0].Total != types.Major(9) {
		t.Errorf("line total overwritten: %v", s.Items[0].Total)
	}
	if s.Total != types.Major(8) {
		t.Errorf("total overwritten: %v", s.Total)
	}
}

func TestQuantities(t *testing.T) {
	p := id.NewProductID()
	s := &sale.Sale{Items: []sale.Item{{ProductID: p, Quantity: 2}, {ProductID: p, Quantity: 3}}}
	if got := s.Quantities()[p]; got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}
