package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name    string
		money   Money
		cents   int64
		display string
	}{
		{"Cents", Cents(4900), 4900, "49.00"},
		{"Major", Major(299), 29900, "299.00"},
		{"Zero", Zero, 0, "0.00"},
		{"Negative", Cents(-1250), -1250, "-12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int64(tt.money) != tt.cents {
				t.Errorf("cents: got %d, want %d", int64(tt.money), tt.cents)
			}
			if tt.money.String() != tt.display {
				t.Errorf("display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return Cents(100).Add(Cents(200)) }, Cents(300)},
		{"Subtract", func() Money { return Cents(500).Subtract(Cents(200)) }, Cents(300)},
		{"Multiply", func() Money { return Cents(100).Multiply(3) }, Cents(300)},
		{"Negate", func() Money { return Cents(100).Negate() }, Cents(-100)},
		{"Abs negative", func() Money { return Cents(-100).Abs() }, Cents(100)},
		{"FloorZero", func() Money { return Cents(-1).FloorZero() }, Zero},
		{"Add then subtract", func() Money { return Cents(7501).Add(Cents(333)).Subtract(Cents(333)) }, Cents(7501)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoneyMulRate(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		rate     string
		expected Money
	}{
		{"ten percent", Major(150), "0.1", Major(15)},
		{"rounds half up", Cents(5), "0.1", Cents(1)},
		{"rounds down", Cents(14), "0.1", Cents(1)},
		{"zero rate", Major(10), "0", Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.money.MulRate(decimal.RequireFromString(tt.rate))
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoneyComparison(t *testing.T) {
	a, b := Cents(100), Cents(200)
	if !a.LessThan(b) || a.GreaterThan(b) {
		t.Error("expected 1.00 < 2.00")
	}
	if a.Min(b) != a || a.Max(b) != b {
		t.Error("min/max mismatch")
	}
	if !Zero.IsZero() || !a.IsPositive() || !a.Negate().IsNegative() {
		t.Error("predicate mismatch")
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		money    Money
		currency string
		expected string
	}{
		{Cents(4900), "usd", "$49.00"},
		{Cents(19900), "EUR", "€199.00"},
		{Cents(1), "xyz", "XYZ 0.01"},
		{Cents(-50), "usd", "$-0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.money.Format(tt.currency); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	tests := []struct {
		name  string
		money Money
		json  string
	}{
		{"whole", Major(299), "299"},
		{"fraction", Cents(12550), "125.5"},
		{"cents", Cents(7), "0.07"},
		{"negative", Cents(-2500), "-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.money)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("marshal: got %s, want %s", data, tt.json)
			}

			var back Money
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if back != tt.money {
				t.Errorf("unmarshal: got %d, want %d", back, tt.money)
			}
		})
	}
}

func TestMoneyUnmarshalLenient(t *testing.T) {
	var row struct {
		Price  Money `json:"price"`
		Fee    Money `json:"fee"`
		Tax    Money `json:"tax"`
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"price":"19.99","fee":null,"tax":0.105,"amount":1e2}`), &row); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if row.Price != Cents(1999) {
		t.Errorf("price: got %d", row.Price)
	}
	if row.Fee != Zero {
		t.Errorf("fee: got %d", row.Fee)
	}
	if row.Tax != Cents(11) {
		t.Errorf("tax: got %d", row.Tax)
	}
	if row.Amount != Major(100) {
		t.Errorf("amount: got %d", row.Amount)
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseMajor(t *testing.T) {
	m, err := ParseMajor(" 12.345 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m != Cents(1235) {
		t.Errorf("got %d, want 1235", m)
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); got != Zero {
		t.Errorf("empty sum: got %v", got)
	}
	if got := Sum(Cents(100), Cents(250), Cents(-50)); got != Cents(300) {
		t.Errorf("got %v, want 3.00", got)
	}
}

func BenchmarkMoneyJSON(b *testing.B) {
	m := Cents(12550)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(m) //nolint:errcheck // benchmark
	}
}
