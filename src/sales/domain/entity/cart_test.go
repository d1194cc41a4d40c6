package entity

import (
	"errors"
	"math"
	"testing"

	"caja/src/shared/domain/apperror"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paracetamol(stock int) *Product {
	blister := d("8.00")
	return &Product{
		ID:              "p-1",
		Name:            "Paracetamol 500mg",
		UnitPrice:       d("1.00"),
		Discount:        d("0.10"),
		BlisterPrice:    &blister,
		UnitsPerBlister: 10,
		AvailableStock:  stock,
	}
}

func alcohol(stock int) *Product {
	return &Product{ID: "p-2", Name: "Alcohol 70%", UnitPrice: d("5.50"), AvailableStock: stock}
}

func TestAddLineValidatesAgainstProductStock(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		blister int
		units   int
		wantErr error
	}{
		{"fits exactly", paracetamol(25), 2, 5, nil},
		{"exceeds stock", paracetamol(25), 2, 6, ErrInsufficientStock},
		{"units alone exceed stock", paracetamol(5), 1, 6, ErrInsufficientStock},
		{"blister count overflows int", paracetamol(5), math.MaxInt/10 + 1, 0, ErrInsufficientStock},
		{"huge blisters with units", paracetamol(25), math.MaxInt/10 + 1, 3, ErrInsufficientStock},
		{"zero quantity", paracetamol(25), 0, 0, ErrZeroQuantity},
		{"negative units", paracetamol(25), 0, -1, ErrInvalidQuantity},
		{"blister without blister pricing", alcohol(100), 1, 0, ErrNoBlisterPricing},
		{"units only", alcohol(3), 0, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewCart()
			line, err := cart.AddLine(tt.product, tt.blister, tt.units)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && line.StockSnapshot != tt.product.AvailableStock {
				t.Fatalf("stock snapshot = %d, want %d", line.StockSnapshot, tt.product.AvailableStock)
			}
			if tt.wantErr != nil && !cart.IsEmpty() {
				t.Fatal("rejected add must not create a line")
			}
		})
	}
}

func TestInsufficientStockIsItsOwnCategory(t *testing.T) {
	_, err := NewCart().AddLine(alcohol(1), 0, 2)
	if !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("err = %v", err)
	}
}

func TestAddLineReplacesExistingLine(t *testing.T) {
	cart := NewCart()
	if _, err := cart.AddLine(alcohol(10), 0, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(paracetamol(30), 1, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(alcohol(4), 0, 4); err != nil {
		t.Fatal(err)
	}

	lines := cart.Lines()
	if len(lines) != 2 || lines[0].ProductID != "p-2" {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].UnitQty != 4 || lines[0].StockSnapshot != 4 {
		t.Fatalf("replaced line = %+v", lines[0])
	}
}

func TestAdjustLineUsesStockSnapshotNotCatalog(t *testing.T) {
	cart := NewCart()
	product := paracetamol(12)
	if _, err := cart.AddLine(product, 1, 1); err != nil {
		t.Fatal(err)
	}

	// El catálogo cambia después de agregar: no debe afectar los ajustes
	product.AvailableStock = 1000

	line, err := cart.AdjustLine("p-1", AxisUnit, 1)
	if err != nil || line.UnitQty != 2 {
		t.Fatalf("adjust to 12 units = %+v, %v", line, err)
	}

	_, err = cart.AdjustLine("p-1", AxisUnit, 1)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	_, err = cart.AdjustLine("p-1", AxisBlister, 1)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}

	got, _ := cart.Line("p-1")
	if got.BlisterQty != 1 || got.UnitQty != 2 {
		t.Fatalf("rejected adjustment changed the line: %+v", got)
	}
	if got.exceedsStock() {
		t.Fatalf("line above its snapshot: %+v", got)
	}
}

func TestAdjustLineRemovesEmptyLine(t *testing.T) {
	cart := NewCart()
	if _, err := cart.AddLine(alcohol(5), 0, 1); err != nil {
		t.Fatal(err)
	}

	line, err := cart.AdjustLine("p-2", AxisUnit, -1)
	if err != nil || line != nil {
		t.Fatalf("AdjustLine = %+v, %v; want removal", line, err)
	}
	if !cart.IsEmpty() {
		t.Fatal("line should have been removed")
	}
}

func TestAdjustLineRejections(t *testing.T) {
	cart := NewCart()
	if _, err := cart.AddLine(alcohol(5), 0, 2); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		productID string
		axis      QuantityAxis
		delta     int
		wantErr   error
	}{
		{"unknown product", "p-9", AxisUnit, 1, ErrLineNotFound},
		{"blister at zero", "p-2", AxisBlister, -1, ErrQuantityAtZero},
		{"blister on unit-only product", "p-2", AxisBlister, 1, ErrNoBlisterPricing},
		{"delta of two", "p-2", AxisUnit, 2, ErrInvalidDelta},
		{"unknown axis", "p-2", QuantityAxis("BOX"), 1, ErrInvalidAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cart.AdjustLine(tt.productID, tt.axis, tt.delta)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	line, _ := cart.Line("p-2")
	if line.UnitQty != 2 || line.BlisterQty != 0 {
		t.Fatalf("line changed after rejections: %+v", line)
	}
}

func TestRemoveLine(t *testing.T) {
	cart := NewCart()
	if _, err := cart.AddLine(alcohol(5), 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := cart.RemoveLine("p-9"); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := cart.RemoveLine("p-2"); err != nil {
		t.Fatal(err)
	}
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty")
	}
}

func TestCartTotal(t *testing.T) {
	cart := NewCart()
	// 2 blisters * 8.00 + 3 units * (1.00 - 0.10) = 18.70
	if _, err := cart.AddLine(paracetamol(50), 2, 3); err != nil {
		t.Fatal(err)
	}
	// descuento mayor al precio: la unidad vale 0
	free := &Product{ID: "p-3", Name: "Muestra", UnitPrice: d("2.00"), Discount: d("3.00"), AvailableStock: 5}
	if _, err := cart.AddLine(free, 0, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(alcohol(5), 0, 1); err != nil {
		t.Fatal(err)
	}

	if got := cart.Total(); !got.Equal(d("24.20")) {
		t.Fatalf("total = %s, want 24.20", got)
	}

	cart.Clear()
	if !cart.Total().IsZero() {
		t.Fatal("cleared cart total must be 0")
	}
}

func TestParseQuantityAxis(t *testing.T) {
	for raw, want := range map[string]QuantityAxis{"blister": AxisBlister, "UNIDAD": AxisUnit, " unit ": AxisUnit} {
		got, err := ParseQuantityAxis(raw)
		if err != nil || got != want {
			t.Fatalf("ParseQuantityAxis(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseQuantityAxis("caja"); !errors.Is(err, ErrInvalidAxis) {
		t.Fatalf("err = %v", err)
	}
}
