package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"caja/src/sales/application/request"
	"caja/src/sales/domain/entity"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/logger"
	"caja/src/shared/infrastructure/requestctx"

	"github.com/shopspring/decimal"
)

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

type saleFixture struct {
	cart     *CartUseCase
	register *fakeRegister
	backend  *fakeSaleBackend
	journal  *fakeJournal
	sale     *POSSaleUseCase
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	blister := decimal.RequireFromString("8.00")
	catalog := &fakeCatalog{products: map[string]entity.Product{
		"p-1": {ID: "p-1", Name: "Paracetamol 500mg", UnitPrice: decimal.RequireFromString("1.00"),
			BlisterPrice: &blister, UnitsPerBlister: 10, AvailableStock: 50},
		"p-2": {ID: "p-2", Name: "Alcohol 70%", UnitPrice: decimal.RequireFromString("2.00"), AvailableStock: 5},
	}}
	log := logger.Discard()
	f := &saleFixture{
		cart:     NewCartUseCase(catalog, log),
		register: &fakeRegister{open: true, sessionID: "caja-1", cashSales: decimal.Zero},
		backend:  &fakeSaleBackend{},
		journal:  &fakeJournal{},
	}
	f.sale = NewPOSSaleUseCase(f.cart, f.register, f.backend, f.journal,
		staticNames{"CASH": "Efectivo", "MIXED": "Mixto"}, "t-1", "PEN", log)
	return f
}

func (f *saleFixture) fill(t *testing.T) {
	t.Helper()
	// 1 blister (8.00) + 2 unidades (2.00) = 10.00
	if _, err := f.cart.AddProduct(context.Background(), "p-1", 1, 2); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
}

func TestSaleRequiresOpenRegister(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	f.register.open = false

	_, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("10")})
	if !errors.Is(err, apperror.ErrSessionClosed) {
		t.Fatalf("err = %v, want session closed", err)
	}
	if f.backend.calls != 0 {
		t.Fatal("backend must not be called with the register closed")
	}
}

func TestSaleRejectsEmptyCart(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "CASH", Cash: d("10")})
	if !errors.Is(err, entity.ErrEmptyCart) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaleBlocksInvalidPayment(t *testing.T) {
	tests := []struct {
		name    string
		req     request.PaymentRequest
		wantErr error
	}{
		{"mixed without digital", request.PaymentRequest{PaymentMethod: "mixto", Cash: d("10"), Digital: d("0")}, apperror.ErrInvalidSplit},
		{"cash short", request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("9.50")}, apperror.ErrInsufficientFunds},
		{"digital short", request.PaymentRequest{PaymentMethod: "yape", Digital: d("1")}, apperror.ErrInsufficientFunds},
		{"unknown method", request.PaymentRequest{PaymentMethod: "tarjeta", Cash: d("10")}, apperror.ErrValidation},
		{"negative cash", request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("-10")}, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSaleFixture(t)
			f.fill(t)

			_, err := f.sale.Execute(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if f.backend.calls != 0 {
				t.Fatal("backend must not be called")
			}
			if f.cart.View().TotalItems != 1 {
				t.Fatal("cart must be kept")
			}
		})
	}
}

func TestSaleNetworkFailureKeepsCartAndReusesKey(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	f.backend.err = errOffline
	req := &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("20")}

	_, err := f.sale.Execute(context.Background(), req)
	if !errors.Is(err, apperror.ErrNetworkFailure) {
		t.Fatalf("err = %v, want network failure", err)
	}
	if f.cart.View().TotalItems != 1 || !f.register.cashSales.IsZero() || len(f.journal.sales) != 0 {
		t.Fatal("failed submission must leave cart, register and journal untouched")
	}

	f.backend.err = nil
	receipt, err := f.sale.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(f.backend.keys) != 2 || f.backend.keys[0] != f.backend.keys[1] {
		t.Fatalf("idempotency keys = %v, want the same key twice", f.backend.keys)
	}
	if receipt.SaleID.String() != f.backend.keys[0] {
		t.Fatalf("sale id %s does not match key %s", receipt.SaleID, f.backend.keys[0])
	}
	if f.cart.View().TotalItems != 0 {
		t.Fatal("confirmed sale must clear the cart")
	}
}

func TestSaleNewKeyAfterCartChange(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	f.backend.err = errOffline
	req := &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("20")}

	_, _ = f.sale.Execute(context.Background(), req)
	if _, err := f.cart.Adjust("p-1", entity.AxisUnit, 1); err != nil {
		t.Fatal(err)
	}
	_, _ = f.sale.Execute(context.Background(), req)

	if len(f.backend.keys) != 2 || f.backend.keys[0] == f.backend.keys[1] {
		t.Fatalf("idempotency keys = %v, want two different keys", f.backend.keys)
	}
}

func TestSaleSuccessRecordsCashAndReceipt(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	ctx := requestctx.WithUser(context.Background(), "ana")

	receipt, err := f.sale.Execute(ctx, &request.PaymentRequest{PaymentMethod: "mixto", Cash: d("5"), Digital: d("6")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// total 10, digital 6: al cajón entran 4
	if !f.register.cashSales.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("cash sales = %s, want 4", f.register.cashSales)
	}
	if receipt.SaleNumber != "B001-000001" || receipt.PaymentMethodName != "Mixto" || receipt.Operator != "ana" {
		t.Fatalf("receipt = %+v", receipt)
	}
	if !receipt.Total.Equal(decimal.NewFromInt(10)) || !receipt.Change.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("totals = %s / %s", receipt.Total, receipt.Change)
	}
	if len(f.journal.sales) != 1 || f.journal.sales[0].SessionID != "caja-1" {
		t.Fatalf("journal = %+v", f.journal.sales)
	}
	if !receipt.CreatedAt.Equal(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("created at = %v", receipt.CreatedAt)
	}
}

func TestSaleWithoutUserUsesDefaultOperator(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	f.register.operator = "turno-noche"

	receipt, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("10")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Operator != "turno-noche" {
		t.Fatalf("operator = %q, want turno-noche", receipt.Operator)
	}
	if len(f.journal.sales) != 1 || f.journal.sales[0].Operator != "turno-noche" {
		t.Fatalf("journal = %+v", f.journal.sales)
	}
}

func TestSaleJournalFailureDoesNotFailSale(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)
	f.journal.err = errors.New("disk full")

	receipt, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "yape", Digital: d("10")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.PaymentMethodName != "DIGITAL" {
		t.Fatalf("method name = %q", receipt.PaymentMethodName)
	}
	if !f.register.cashSales.IsZero() {
		t.Fatal("digital sale must not add cash to the drawer")
	}
}

func TestCartLockedDuringSubmission(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.hook = func() {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("10")})
		done <- err
	}()
	<-entered

	if _, err := f.cart.AddProduct(context.Background(), "p-2", 0, 1); !errors.Is(err, entity.ErrCheckoutInFlight) {
		t.Errorf("AddProduct during checkout = %v", err)
	}
	if err := f.cart.Remove("p-1"); !errors.Is(err, entity.ErrCheckoutInFlight) {
		t.Errorf("Remove during checkout = %v", err)
	}
	if _, err := f.sale.Execute(context.Background(), &request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("10")}); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second submission = %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestQuote(t *testing.T) {
	f := newSaleFixture(t)
	f.fill(t)

	quote, err := f.sale.Quote(&request.PaymentRequest{PaymentMethod: "MIXED", Cash: d("10")})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Valid || quote.Code != string(apperror.CodeInvalidSplit) {
		t.Fatalf("quote = %+v", quote)
	}

	quote, err = f.sale.Quote(&request.PaymentRequest{PaymentMethod: "efectivo", Cash: d("50")})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !quote.Valid || !quote.ChangeDue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("quote = %+v", quote)
	}
	if f.backend.calls != 0 {
		t.Fatal("quote must not submit")
	}
}

func TestAddProductErrors(t *testing.T) {
	f := newSaleFixture(t)

	if _, err := f.cart.AddProduct(context.Background(), "p-404", 0, 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown product err = %v", err)
	}
	if _, err := f.cart.AddProduct(context.Background(), "p-2", 0, 6); !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("over stock err = %v", err)
	}
	if _, err := f.cart.AddProduct(context.Background(), " ", 0, 1); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("blank id err = %v", err)
	}
}
