package persistence

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"caja/src/sales/domain/entity"
	domainCriteria "caja/src/shared/domain/criteria"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// openJournal abre el diario contra CAJA_TEST_DATABASE_URL con una terminal única por test
func openJournal(t *testing.T) *SaleJournalPostgresRepository {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("CAJA_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("CAJA_TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSaleJournalPostgresRepository(db, "test-"+uuid.NewString())
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func journalSale(sessionID string, method entity.PaymentMethod, total, cash string, at time.Time) *entity.Sale {
	blister := decimal.RequireFromString("4.50")
	return &entity.Sale{
		ID:               uuid.New(),
		SaleNumber:       "B001-" + uuid.NewString()[:6],
		SessionID:        sessionID,
		Method:           method,
		Total:            decimal.RequireFromString(total),
		CashTendered:     decimal.RequireFromString(cash),
		DigitalTendered:  decimal.Zero,
		ChangeDue:        decimal.Zero,
		CashContribution: decimal.RequireFromString(cash),
		Currency:         "PEN",
		CreatedAt:        at,
		Lines: []entity.SaleLine{
			{ProductID: "p-1", ProductName: "Paracetamol", BlisterQty: 1, BlisterPrice: &blister, UnitPrice: decimal.RequireFromString("0.50"), Discount: decimal.Zero, Subtotal: blister},
			{ProductID: "p-2", ProductName: "Alcohol", UnitQty: 1, UnitPrice: decimal.RequireFromString("7.20"), Discount: decimal.Zero, Subtotal: decimal.RequireFromString("7.20")},
		},
	}
}

func TestJournalRecordListAndTotals(t *testing.T) {
	repo := openJournal(t)
	ctx := context.Background()
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	first := journalSale("s-1", entity.PaymentCash, "11.70", "11.70", day.Add(9*time.Hour))
	second := journalSale("s-1", entity.PaymentDigital, "11.70", "0", day.Add(10*time.Hour))
	other := journalSale("s-2", entity.PaymentCash, "11.70", "11.70", day.Add(-time.Hour))
	for _, s := range []*entity.Sale{first, second, other} {
		if err := repo.Record(ctx, s); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	// Registrar de nuevo la misma venta no la duplica
	if err := repo.Record(ctx, first); err != nil {
		t.Fatalf("Record again: %v", err)
	}

	sales, err := repo.ListBySession(ctx, "s-1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(sales) != 2 || sales[0].ID != second.ID || len(sales[1].Lines) != 2 {
		t.Fatalf("sales = %+v", sales)
	}
	if sales[1].Lines[0].BlisterPrice == nil || !sales[1].Lines[0].BlisterPrice.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("blister price lost: %+v", sales[1].Lines[0])
	}

	totals, err := repo.DailyTotals(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if totals.SalesCount != 2 || !totals.GrossTotal.Equal(decimal.RequireFromString("23.40")) || !totals.CashInDrawer.Equal(decimal.RequireFromString("11.70")) {
		t.Fatalf("totals = %+v", totals)
	}
	if totals.CountsByMethod[entity.PaymentDigital] != 1 || !totals.FirstSaleAt.Equal(first.CreatedAt) {
		t.Fatalf("totals = %+v", totals)
	}

	c := domainCriteria.NewCriteriaBuilder().
		Where("payment_method", domainCriteria.OpEqual, string(entity.PaymentCash)).
		Paginate(1, 1).
		Build()
	page, total, err := repo.Search(ctx, c)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].ID != first.ID {
		t.Fatalf("search = %d %+v", total, page)
	}
}
