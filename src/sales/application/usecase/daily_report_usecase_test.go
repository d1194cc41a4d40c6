package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"caja/src/sales/application/request"
	"caja/src/sales/domain/entity"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/domain/criteria"

	"github.com/shopspring/decimal"
)

func TestDailyReportRangeAndBreakdown(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)
	first := time.Date(2026, 5, 4, 13, 0, 0, 0, time.UTC)
	journal := &fakeJournal{totals: &entity.DailyTotals{
		SalesCount:     3,
		GrossTotal:     decimal.NewFromInt(60),
		CashTotal:      decimal.NewFromInt(10),
		DigitalTotal:   decimal.NewFromInt(20),
		MixedTotal:     decimal.NewFromInt(30),
		CashInDrawer:   decimal.NewFromInt(25),
		FirstSaleAt:    &first,
		CountsByMethod: map[entity.PaymentMethod]int{entity.PaymentCash: 1, entity.PaymentDigital: 1, entity.PaymentMixed: 1},
	}}
	uc := NewDailyReportUseCase(journal, lima)

	resp, err := uc.Execute(context.Background(), "2026-05-04")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !journal.from.Equal(time.Date(2026, 5, 4, 5, 0, 0, 0, time.UTC)) || journal.to.Sub(journal.from) != 24*time.Hour {
		t.Fatalf("range = [%v, %v)", journal.from, journal.to)
	}
	if resp.SalesCount != 3 || resp.ByMethod["MIXED"].Count != 1 || !resp.ByMethod["DIGITAL"].Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("report = %+v", resp)
	}
	if !resp.CashInDrawer.Equal(decimal.NewFromInt(25)) || resp.FirstTransactionAt == nil {
		t.Fatalf("report = %+v", resp)
	}
}

func TestDailyReportRejectsBadDate(t *testing.T) {
	uc := NewDailyReportUseCase(&fakeJournal{}, time.UTC)
	if _, err := uc.Execute(context.Background(), "04/05/2026"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestListSalesDefaultsToCurrentSession(t *testing.T) {
	journal := &fakeJournal{sales: []*entity.Sale{
		{SessionID: "caja-1", SaleNumber: "B001-000001", Method: entity.PaymentCash},
		{SessionID: "caja-0", SaleNumber: "B001-000000", Method: entity.PaymentCash},
	}}
	uc := NewListPosSalesUseCase(journal, &fakeRegister{open: true, sessionID: "caja-1"}, time.UTC)

	items, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(items) != 1 || items[0].SaleNumber != "B001-000001" {
		t.Fatalf("items = %+v", items)
	}

	none, err := NewListPosSalesUseCase(journal, &fakeRegister{}, time.UTC).Execute(context.Background(), "")
	if err != nil || len(none) != 0 {
		t.Fatalf("no session = %+v, %v", none, err)
	}
}

func TestSearchSalesFiltersAndPaginates(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)
	journal := &fakeJournal{sales: []*entity.Sale{
		{SessionID: "caja-1", SaleNumber: "B001-000003", Method: entity.PaymentCash},
		{SessionID: "caja-1", SaleNumber: "B001-000002", Method: entity.PaymentDigital},
		{SessionID: "caja-1", SaleNumber: "B001-000001", Method: entity.PaymentCash},
	}}
	uc := NewListPosSalesUseCase(journal, &fakeRegister{}, lima)

	builder := criteria.NewCriteriaBuilder().Paginate(1, 1)
	page, err := uc.Search(context.Background(), builder, &request.SaleSearchRequest{
		SessionID:     "caja-1",
		PaymentMethod: "efectivo",
		Date:          "2026-05-04",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalCount != 2 || len(page.Items) != 1 || page.Items[0].SaleNumber != "B001-000003" || page.Page != 1 || page.PageSize != 1 {
		t.Fatalf("page = %+v", page)
	}

	var from, to time.Time
	for _, f := range journal.lastCriteria.Filters.Items {
		switch f.Operator {
		case criteria.OpGreaterThanOrEqual:
			from = f.Value.(time.Time)
		case criteria.OpLessThan:
			to = f.Value.(time.Time)
		}
	}
	if !from.Equal(time.Date(2026, 5, 4, 5, 0, 0, 0, time.UTC)) || to.Sub(from) != 24*time.Hour {
		t.Fatalf("date range = [%v, %v)", from, to)
	}
	if journal.lastCriteria.Order.Field != "created_at" || journal.lastCriteria.Order.OrderType != criteria.DESC {
		t.Fatalf("order = %+v", journal.lastCriteria.Order)
	}
}

func TestSearchSalesRejectsUnknownMethod(t *testing.T) {
	uc := NewListPosSalesUseCase(&fakeJournal{}, &fakeRegister{}, time.UTC)
	_, err := uc.Search(context.Background(), criteria.NewCriteriaBuilder(), &request.SaleSearchRequest{PaymentMethod: "tarjeta"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}
