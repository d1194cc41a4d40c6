package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/domain/criteria"
	"caja/src/shared/infrastructure/requestctx"

	"github.com/shopspring/decimal"
)

type fakeCatalog struct {
	products map[string]entity.Product
}

func (f *fakeCatalog) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	return &p, nil
}

type fakeRegister struct {
	mu        sync.Mutex
	open      bool
	sessionID string
	operator  string
	cashSales decimal.Decimal
}

func (f *fakeRegister) IsOpen() bool { return f.open }

func (f *fakeRegister) CurrentSessionID() string { return f.sessionID }

func (f *fakeRegister) ActiveUser(ctx context.Context) string {
	if user := requestctx.UserFromContext(ctx); user != "" {
		return user
	}
	return f.operator
}

func (f *fakeRegister) RecordCashSale(amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cashSales = f.cashSales.Add(amount)
}

type fakeSaleBackend struct {
	mu    sync.Mutex
	err   error
	hook  func()
	calls int
	keys  []string
	sales []entity.Sale
}

func (f *fakeSaleBackend) SubmitSale(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*port.SaleConfirmation, error) {
	f.mu.Lock()
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.keys = append(f.keys, idempotencyKey)
	if f.err != nil {
		return nil, f.err
	}
	f.sales = append(f.sales, *sale)
	return &port.SaleConfirmation{
		SaleID:     sale.ID.String(),
		SaleNumber: fmt.Sprintf("B001-%06d", len(f.sales)),
		CreatedAt:  time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}, nil
}

type fakeJournal struct {
	mu     sync.Mutex
	err    error
	sales  []*entity.Sale
	totals *entity.DailyTotals
	from   time.Time
	to     time.Time

	lastCriteria criteria.Criteria
}

func (f *fakeJournal) Record(ctx context.Context, sale *entity.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	s := *sale
	f.sales = append(f.sales, &s)
	return nil
}

func (f *fakeJournal) ListBySession(ctx context.Context, sessionID string) ([]*entity.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Sale
	for _, s := range f.sales {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Search aplica solo los filtros de igualdad y la paginación
func (f *fakeJournal) Search(ctx context.Context, c criteria.Criteria) ([]*entity.Sale, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCriteria = c

	var matched []*entity.Sale
	for _, s := range f.sales {
		ok := true
		for _, filter := range c.Filters.Items {
			if filter.Operator != criteria.OpEqual {
				continue
			}
			switch filter.Field {
			case "session_id":
				ok = ok && s.SessionID == filter.Value
			case "payment_method":
				ok = ok && string(s.Method) == filter.Value
			}
		}
		if ok {
			matched = append(matched, s)
		}
	}
	total := len(matched)
	if c.Limit != nil && c.Offset != nil {
		if *c.Offset >= len(matched) {
			return []*entity.Sale{}, total, nil
		}
		end := *c.Offset + *c.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[*c.Offset:end]
	}
	return matched, total, nil
}

func (f *fakeJournal) DailyTotals(ctx context.Context, from, to time.Time) (*entity.DailyTotals, error) {
	f.from, f.to = from, to
	if f.totals == nil {
		return &entity.DailyTotals{CountsByMethod: map[entity.PaymentMethod]int{}}, nil
	}
	return f.totals, nil
}

type staticNames map[string]string

func (n staticNames) DisplayName(code string) string {
	if name, ok := n[code]; ok {
		return name
	}
	return code
}

var errOffline = fmt.Errorf("%w: connection reset", apperror.ErrNetworkFailure)
