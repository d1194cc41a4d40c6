package usecase

import (
	"context"
	"fmt"
	"time"

	"caja/src/sales/application/request"
	"caja/src/sales/application/response"
	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/domain/apperror"
	"caja/src/shared/domain/criteria"
)

// ListPosSalesUseCase caso de uso para listar las ventas de una sesión de caja
type ListPosSalesUseCase struct {
	journal  port.SaleJournalRepository
	register port.RegisterGate
	location *time.Location
}

// NewListPosSalesUseCase crea una nueva instancia. La fecha de búsqueda se
// interpreta en location (time.Local si es nil).
func NewListPosSalesUseCase(journal port.SaleJournalRepository, register port.RegisterGate, location *time.Location) *ListPosSalesUseCase {
	if location == nil {
		location = time.Local
	}
	return &ListPosSalesUseCase{journal: journal, register: register, location: location}
}

// Execute lista las ventas de la sesión; sin sessionID usa la sesión actual
func (uc *ListPosSalesUseCase) Execute(ctx context.Context, sessionID string) ([]*response.SaleListItem, error) {
	if sessionID == "" {
		sessionID = uc.register.CurrentSessionID()
	}
	if sessionID == "" {
		return []*response.SaleListItem{}, nil
	}
	sales, err := uc.journal.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toListItems(sales), nil
}

// Search busca en el diario con filtros opcionales sobre la página ya definida en builder
func (uc *ListPosSalesUseCase) Search(ctx context.Context, builder *criteria.CriteriaBuilder, req *request.SaleSearchRequest) (*response.SaleListPage, error) {
	if req.SessionID != "" {
		builder.Where("session_id", criteria.OpEqual, req.SessionID)
	}
	if req.PaymentMethod != "" {
		method, err := entity.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return nil, err
		}
		builder.Where("payment_method", criteria.OpEqual, string(method))
	}
	if req.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", req.Date, uc.location)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", apperror.ErrValidation)
		}
		builder.
			Where("created_at", criteria.OpGreaterThanOrEqual, day).
			Where("created_at", criteria.OpLessThan, day.AddDate(0, 0, 1))
	}
	c := builder.OrderBy("created_at", criteria.DESC).Build()

	sales, total, err := uc.journal.Search(ctx, c)
	if err != nil {
		return nil, err
	}

	page := &response.SaleListPage{
		Items:      toListItems(sales),
		TotalCount: total,
		Page:       c.Page(),
		PageSize:   len(sales),
	}
	if c.Limit != nil {
		page.PageSize = *c.Limit
	}
	return page, nil
}

func toListItems(sales []*entity.Sale) []*response.SaleListItem {
	items := make([]*response.SaleListItem, 0, len(sales))
	for _, s := range sales {
		items = append(items, &response.SaleListItem{
			ID:            s.ID,
			SaleNumber:    s.SaleNumber,
			PaymentMethod: string(s.Method),
			Total:         s.Total,
			Change:        s.ChangeDue,
			Currency:      s.Currency,
			TotalItems:    s.TotalItems(),
			CreatedAt:     s.CreatedAt,
		})
	}
	return items
}
