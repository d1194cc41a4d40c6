package usecase

import (
	"context"
	"fmt"
	"time"

	"caja/src/sales/application/response"
	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	"caja/src/shared/domain/apperror"
)

// DailyReportUseCase caso de uso para reporte diario de ventas
type DailyReportUseCase struct {
	journal  port.SaleJournalRepository
	location *time.Location
}

// NewDailyReportUseCase crea una nueva instancia del caso de uso.
// El día se interpreta en la zona horaria de la terminal.
func NewDailyReportUseCase(journal port.SaleJournalRepository, location *time.Location) *DailyReportUseCase {
	if location == nil {
		location = time.Local
	}
	return &DailyReportUseCase{
		journal:  journal,
		location: location,
	}
}

// Execute genera el reporte diario para una fecha específica
func (uc *DailyReportUseCase) Execute(ctx context.Context, date string) (*response.DailyReportResponse, error) {
	// ========================================================================
	// PASO 1: VALIDAR FORMATO DE FECHA (YYYY-MM-DD)
	// ========================================================================
	parsedDate, err := time.ParseInLocation("2006-01-02", date, uc.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", apperror.ErrValidation)
	}

	// ========================================================================
	// PASO 2: CALCULAR RANGO [from, to) - NO usar DATE(created_at)
	// ========================================================================
	from := parsedDate
	to := parsedDate.AddDate(0, 0, 1)

	// ========================================================================
	// PASO 3: AGREGADOS DEL DIARIO
	// ========================================================================
	totals, err := uc.journal.DailyTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying sale journal: %w", err)
	}

	// ========================================================================
	// PASO 4: CONSTRUIR RESPONSE
	// ========================================================================
	resp := &response.DailyReportResponse{
		Date:         date,
		SalesCount:   totals.SalesCount,
		GrossTotal:   totals.GrossTotal,
		CashInDrawer: totals.CashInDrawer,
		ByMethod: map[string]response.PaymentBreakdown{
			string(entity.PaymentCash):    {Count: totals.CountsByMethod[entity.PaymentCash], Total: totals.CashTotal},
			string(entity.PaymentDigital): {Count: totals.CountsByMethod[entity.PaymentDigital], Total: totals.DigitalTotal},
			string(entity.PaymentMixed):   {Count: totals.CountsByMethod[entity.PaymentMixed], Total: totals.MixedTotal},
		},
		FirstTransactionAt: totals.FirstSaleAt,
		LastTransactionAt:  totals.LastSaleAt,
	}
	return resp, nil
}
