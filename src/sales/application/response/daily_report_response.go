package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentBreakdown total y cantidad de ventas de un método de pago
type PaymentBreakdown struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DailyReportResponse representa el reporte diario de ventas
type DailyReportResponse struct {
	Date               string                      `json:"date"`        // YYYY-MM-DD
	SalesCount         int                         `json:"sales_count"` // Cantidad de ventas
	GrossTotal         decimal.Decimal             `json:"gross_total"`
	CashInDrawer       decimal.Decimal             `json:"cash_in_drawer"` // Aporte en efectivo al cajón
	ByMethod           map[string]PaymentBreakdown `json:"by_method"`      // CASH / DIGITAL / MIXED
	FirstTransactionAt *time.Time                  `json:"first_transaction_at,omitempty"`
	LastTransactionAt  *time.Time                  `json:"last_transaction_at,omitempty"`
}
