package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine línea de una venta confirmada, copia inmutable de la línea del carrito
type SaleLine struct {
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	BlisterQty   int              `json:"blister_qty"`
	UnitQty      int              `json:"unit_qty"`
	BlisterPrice *decimal.Decimal `json:"blister_price,omitempty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Discount     decimal.Decimal  `json:"discount"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
}

// Sale venta POS (Aggregate Root)
type Sale struct {
	ID               uuid.UUID       `json:"id"`
	SaleNumber       string          `json:"sale_number"`
	SessionID        string          `json:"session_id"`
	TerminalID       string          `json:"terminal_id"`
	Operator         string          `json:"operator"`
	Method           PaymentMethod   `json:"payment_method"`
	Total            decimal.Decimal `json:"total"`
	CashTendered     decimal.Decimal `json:"cash_tendered"`
	DigitalTendered  decimal.Decimal `json:"digital_tendered"`
	ChangeDue        decimal.Decimal `json:"change_due"`
	CashContribution decimal.Decimal `json:"cash_contribution"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"created_at"`
	Lines            []SaleLine      `json:"lines"`
}

// NewSale arma la venta a partir de las líneas del carrito y el pago ya validado
func NewSale(sessionID, terminalID, operator string, lines []CartLine, payment *PaymentReconciliation, currency string) (*Sale, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "PEN"
	}

	saleLines := make([]SaleLine, 0, len(lines))
	for i := range lines {
		l := lines[i]
		sl := SaleLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			BlisterQty:  l.BlisterQty,
			UnitQty:     l.UnitQty,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Subtotal:    l.Subtotal(),
		}
		if l.BlisterPrice != nil {
			p := *l.BlisterPrice
			sl.BlisterPrice = &p
		}
		saleLines = append(saleLines, sl)
	}

	return &Sale{
		ID:               uuid.New(),
		SessionID:        sessionID,
		TerminalID:       terminalID,
		Operator:         operator,
		Method:           payment.Method,
		Total:            payment.Total,
		CashTendered:     payment.Cash,
		DigitalTendered:  payment.Digital,
		ChangeDue:        payment.ChangeDue,
		CashContribution: payment.CashContribution,
		Currency:         currency,
		CreatedAt:        time.Now().UTC(),
		Lines:            saleLines,
	}, nil
}

// TotalItems cantidad de líneas
func (s *Sale) TotalItems() int {
	return len(s.Lines)
}

// DailyTotals agregados de ventas de un día por método de pago
type DailyTotals struct {
	SalesCount     int
	GrossTotal     decimal.Decimal
	CashTotal      decimal.Decimal
	DigitalTotal   decimal.Decimal
	MixedTotal     decimal.Decimal
	CashInDrawer   decimal.Decimal
	FirstSaleAt    *time.Time
	LastSaleAt     *time.Time
	CountsByMethod map[PaymentMethod]int
}
