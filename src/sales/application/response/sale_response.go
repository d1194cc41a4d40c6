package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineResponse línea del ticket
type SaleLineResponse struct {
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	BlisterQty   int              `json:"blister_qty"`
	UnitQty      int              `json:"unit_qty"`
	BlisterPrice *decimal.Decimal `json:"blister_price,omitempty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Discount     decimal.Decimal  `json:"discount"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
}

// SaleReceiptResponse respuesta de venta POS lista para imprimir
type SaleReceiptResponse struct {
	SaleID            uuid.UUID          `json:"sale_id"`
	SaleNumber        string             `json:"sale_number"`
	SessionID         string             `json:"session_id"`
	Operator          string             `json:"operator"`
	Lines             []SaleLineResponse `json:"lines"`
	TotalItems        int                `json:"total_items"`
	Total             decimal.Decimal    `json:"total"`
	PaymentMethod     string             `json:"payment_method"`
	PaymentMethodName string             `json:"payment_method_name"`
	CashTendered      decimal.Decimal    `json:"cash_tendered"`
	DigitalTendered   decimal.Decimal    `json:"digital_tendered"`
	Change            decimal.Decimal    `json:"change"`
	Currency          string             `json:"currency"`
	CreatedAt         time.Time          `json:"created_at"`
}

// SaleListItem item de la lista de ventas de una sesión
type SaleListItem struct {
	ID            uuid.UUID       `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Change        decimal.Decimal `json:"change"`
	Currency      string          `json:"currency"`
	TotalItems    int             `json:"total_items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleListPage página de resultados de la búsqueda de ventas
type SaleListPage struct {
	Items      []*SaleListItem `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
