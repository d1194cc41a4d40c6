package response

import (
	"caja/src/sales/domain/entity"

	"github.com/shopspring/decimal"
)

// CartLineResponse línea del carrito con su subtotal calculado
type CartLineResponse struct {
	entity.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartResponse estado del carrito
type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	Total      decimal.Decimal    `json:"total"`
}

// CartLineChangeResponse resultado de un ajuste; Removed indica que la línea se eliminó
type CartLineChangeResponse struct {
	Line    *CartLineResponse `json:"line,omitempty"`
	Removed bool              `json:"removed"`
	Cart    *CartResponse     `json:"cart"`
}

// PaymentQuoteResponse conciliación de pago sin enviar la venta
type PaymentQuoteResponse struct {
	entity.PaymentReconciliation
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}
