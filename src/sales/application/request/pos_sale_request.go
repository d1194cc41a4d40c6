package request

import "github.com/shopspring/decimal"

// AddCartLineRequest request para agregar un producto al carrito
type AddCartLineRequest struct {
	ProductID  string `json:"product_id" binding:"required"`
	BlisterQty int    `json:"blister_qty" binding:"gte=0"`
	UnitQty    int    `json:"unit_qty" binding:"gte=0"`
}

// AdjustCartLineRequest request para sumar o restar 1 en un eje
type AdjustCartLineRequest struct {
	Axis  string `json:"axis" binding:"required"`
	Delta int    `json:"delta" binding:"required,oneof=1 -1"`
}

// PaymentRequest monto entregado por el cliente; se usa para cotizar y para vender
type PaymentRequest struct {
	PaymentMethod string           `json:"payment_method" binding:"required"`
	Cash          *decimal.Decimal `json:"cash"`
	Digital       *decimal.Decimal `json:"digital"`
}

// Amounts devuelve los montos entregados con 0 por defecto
func (r PaymentRequest) Amounts() (cash, digital decimal.Decimal) {
	cash, digital = decimal.Zero, decimal.Zero
	if r.Cash != nil {
		cash = *r.Cash
	}
	if r.Digital != nil {
		digital = *r.Digital
	}
	return cash, digital
}

// SaleSearchRequest filtros opcionales de la búsqueda en el diario de ventas
type SaleSearchRequest struct {
	SessionID     string `form:"session_id"`
	PaymentMethod string `form:"payment_method"`
	Date          string `form:"date"`
}
