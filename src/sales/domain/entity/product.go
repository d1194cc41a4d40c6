package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo tal como lo ve la caja.
// BlisterPrice es nil cuando el producto solo se vende por unidad.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Discount        decimal.Decimal  `json:"discount"`
	BlisterPrice    *decimal.Decimal `json:"blister_price,omitempty"`
	UnitsPerBlister int              `json:"units_per_blister,omitempty"`
	AvailableStock  int              `json:"available_stock"`
}

// HasBlisterPricing indica si el producto admite venta por blister
func (p *Product) HasBlisterPricing() bool {
	return p.BlisterPrice != nil && p.UnitsPerBlister > 0
}

// Validate chequea los datos mínimos que necesita el carrito
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrProductIDRequired
	}
	if p.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if p.Discount.IsNegative() {
		return ErrInvalidDiscount
	}
	if p.BlisterPrice != nil {
		if p.BlisterPrice.IsNegative() {
			return ErrInvalidPrice
		}
		if p.UnitsPerBlister <= 0 {
			return ErrInvalidBlisterSize
		}
	}
	return nil
}
