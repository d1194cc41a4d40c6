package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityAxis eje de cantidad de una línea
type QuantityAxis string

const (
	AxisBlister QuantityAxis = "BLISTER"
	AxisUnit    QuantityAxis = "UNIT"
)

// ParseQuantityAxis acepta también "blister" / "unidad"
func ParseQuantityAxis(raw string) (QuantityAxis, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BLISTER":
		return AxisBlister, nil
	case "UNIT", "UNIDAD":
		return AxisUnit, nil
	default:
		return "", ErrInvalidAxis
	}
}

// CartLine línea del carrito. StockSnapshot es el stock del producto al momento
// de agregarlo y es el único límite contra el que se revalidan los ajustes.
type CartLine struct {
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Discount        decimal.Decimal  `json:"discount"`
	BlisterPrice    *decimal.Decimal `json:"blister_price,omitempty"`
	UnitsPerBlister int              `json:"units_per_blister,omitempty"`
	BlisterQty      int              `json:"blister_qty"`
	UnitQty         int              `json:"unit_qty"`
	StockSnapshot   int              `json:"stock_snapshot"`
}

// NewCartLine valida las cantidades contra el stock actual del producto
func NewCartLine(product *Product, blisterQty, unitQty int) (*CartLine, error) {
	if product == nil {
		return nil, ErrProductIDRequired
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if blisterQty < 0 || unitQty < 0 {
		return nil, ErrInvalidQuantity
	}
	if blisterQty == 0 && unitQty == 0 {
		return nil, ErrZeroQuantity
	}
	if blisterQty > 0 && !product.HasBlisterPricing() {
		return nil, ErrNoBlisterPricing
	}

	line := &CartLine{
		ProductID:       product.ID,
		ProductName:     product.Name,
		UnitPrice:       product.UnitPrice,
		Discount:        product.Discount,
		UnitsPerBlister: product.UnitsPerBlister,
		BlisterQty:      blisterQty,
		UnitQty:         unitQty,
		StockSnapshot:   product.AvailableStock,
	}
	if product.BlisterPrice != nil {
		p := *product.BlisterPrice
		line.BlisterPrice = &p
	}
	if line.exceedsStock() {
		return nil, ErrInsufficientStock
	}
	return line, nil
}

// exceedsStock compara contra el snapshot sin multiplicar, así una cantidad
// enorme de blisters no desborda int
func (l *CartLine) exceedsStock() bool {
	if l.UnitQty > l.StockSnapshot {
		return true
	}
	if l.BlisterQty == 0 || l.UnitsPerBlister <= 0 {
		return false
	}
	return l.BlisterQty > (l.StockSnapshot-l.UnitQty)/l.UnitsPerBlister
}

// EffectiveUnitPrice precio unitario con descuento, nunca negativo
func (l *CartLine) EffectiveUnitPrice() decimal.Decimal {
	price := l.UnitPrice.Sub(l.Discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// Subtotal blisterPrice*blisterQty + max(0, unitPrice-discount)*unitQty
func (l *CartLine) Subtotal() decimal.Decimal {
	subtotal := l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.UnitQty)))
	if l.BlisterPrice != nil && l.BlisterQty > 0 {
		subtotal = subtotal.Add(l.BlisterPrice.Mul(decimal.NewFromInt(int64(l.BlisterQty))))
	}
	return subtotal
}

// IsEmpty indica que ambas cantidades llegaron a 0
func (l *CartLine) IsEmpty() bool {
	return l.BlisterQty == 0 && l.UnitQty == 0
}

// adjusted devuelve una copia con el eje modificado; el receptor no cambia
func (l CartLine) adjusted(axis QuantityAxis, delta int) (CartLine, error) {
	if delta != 1 && delta != -1 {
		return l, ErrInvalidDelta
	}

	switch axis {
	case AxisBlister:
		if delta > 0 && (l.BlisterPrice == nil || l.UnitsPerBlister <= 0) {
			return l, ErrNoBlisterPricing
		}
		if delta < 0 && l.BlisterQty == 0 {
			return l, ErrQuantityAtZero
		}
		l.BlisterQty += delta
	case AxisUnit:
		if delta < 0 && l.UnitQty == 0 {
			return l, ErrQuantityAtZero
		}
		l.UnitQty += delta
	default:
		return l, ErrInvalidAxis
	}

	if l.exceedsStock() {
		return l, ErrInsufficientStock
	}
	return l, nil
}
