package entity

import "github.com/shopspring/decimal"

// Cart carrito de la terminal. Las líneas mantienen el orden de alta y hay
// a lo sumo una línea por producto.
type Cart struct {
	lines []CartLine
}

// NewCart crea un carrito vacío
func NewCart() *Cart {
	return &Cart{}
}

// AddLine agrega el producto validando contra su stock actual. Si el producto
// ya estaba en el carrito, la línea se reemplaza en su misma posición.
func (c *Cart) AddLine(product *Product, blisterQty, unitQty int) (*CartLine, error) {
	line, err := NewCartLine(product, blisterQty, unitQty)
	if err != nil {
		return nil, err
	}

	if i := c.indexOf(line.ProductID); i >= 0 {
		c.lines[i] = *line
	} else {
		c.lines = append(c.lines, *line)
	}
	out := *line
	return &out, nil
}

// AdjustLine suma o resta 1 en un eje revalidando contra el StockSnapshot de la
// línea. Un ajuste rechazado deja la línea intacta. Si ambas cantidades quedan
// en 0 la línea se elimina y se devuelve nil.
func (c *Cart) AdjustLine(productID string, axis QuantityAxis, delta int) (*CartLine, error) {
	i := c.indexOf(productID)
	if i < 0 {
		return nil, ErrLineNotFound
	}

	updated, err := c.lines[i].adjusted(axis, delta)
	if err != nil {
		return nil, err
	}
	if updated.IsEmpty() {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil, nil
	}
	c.lines[i] = updated
	out := updated
	return &out, nil
}

// RemoveLine quita la línea del producto
func (c *Cart) RemoveLine(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Line devuelve una copia de la línea del producto
func (c *Cart) Line(productID string) (*CartLine, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return nil, false
	}
	out := c.lines[i]
	return &out, true
}

// Lines devuelve una copia de las líneas
func (c *Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

// Total suma de subtotales de las líneas
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.lines {
		total = total.Add(c.lines[i].Subtotal())
	}
	return total
}

// IsEmpty indica si no hay líneas
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear vacía el carrito
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
