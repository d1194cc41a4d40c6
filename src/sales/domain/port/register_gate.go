package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// RegisterGate lo que la venta necesita de la caja
type RegisterGate interface {
	IsOpen() bool
	CurrentSessionID() string
	RecordCashSale(amount decimal.Decimal)
	// ActiveUser usuario de la petición o el operador por defecto del terminal
	ActiveUser(ctx context.Context) string
}

// PaymentMethodNames nombres legibles de los métodos de pago para el ticket
type PaymentMethodNames interface {
	DisplayName(code string) string
}
