package port

import (
	"context"
	"time"

	"caja/src/sales/domain/entity"
)

// SaleConfirmation lo que el backend devuelve al aceptar una venta
type SaleConfirmation struct {
	SaleID     string
	SaleNumber string
	CreatedAt  time.Time
}

// SaleBackend envío de ventas al back-office.
// idempotencyKey se reutiliza en los reintentos de la misma venta.
type SaleBackend interface {
	SubmitSale(ctx context.Context, sale *entity.Sale, idempotencyKey string) (*SaleConfirmation, error)
}
