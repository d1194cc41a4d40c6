package port

import (
	"context"
	"time"

	"caja/src/sales/domain/entity"
	"caja/src/shared/domain/criteria"
)

// SaleJournalRepository diario local de ventas confirmadas.
// Solo insert y consultas, sin updates ni deletes.
type SaleJournalRepository interface {
	// Record persiste la venta con sus líneas
	Record(ctx context.Context, sale *entity.Sale) error

	// ListBySession retorna las ventas de una sesión de caja, más recientes primero
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Sale, error)

	// Search busca ventas de la terminal por session_id, payment_method o
	// created_at con paginación. Devuelve también el total sin paginar.
	Search(ctx context.Context, c criteria.Criteria) ([]*entity.Sale, int, error)

	// DailyTotals agrega las ventas en el rango [from, to)
	DailyTotals(ctx context.Context, from, to time.Time) (*entity.DailyTotals, error)
}
