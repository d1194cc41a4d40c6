package port

import (
	"context"

	"caja/src/register/domain/entity"
)

// SnapshotRepository almacenamiento local durable de snapshots de cierre.
// Los pendientes se indexan por session_id; el último cierre ocupa un único slot.
type SnapshotRepository interface {
	SavePending(ctx context.Context, snapshot *entity.CloseSnapshot) error

	// GetPending retorna nil, nil si no existe
	GetPending(ctx context.Context, sessionID string) (*entity.CloseSnapshot, error)

	ListPending(ctx context.Context) ([]*entity.CloseSnapshot, error)

	DeletePending(ctx context.Context, sessionID string) error

	// SaveLastClosed reemplaza el contenido del slot de último cierre
	SaveLastClosed(ctx context.Context, snapshot *entity.CloseSnapshot) error

	// GetLastClosed retorna nil, nil si todavía no hubo cierres
	GetLastClosed(ctx context.Context) (*entity.CloseSnapshot, error)
}
