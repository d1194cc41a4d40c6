package port

import (
	"context"

	"caja/src/register/domain/entity"

	"github.com/shopspring/decimal"
)

// RegisterBackend define el contrato con el backend de back-office para la caja.
// El backend es la autoridad: aritmética de caja, unicidad de la sesión abierta.
type RegisterBackend interface {
	// CurrentSession retorna la sesión abierta o nil si no hay ninguna
	CurrentSession(ctx context.Context) (*entity.RegisterSession, error)

	OpenSession(ctx context.Context, openingCash decimal.Decimal, user string) (*entity.RegisterSession, error)

	// CloseSession cierra la sesión; la respuesta puede traer solo un subconjunto de campos
	CloseSession(ctx context.Context, sessionID string, declaredCash decimal.Decimal) (*entity.RegisterSession, error)

	// History lista las sesiones recientes (abiertas y cerradas)
	History(ctx context.Context) ([]entity.RegisterSession, error)

	AddMovement(ctx context.Context, movement *entity.CashMovement) (*entity.CashMovement, error)

	ListMovements(ctx context.Context, sessionID string) ([]entity.CashMovement, error)

	Summary(ctx context.Context, sessionID string) (*entity.CashSummary, error)
}
