package response

import (
	"caja/src/register/domain/entity"

	"github.com/shopspring/decimal"
)

// RegisterStatusResponse vista completa de la caja para el terminal
type RegisterStatusResponse struct {
	State              entity.SessionState        `json:"state"`
	Session            *entity.RegisterSession    `json:"session,omitempty"`
	Movements          []entity.CashMovement      `json:"movements"`
	Reconciliation     *entity.CashReconciliation `json:"reconciliation,omitempty"`
	Summary            *entity.CashSummary        `json:"summary,omitempty"`
	HighValueThreshold decimal.Decimal            `json:"high_value_threshold"`
	Closing            bool                       `json:"closing"`
}

// ConfirmationRequiredResponse se devuelve con 428 cuando el monto supera el umbral
type ConfirmationRequiredResponse struct {
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	Threshold decimal.Decimal `json:"threshold"`
}

// MovementListResponse lista de movimientos de la sesión
type MovementListResponse struct {
	SessionID  string                `json:"session_id"`
	Items      []entity.CashMovement `json:"items"`
	TotalCount int                   `json:"total_count"`
}
