package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento manual de caja
type MovementKind string

const (
	MovementIncome  MovementKind = "INCOME"
	MovementExpense MovementKind = "EXPENSE"
)

// ParseMovementKind acepta también los nombres usados en caja (ingreso / egreso)
func ParseMovementKind(raw string) (MovementKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "INCOME", "INGRESO":
		return MovementIncome, nil
	case "EXPENSE", "EGRESO", "GASTO":
		return MovementExpense, nil
	default:
		return "", ErrInvalidMovementKind
	}
}

// CashMovement representa un ingreso o egreso manual durante una sesión abierta.
// Solo se agregan, nunca se modifican.
type CashMovement struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Kind        MovementKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ActingUser  string          `json:"acting_user"`
}

// NewCashMovement valida un movimiento antes de enviarlo al backend
func NewCashMovement(sessionID string, kind MovementKind, amount decimal.Decimal, description, actingUser string) (*CashMovement, error) {
	if sessionID == "" {
		return nil, ErrMovementSessionMissing
	}
	if kind != MovementIncome && kind != MovementExpense {
		return nil, ErrInvalidMovementKind
	}
	if !amount.IsPositive() {
		return nil, ErrMovementAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if strings.TrimSpace(actingUser) == "" {
		return nil, ErrNoActiveUser
	}

	return &CashMovement{
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		ActingUser:  actingUser,
	}, nil
}

// RequiresConfirmation indica si el monto alcanza el umbral de montos altos
func (m *CashMovement) RequiresConfirmation(threshold decimal.Decimal) bool {
	return m.Amount.GreaterThanOrEqual(threshold)
}

// MovementTotals suma ingresos y egresos de un libro de movimientos
func MovementTotals(movements []CashMovement) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, m := range movements {
		switch m.Kind {
		case MovementIncome:
			income = income.Add(m.Amount)
		case MovementExpense:
			expense = expense.Add(m.Amount)
		}
	}
	return income, expense
}
